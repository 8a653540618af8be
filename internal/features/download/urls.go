// Package download — urls.go: распознавание и нормализация URL,
// имя файла доставляемого архива.
package download

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// LooksLikeURL — эвристика «это URL?». Намеренно либеральная, как в
// первоначальной версии бота: префикс схемы/www. или любая точка в тексте.
// Строгая проверка происходит позже в NormalizeURL.
func LooksLikeURL(text string) bool {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"http://", "https://", "www."} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return strings.Contains(text, ".")
}

// NormalizeURL чистит URL: обрезает пробелы, добавляет https:// при
// отсутствии схемы и требует от результата парсабельный непустой хост.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("bad url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url has no host")
	}
	return raw, nil
}

// ArchiveName строит имя доставляемого файла: {host}_{mode}_{epoch}.zip.
// Хост — authority без схемы, порта и пути, в нижнем регистре.
func ArchiveName(rawurl string, mode Mode, now time.Time) string {
	host := "site"
	if u, err := url.Parse(rawurl); err == nil && u.Hostname() != "" {
		host = strings.ToLower(u.Hostname())
	}
	return fmt.Sprintf("%s_%s_%d.zip", host, mode, now.Unix())
}
