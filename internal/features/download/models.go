// Package download реализует ядро бота: запуск wget в scratch-каталог,
// упаковку результата в zip в памяти и доставку архива в чат.
// models.go описывает режимы скачивания и результат пайплайна.
package download

import (
	"fmt"
	"time"

	"webgrab.dev/telegram-bot/internal/common"
)

// Mode — режим скачивания. Значения совпадают с callback-data кнопок.
type Mode string

const (
	// ModeFull — полное зеркало сайта со всеми реквизитами страниц.
	ModeFull Mode = "full"
	// ModePartial — рекурсия до глубины 2.
	ModePartial Mode = "partial"
)

// callbackCancel — третья кнопка клавиатуры, режимом не является.
const callbackCancel = "cancel"

// ParseMode разбирает callback-data в режим.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeFull, ModePartial:
		return Mode(s), true
	}
	return "", false
}

// DisplayName — имя режима для сообщений пользователю.
func (m Mode) DisplayName() string {
	if m == ModeFull {
		return "Full Website"
	}
	return "Partial Website"
}

// Result — успешный результат пайплайна: архив в памяти и его метрики.
// Буфер принадлежит вызывающему и отдаётся в transport send без копий.
type Result struct {
	Archive  []byte
	Files    int
	Size     int64
	Duration time.Duration
}

// TooLargeError возвращается упаковщиком, когда готовый архив превысил
// лимит вложения. Size — наблюдавшийся размер (для сообщения пользователю).
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("archive too large: %d bytes (max %d)", e.Size, e.Max)
}

// MirrorError — ненулевой код выхода wget с хвостом stderr для логов.
type MirrorError struct {
	ExitCode   int
	StderrTail string
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("wget exited with code %d", e.ExitCode)
}

// Unwrap позволяет errors.Is(err, common.ErrMirrorFailed).
func (e *MirrorError) Unwrap() error {
	return common.ErrMirrorFailed
}
