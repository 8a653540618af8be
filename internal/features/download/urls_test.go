package download

import (
	"regexp"
	"testing"
	"time"
)

func TestLooksLikeURL(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com", true},
		{"www.example.com", true},
		{"example.com", true},
		{"just.a.dot", true}, // либеральная эвристика: точка = URL
		{"hello", false},
		{"no url here", false},
	}
	for _, c := range cases {
		if got := LooksLikeURL(c.text); got != c.want {
			t.Fatalf("LooksLikeURL(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com  ", "https://example.com"},
		{"http://test-site.org", "http://test-site.org"},
		{"https://example.com/page", "https://example.com/page"},
		{"www.example.com", "https://www.example.com"},
	}
	for _, c := range cases {
		got, err := NormalizeURL(c.in)
		if err != nil {
			t.Fatalf("NormalizeURL(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeURLRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "...", "https://"} {
		if got, err := NormalizeURL(in); err == nil {
			t.Fatalf("NormalizeURL(%q) = %q, want error", in, got)
		}
	}
}

func TestArchiveNameShape(t *testing.T) {
	// Форма имени файла: host_mode_epoch.zip
	shape := regexp.MustCompile(`^[a-z0-9.\-]+_(full|partial)_\d+\.zip$`)
	now := time.Unix(1756600000, 0)

	cases := []struct {
		url  string
		mode Mode
		want string
	}{
		{"https://example.com", ModeFull, "example.com_full_1756600000.zip"},
		{"https://example.com/deep/path?q=1", ModePartial, "example.com_partial_1756600000.zip"},
		{"https://EXAMPLE.COM", ModeFull, "example.com_full_1756600000.zip"},
		{"https://test-site.org:8080/x", ModeFull, "test-site.org_full_1756600000.zip"},
	}
	for _, c := range cases {
		got := ArchiveName(c.url, c.mode, now)
		if got != c.want {
			t.Fatalf("ArchiveName(%q) = %q, want %q", c.url, got, c.want)
		}
		if !shape.MatchString(got) {
			t.Fatalf("filename %q does not match the delivery shape", got)
		}
	}
}
