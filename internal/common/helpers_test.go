package common

import (
	"testing"
	"time"
)

func TestFormatMB(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0.0MB"},
		{50 * 1024 * 1024, "50.0MB"},
		{2202009, "2.1MB"},
	}
	for _, c := range cases {
		if got := FormatMB(c.n); got != c.want {
			t.Fatalf("FormatMB(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m 0s"},
		{90 * time.Minute, "1h 30m 0s"},
		{49 * time.Hour, "2d 1h 0m 0s"},
		{-3 * time.Second, "0s"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.d); got != c.want {
			t.Fatalf("FormatUptime(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 500); got != "hello" {
		t.Fatalf("short string changed: %q", got)
	}
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	if got := Truncate(string(long), 500); len(got) != 500 {
		t.Fatalf("expected 500 chars, got %d", len(got))
	}
}
