package download

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestArgsFullMode(t *testing.T) {
	m := NewMirror("wget", 120*time.Second)
	args := m.args("https://example.com", ModeFull, "/tmp/scratch")

	want := []string{
		"--mirror",
		"--convert-links",
		"--adjust-extension",
		"--page-requisites",
		"--no-parent",
		"--no-check-certificate",
		"-e", "robots=off",
		"--user-agent=Mozilla/5.0",
		"--quiet",
		"-P", "/tmp/scratch",
		"https://example.com",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestArgsPartialMode(t *testing.T) {
	m := NewMirror("wget", 120*time.Second)
	args := m.args("https://example.com", ModePartial, "/tmp/scratch")

	want := []string{
		"-r",
		"-l", "2",
		"-k",
		"-p",
		"-E",
		"--no-check-certificate",
		"-e", "robots=off",
		"--quiet",
		"-P", "/tmp/scratch",
		"https://example.com",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// TestArgsShellMetacharacters: URL с шелл-метасимволами остаётся одним
// элементом argv, структура вектора не меняется.
func TestArgsShellMetacharacters(t *testing.T) {
	m := NewMirror("wget", 120*time.Second)

	benign := m.args("https://example.com", ModeFull, "/tmp/scratch")
	hostile := "https://example.com/; rm -rf / `whoami` $(id)"
	got := m.args(hostile, ModeFull, "/tmp/scratch")

	if len(got) != len(benign) {
		t.Fatalf("argv length changed: %d vs %d", len(got), len(benign))
	}
	if got[len(got)-1] != hostile {
		t.Fatalf("hostile url mangled: %q", got[len(got)-1])
	}
	for i := 0; i < len(got)-1; i++ {
		if got[i] != benign[i] {
			t.Fatalf("argv[%d] differs for hostile url: %q vs %q", i, got[i], benign[i])
		}
	}
}

// TestRunContextCancelIsNotMirrorError: отмена родительского контекста
// (shutdown) возвращается как context.Canceled, а не как ошибка wget.
func TestRunContextCancelIsNotMirrorError(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\nexec sleep 5\n")
	m := NewMirror(stub, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := m.Run(ctx, "https://example.com", ModeFull, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	var mErr *MirrorError
	if errors.As(err, &mErr) {
		t.Fatal("cancellation must not surface as a mirror failure")
	}
}

func TestTailBufferKeepsTail(t *testing.T) {
	tb := newTailBuffer(8)
	tb.Write([]byte("0123456789"))
	tb.Write([]byte("abcd"))

	if got := tb.String(); got != "6789abcd" {
		t.Fatalf("tail = %q, want %q", got, "6789abcd")
	}
}

func TestTailBufferShortWrites(t *testing.T) {
	tb := newTailBuffer(100)
	tb.Write([]byte("hello "))
	tb.Write([]byte("world"))

	if got := tb.String(); got != "hello world" {
		t.Fatalf("tail = %q", got)
	}
}
