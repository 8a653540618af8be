package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"webgrab.dev/telegram-bot/internal/common"
)

// writeStub кладёт на диск исполняемый скрипт, прикидывающийся wget.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wget-stub")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// scratchLeftovers возвращает scratch-каталоги, оставшиеся в parent.
func scratchLeftovers(t *testing.T, parent string) []string {
	t.Helper()
	entries, err := os.ReadDir(parent)
	if err != nil {
		t.Fatalf("read scratch parent: %v", err)
	}
	var left []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ScratchPrefix) {
			left = append(left, e.Name())
		}
	}
	return left
}

const stubProducesFiles = `#!/bin/sh
dir=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-P" ]; then dir="$2"; fi
  shift
done
mkdir -p "$dir/example.com"
printf '<html>ok</html>' > "$dir/example.com/index.html"
printf 'body{}' > "$dir/example.com/style.css"
exit 0
`

func TestPipelineHappyPath(t *testing.T) {
	scratchParent := t.TempDir()
	stub := writeStub(t, stubProducesFiles)

	svc := NewService(
		NewMirror(stub, 30*time.Second),
		NewPackager(afero.NewOsFs(), 50*1024*1024),
		scratchParent, 2,
	)

	res, err := svc.Download(context.Background(), "https://example.com", ModeFull)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if res.Files != 2 {
		t.Fatalf("files = %d, want 2", res.Files)
	}
	if res.Size != int64(len(res.Archive)) || res.Size == 0 {
		t.Fatalf("size = %d, archive = %d bytes", res.Size, len(res.Archive))
	}
	if left := scratchLeftovers(t, scratchParent); len(left) != 0 {
		t.Fatalf("scratch dirs left behind: %v", left)
	}
}

func TestPipelineNonZeroExit(t *testing.T) {
	scratchParent := t.TempDir()
	// Пишет файлы И падает: успех требует нулевого кода выхода,
	// частично зазеркаленный сайт молча не уходит.
	stub := writeStub(t, `#!/bin/sh
dir=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-P" ]; then dir="$2"; fi
  shift
done
mkdir -p "$dir"
printf 'partial' > "$dir/half.html"
printf 'connection refused' >&2
exit 4
`)

	svc := NewService(
		NewMirror(stub, 30*time.Second),
		NewPackager(afero.NewOsFs(), 50*1024*1024),
		scratchParent, 2,
	)

	_, err := svc.Download(context.Background(), "https://example.com", ModeFull)
	if !errors.Is(err, common.ErrMirrorFailed) {
		t.Fatalf("expected ErrMirrorFailed, got %v", err)
	}
	var mErr *MirrorError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *MirrorError, got %T", err)
	}
	if mErr.ExitCode != 4 {
		t.Fatalf("exit code = %d, want 4", mErr.ExitCode)
	}
	if !strings.Contains(mErr.StderrTail, "connection refused") {
		t.Fatalf("stderr tail lost: %q", mErr.StderrTail)
	}
	if left := scratchLeftovers(t, scratchParent); len(left) != 0 {
		t.Fatalf("scratch dirs left behind after failure: %v", left)
	}
}

func TestPipelineTimeout(t *testing.T) {
	scratchParent := t.TempDir()
	stub := writeStub(t, "#!/bin/sh\nexec sleep 5\n")

	svc := NewService(
		NewMirror(stub, 200*time.Millisecond),
		NewPackager(afero.NewOsFs(), 50*1024*1024),
		scratchParent, 2,
	)

	start := time.Now()
	_, err := svc.Download(context.Background(), "https://example.com", ModeFull)
	if !errors.Is(err, common.ErrMirrorTimeout) {
		t.Fatalf("expected ErrMirrorTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("child was not killed on deadline")
	}
	if left := scratchLeftovers(t, scratchParent); len(left) != 0 {
		t.Fatalf("scratch dirs left behind after timeout: %v", left)
	}
}

func TestPipelineEmptyMirror(t *testing.T) {
	scratchParent := t.TempDir()
	stub := writeStub(t, "#!/bin/sh\nexit 0\n")

	svc := NewService(
		NewMirror(stub, 30*time.Second),
		NewPackager(afero.NewOsFs(), 50*1024*1024),
		scratchParent, 2,
	)

	_, err := svc.Download(context.Background(), "https://example.com", ModePartial)
	if !errors.Is(err, common.ErrEmptyMirror) {
		t.Fatalf("expected ErrEmptyMirror, got %v", err)
	}
	if left := scratchLeftovers(t, scratchParent); len(left) != 0 {
		t.Fatalf("scratch dirs left behind: %v", left)
	}
}
