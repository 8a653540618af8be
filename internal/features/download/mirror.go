// Package download — mirror.go запускает wget в scratch-каталог.
// Аргументы всегда передаются структурированным списком: URL не проходит
// через shell и не подвержен подстановкам. Дедлайн реализован убийством
// дочернего процесса через context.
package download

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/common"
)

// stderrTailLimit — сколько байт stderr держим для диагностики.
const stderrTailLimit = 4096

// Mirror — драйвер внешней утилиты зеркалирования.
type Mirror struct {
	bin     string
	timeout time.Duration
}

// NewMirror создаёт драйвер. bin — путь к wget (проверен при старте),
// timeout — жёсткий дедлайн одного скачивания.
func NewMirror(bin string, timeout time.Duration) *Mirror {
	return &Mirror{bin: bin, timeout: timeout}
}

// args собирает вектор аргументов wget для режима.
// Наборы флагов повторяют исходное поведение: полное зеркало с реквизитами
// страниц либо рекурсия до глубины 2; оба режима игнорируют robots.txt
// и терпят битые TLS-сертификаты.
func (m *Mirror) args(url string, mode Mode, dir string) []string {
	if mode == ModeFull {
		return []string{
			"--mirror",
			"--convert-links",
			"--adjust-extension",
			"--page-requisites",
			"--no-parent",
			"--no-check-certificate",
			"-e", "robots=off",
			"--user-agent=Mozilla/5.0",
			"--quiet",
			"-P", dir,
			url,
		}
	}
	return []string{
		"-r",
		"-l", "2",
		"-k",
		"-p",
		"-E",
		"--no-check-certificate",
		"-e", "robots=off",
		"--quiet",
		"-P", dir,
		url,
	}
}

// Run выполняет зеркалирование url в каталог dir.
// Возвращает common.ErrMirrorTimeout при истечении дедлайна
// и *MirrorError при ненулевом коде выхода.
func (m *Mirror) Run(ctx context.Context, url string, mode Mode, dir string) error {
	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tail := newTailBuffer(stderrTailLimit)

	cmd := exec.CommandContext(runCtx, m.bin, m.args(url, mode, dir)...)
	cmd.Stderr = tail

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	logger := log.WithFields(log.Fields{
		"url":     url,
		"mode":    mode,
		"elapsed": elapsed.Round(time.Millisecond),
	})

	switch runCtx.Err() {
	case context.DeadlineExceeded:
		logger.Warn("wget убит по дедлайну")
		return common.ErrMirrorTimeout
	case context.Canceled:
		// Отмена родительского контекста (shutdown) — не ошибка wget.
		logger.Info("wget остановлен отменой контекста")
		return runCtx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		code := -1
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		stderr := common.Truncate(tail.String(), 500)
		logger.WithFields(log.Fields{
			"exit_code": code,
			"stderr":    stderr,
		}).Error("wget завершился с ошибкой")
		return &MirrorError{ExitCode: code, StderrTail: stderr}
	}

	logger.Debug("wget завершился успешно")
	return nil
}

// tailBuffer хранит последние max байт записанного.
// Сайт может насыпать в stderr сколько угодно — память ограничена.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
