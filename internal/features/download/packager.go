// Package download — packager.go собирает содержимое scratch-каталога
// в zip-архив в памяти. Обход детерминированный (лексикографический),
// поэтому архивы одинаковых сайтов стабильны по составу байт
// с точностью до таймстемпов.
package download

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"webgrab.dev/telegram-bot/internal/common"
)

// Packager упаковывает каталог в zip в памяти.
// Работает через afero.Fs: в проде — OsFs, в тестах — MemMapFs.
type Packager struct {
	fs       afero.Fs
	maxBytes int64
}

// NewPackager создаёт упаковщик с лимитом размера готового архива.
func NewPackager(fs afero.Fs, maxBytes int64) *Packager {
	return &Packager{fs: fs, maxBytes: maxBytes}
}

// Archive обходит root и складывает каждый обычный файл в архив под его
// путём относительно root. Сжатие — deflate с максимальной степенью.
//
// Ошибки:
//   - common.ErrEmptyMirror — в каталоге не оказалось ни одного файла;
//   - *TooLargeError — готовый архив превысил лимит (архив отброшен);
//   - прочие — ошибка обхода каталога.
//
// Нечитаемые отдельные файлы логируются и пропускаются, упаковку не рвут.
func (p *Packager) Archive(root string) ([]byte, int, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	count := 0
	walkErr := afero.Walk(p.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Каталог целиком не читается — это уже фатально для обхода.
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if err := p.addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			log.WithError(err).WithField("file", rel).Warn("Файл пропущен при упаковке")
			return nil
		}
		count++
		return nil
	})
	if walkErr != nil {
		zw.Close()
		return nil, 0, fmt.Errorf("обход scratch-каталога: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("закрытие архива: %w", err)
	}

	if count == 0 {
		return nil, 0, common.ErrEmptyMirror
	}

	size := int64(buf.Len())
	if size > p.maxBytes {
		// Архив отбрасывается целиком: наружу не уходит ни байта сверх лимита.
		return nil, count, &TooLargeError{Size: size, Max: p.maxBytes}
	}
	return buf.Bytes(), count, nil
}

// addFile читает один файл и пишет его в архив под именем name.
func (p *Packager) addFile(zw *zip.Writer, path, name string) error {
	f, err := p.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
