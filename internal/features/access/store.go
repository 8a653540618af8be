// Package access — store.go хранит документ настроек в JSON-файле.
// Единственный владелец состояния: снаружи доступны только Snapshot()
// и Mutate(fn), все мутации идут через мьютекс.
package access

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store — файловое хранилище настроек.
type Store struct {
	path    string
	adminID int64

	mu  sync.RWMutex
	cur *Settings
}

// NewStore загружает настройки из файла (или создаёт дефолтные) и сразу
// записывает результат обратно — так файл появляется при первом запуске.
// Ошибка чтения не фатальна: работаем с дефолтами и пишем warning.
func NewStore(path string, adminID int64) (*Store, error) {
	s := &Store{path: path, adminID: adminID}
	s.cur = s.load()

	if err := s.save(s.cur); err != nil {
		// Не падаем: бот может работать с настройками в памяти,
		// но оператор должен узнать о проблеме из логов.
		log.WithError(err).WithField("path", path).Warn("Не удалось записать файл настроек")
	}
	return s, nil
}

// Path возвращает путь к файлу настроек (для /stats).
func (s *Store) Path() string {
	return s.path
}

// Snapshot возвращает копию текущих настроек.
// Читатели могут работать с ней без блокировок.
func (s *Store) Snapshot() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

// Mutate применяет fn к копии настроек и коммитит результат только после
// успешной записи на диск. Если запись упала — мутация потеряна,
// в памяти остаётся прежнее состояние (оператору отвечают "save failed").
func (s *Store) Mutate(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.normalize(next)

	if err := s.save(next); err != nil {
		log.WithError(err).WithField("path", s.path).Error("Ошибка записи настроек")
		return err
	}
	s.cur = next
	return nil
}

// load читает файл и мержит его с дефолтами.
// Отсутствующий или битый файл = дефолтные настройки.
func (s *Store) load() *Settings {
	def := defaultSettings(s.adminID)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", s.path).Warn("Файл настроек не читается, берём дефолты")
		}
		return def
	}

	loaded := &Settings{}
	if err := json.Unmarshal(data, loaded); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("Файл настроек повреждён, берём дефолты")
		return def
	}

	// Мерж с дефолтами: отсутствующие в файле поля заполняются.
	// json.Unmarshal оставляет нулевые значения — добиваем их вручную.
	if loaded.AllowedUsers == nil {
		loaded.AllowedUsers = def.AllowedUsers
	}
	if loaded.BannedUsers == nil {
		loaded.BannedUsers = def.BannedUsers
	}
	if loaded.StartTime == 0 {
		loaded.StartTime = def.StartTime
	}

	s.normalize(loaded)
	return loaded
}

// normalize восстанавливает инварианты документа:
// админ всегда в allowlist и никогда в banlist, списки не пересекаются.
func (s *Store) normalize(set *Settings) {
	if !set.IsAllowed(s.adminID) {
		set.AllowedUsers = append(set.AllowedUsers, s.adminID)
	}
	set.BannedUsers = removeID(set.BannedUsers, s.adminID)

	// Дизъюнктность: бан сильнее выдачи прав при битом файле.
	for _, banned := range set.BannedUsers {
		if banned != s.adminID {
			set.AllowedUsers = removeID(set.AllowedUsers, banned)
		}
	}
	if set.AllowedUsers == nil {
		set.AllowedUsers = []int64{}
	}
	if set.BannedUsers == nil {
		set.BannedUsers = []int64{}
	}
}

// save сериализует настройки и записывает атомарно: tmp-файл в том же
// каталоге + rename. Падение процесса посреди записи не рвёт документ.
func (s *Store) save(set *Settings) error {
	data, err := json.MarshalIndent(set, "", "    ")
	if err != nil {
		return fmt.Errorf("сериализация настроек: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("временный файл настроек: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("запись настроек: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("закрытие файла настроек: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("переименование файла настроек: %w", err)
	}
	return nil
}
