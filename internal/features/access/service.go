// Package access — service.go содержит шлюз политики (чистые предикаты
// над снапшотом настроек), операторские команды поверх Store.Mutate
// и опциональную парольную аутентификацию админа (Argon2id).
package access

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"webgrab.dev/telegram-bot/internal/common"
)

// Service управляет политикой доступа.
type Service struct {
	store        *Store
	adminID      int64
	adminUser    string
	passwordHash string // пустой = вход по паролю не требуется

	authedMu sync.Mutex
	authed   map[int64]bool // кто ввёл пароль в этом процессе
}

// NewService создаёт сервис политики доступа.
func NewService(store *Store, adminID int64, adminUser, passwordHash string) *Service {
	return &Service{
		store:        store,
		adminID:      adminID,
		adminUser:    adminUser,
		passwordHash: passwordHash,
		authed:       make(map[int64]bool),
	}
}

// IsAdmin — равенство с ID администратора из конфига.
func (s *Service) IsAdmin(userID int64) bool {
	return userID == s.adminID
}

// Maintenance сообщает, включён ли режим обслуживания.
func (s *Service) Maintenance() bool {
	return s.store.Snapshot().Maintenance
}

// MaintenanceMessage — текст отказа в режиме обслуживания.
func (s *Service) MaintenanceMessage() string {
	return "🔧 *Bot is under maintenance*\n\nPlease try again later.\n\nAdmin: " + s.adminUser
}

// Check — шлюз политики. Чистая функция над снапшотом настроек:
// admin → разрешено; banned → отказ; вне allowlist → отказ;
// лимит пользователей достигнут → отказ.
// activeUsers — число пользователей с живой сессией (без учёта админа).
func (s *Service) Check(userID int64, activeUsers int) (bool, string) {
	if s.IsAdmin(userID) {
		return true, ""
	}

	set := s.store.Snapshot()

	if set.IsBanned(userID) {
		return false, "❌ You are banned from using this bot."
	}
	if !set.IsAllowed(userID) {
		return false, "❌ You don't have permission to use this bot.\n\nPlease ask admin for permission."
	}
	if set.UserLimit != nil && activeUsers >= *set.UserLimit {
		return false, fmt.Sprintf("❌ Bot user limit reached.\nLimit: %d users", *set.UserLimit)
	}
	return true, ""
}

// --- Операторские команды (read-modify-write через Store.Mutate) ---

// Grant добавляет пользователя в allowlist и, если нужно, снимает бан.
// Идемпотентна: повторная выдача прав — no-op с already=true.
func (s *Service) Grant(userID int64) (already bool, err error) {
	err = s.store.Mutate(func(set *Settings) error {
		if set.IsAllowed(userID) {
			already = true
			return nil
		}
		set.AllowedUsers = append(set.AllowedUsers, userID)
		set.BannedUsers = removeID(set.BannedUsers, userID)
		return nil
	})
	return already, err
}

// Ban добавляет пользователя в banlist и убирает из allowlist.
// Админа забанить нельзя.
func (s *Service) Ban(userID int64) (already bool, err error) {
	if s.IsAdmin(userID) {
		return false, common.ErrBanAdmin
	}
	err = s.store.Mutate(func(set *Settings) error {
		if set.IsBanned(userID) {
			already = true
			return nil
		}
		set.BannedUsers = append(set.BannedUsers, userID)
		set.AllowedUsers = removeID(set.AllowedUsers, userID)
		return nil
	})
	return already, err
}

// Unban убирает пользователя из banlist. No-op для незабаненных.
func (s *Service) Unban(userID int64) (already bool, err error) {
	err = s.store.Mutate(func(set *Settings) error {
		if !set.IsBanned(userID) {
			already = true
			return nil
		}
		set.BannedUsers = removeID(set.BannedUsers, userID)
		return nil
	})
	return already, err
}

// SetLimit устанавливает лимит пользователей. 0 снимает лимит.
func (s *Service) SetLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must be 0 or positive")
	}
	return s.store.Mutate(func(set *Settings) error {
		if limit == 0 {
			set.UserLimit = nil
		} else {
			set.UserLimit = &limit
		}
		return nil
	})
}

// ToggleMaintenance переключает режим обслуживания.
func (s *Service) ToggleMaintenance() (on bool, err error) {
	err = s.store.Mutate(func(set *Settings) error {
		set.Maintenance = !set.Maintenance
		on = set.Maintenance
		return nil
	})
	return on, err
}

// RecordDownload инкрементирует счётчик успешных доставок.
func (s *Service) RecordDownload() error {
	return s.store.Mutate(func(set *Settings) error {
		set.DownloadsCount++
		return nil
	})
}

// --- Парольная аутентификация админ-панели ---

// NeedsLogin — требуется ли /login перед операторскими командами.
func (s *Service) NeedsLogin(userID int64) bool {
	if s.passwordHash == "" {
		return false
	}
	s.authedMu.Lock()
	defer s.authedMu.Unlock()
	return !s.authed[userID]
}

// Login проверяет пароль по Argon2id-хешу и помечает пользователя
// аутентифицированным до конца процесса.
func (s *Service) Login(userID int64, password string) error {
	if s.passwordHash == "" {
		return nil
	}
	if !verifyArgon2id(password, s.passwordHash) {
		return common.ErrWrongPassword
	}
	s.authedMu.Lock()
	s.authed[userID] = true
	s.authedMu.Unlock()
	return nil
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
