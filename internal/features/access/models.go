// Package access реализует политику доступа к боту: allowlist, banlist,
// режим обслуживания и лимит одновременных пользователей.
// models.go описывает документ настроек, который хранится в JSON-файле.
package access

import "time"

// Settings — единственное процессное состояние бота.
// Сериализуется в человекочитаемый JSON; порядок ключей стабилен
// (encoding/json пишет поля в порядке объявления).
type Settings struct {
	// Maintenance — глобальный флаг обслуживания. Когда true, все
	// не-операторские взаимодействия отвечают сообщением об обслуживании.
	Maintenance bool `json:"maintenance"`
	// UserLimit — максимум одновременно обслуживаемых пользователей.
	// nil = без лимита.
	UserLimit *int `json:"user_limit"`
	// AllowedUsers — кому разрешено пользоваться ботом. Админ всегда внутри.
	AllowedUsers []int64 `json:"allowed_users"`
	// BannedUsers — забаненные. Не пересекается с AllowedUsers, админа тут не бывает.
	BannedUsers []int64 `json:"banned_users"`
	// DownloadsCount — счётчик успешных доставок, только растёт.
	DownloadsCount int64 `json:"downloads_count"`
	// StartTime — unix-время первого запуска, ставится один раз при создании файла.
	StartTime int64 `json:"start_time"`
}

// defaultSettings возвращает настройки первого запуска.
func defaultSettings(adminID int64) *Settings {
	return &Settings{
		Maintenance:  false,
		UserLimit:    nil,
		AllowedUsers: []int64{adminID},
		BannedUsers:  []int64{},
		StartTime:    time.Now().Unix(),
	}
}

// Clone делает глубокую копию документа.
// Снапшоты уходят наружу — чужой код не должен трогать внутреннее состояние.
func (s *Settings) Clone() *Settings {
	c := *s
	c.AllowedUsers = append([]int64(nil), s.AllowedUsers...)
	c.BannedUsers = append([]int64(nil), s.BannedUsers...)
	if s.UserLimit != nil {
		v := *s.UserLimit
		c.UserLimit = &v
	}
	return &c
}

// IsAllowed проверяет членство в allowlist.
func (s *Settings) IsAllowed(userID int64) bool {
	return containsID(s.AllowedUsers, userID)
}

// IsBanned проверяет членство в banlist.
func (s *Settings) IsBanned(userID int64) bool {
	return containsID(s.BannedUsers, userID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
