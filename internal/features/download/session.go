// Package download — session.go: реестр сессий по чатам.
// Машина состояний: idle → awaiting-mode → working → idle.
// Внутри одного чата переходы сериализуются флагом working;
// между чатами сессии независимы.
package download

import (
	"sync"
	"time"

	"webgrab.dev/telegram-bot/internal/common"
)

// Phase — фаза сессии чата.
type Phase int

const (
	// PhaseIdle — сессии нет (URL не прислан или уже обработан).
	PhaseIdle Phase = iota
	// PhaseAwaitingMode — URL принят, ждём выбор режима на клавиатуре.
	PhaseAwaitingMode
	// PhaseWorking — пайплайн запущен.
	PhaseWorking
)

// session — эфемерное состояние одного чата.
type session struct {
	userID    int64
	url       string
	phase     Phase
	cancelled bool // /cancel пришёл во время working: результат выбросить
	startedAt time.Time
}

// Sessions — реестр сессий, ключ — chat ID.
type Sessions struct {
	mu     sync.Mutex
	byChat map[int64]*session
}

// NewSessions создаёт пустой реестр.
func NewSessions() *Sessions {
	return &Sessions{byChat: make(map[int64]*session)}
}

// Begin принимает URL: idle/awaiting-mode → awaiting-mode (новый URL
// затирает прежний). Для чата в working возвращает common.ErrBusy —
// новые сообщения не обрабатываются, пока задача не завершится.
func (s *Sessions) Begin(chatID, userID int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.byChat[chatID]; ok && cur.phase == PhaseWorking {
		return common.ErrBusy
	}
	s.byChat[chatID] = &session{
		userID:    userID,
		url:       url,
		phase:     PhaseAwaitingMode,
		startedAt: time.Now(),
	}
	return nil
}

// TakeForWork переводит awaiting-mode → working и возвращает URL.
// В working кнопка игнорируется (ErrBusy), без сессии — ErrNoURL.
func (s *Sessions) TakeForWork(chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byChat[chatID]
	if !ok || cur.url == "" {
		return "", common.ErrNoURL
	}
	if cur.phase == PhaseWorking {
		return "", common.ErrBusy
	}
	cur.phase = PhaseWorking
	cur.cancelled = false
	return cur.url, nil
}

// Cancel обрабатывает /cancel и кнопку cancel.
// Для working-сессии задача дорабатывает, но её результат будет выброшен.
func (s *Sessions) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byChat[chatID]
	if !ok {
		return
	}
	if cur.phase == PhaseWorking {
		cur.cancelled = true
		return
	}
	delete(s.byChat, chatID)
}

// Finish вызывается в конце пайплайна (любой исход).
// Возвращает true, если сессию отменили, пока шла работа, —
// тогда результат не доставляется.
func (s *Sessions) Finish(chatID int64) (cancelled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byChat[chatID]
	if !ok {
		return false
	}
	cancelled = cur.cancelled
	delete(s.byChat, chatID)
	return cancelled
}

// Phase возвращает текущую фазу чата.
func (s *Sessions) Phase(chatID int64) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.byChat[chatID]; ok {
		return cur.phase
	}
	return PhaseIdle
}

// SweepStale удаляет awaiting-mode сессии старше maxAge: брошенная
// клавиатура не должна вечно занимать слот лимита пользователей.
// Working-сессии не трогаем — их закрывает Finish.
func (s *Sessions) SweepStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for chatID, cur := range s.byChat {
		if cur.phase == PhaseAwaitingMode && cur.startedAt.Before(cutoff) {
			delete(s.byChat, chatID)
			removed++
		}
	}
	return removed
}

// Active считает различных пользователей с живой сессией, не считая ignore
// (админа и самого проверяемого — своя сессия лимит не занимает).
// Это и есть "active users" для проверки лимита.
func (s *Sessions) Active(ignore ...int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	skip := make(map[int64]bool, len(ignore))
	for _, id := range ignore {
		skip[id] = true
	}

	seen := make(map[int64]bool)
	for _, cur := range s.byChat {
		if !skip[cur.userID] && cur.phase != PhaseIdle {
			seen[cur.userID] = true
		}
	}
	return len(seen)
}
