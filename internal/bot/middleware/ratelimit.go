package middleware

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RateLimiter ограничивает частоту сообщений на пользователя
// по скользящему окну. Скачивания и так ограничены семафором
// пайплайна, здесь мы гасим только болтовню и спам кнопками.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[int64][]time.Time
	limit  int
	window time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		seen:   make(map[int64][]time.Time),
		limit:  limit,
		window: window,
		stopCh: make(chan struct{}),
	}
	go rl.vacuum()
	return rl
}

// Close останавливает фоновую горутину очистки.
// Его надо вызывать на shutdown (иначе vacuum будет жить вечно).
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow отмечает событие пользователя и говорит, пускать ли его.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneBefore(rl.seen[userID], now.Add(-rl.window))

	if len(recent) >= rl.limit {
		rl.seen[userID] = recent
		log.WithFields(log.Fields{
			"user_id": userID,
			"limit":   rl.limit,
		}).Debug("rate limit: отказ")
		return false
	}

	rl.seen[userID] = append(recent, now)
	return true
}

// pruneBefore выкидывает отметки старше cutoff.
// Отметки монотонны, поэтому достаточно найти первую живую.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

func (rl *RateLimiter) vacuum() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for userID, times := range rl.seen {
				recent := pruneBefore(times, cutoff)
				if len(recent) == 0 {
					delete(rl.seen, userID)
				} else {
					rl.seen[userID] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}
