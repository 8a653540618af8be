package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow(42) {
			t.Fatalf("запрос %d должен пройти", i+1)
		}
	}
	if rl.Allow(42) {
		t.Fatal("четвёртый запрос должен быть отклонён")
	}
}

func TestRateLimiterIsPerUser(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	if !rl.Allow(1) {
		t.Fatal("первый пользователь должен пройти")
	}
	if !rl.Allow(2) {
		t.Fatal("лимит одного пользователя не должен задевать другого")
	}
	if rl.Allow(1) {
		t.Fatal("повтор первого пользователя должен быть отклонён")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	defer rl.Close()

	if !rl.Allow(7) {
		t.Fatal("первый запрос должен пройти")
	}
	if rl.Allow(7) {
		t.Fatal("второй запрос в окне должен быть отклонён")
	}

	time.Sleep(50 * time.Millisecond)

	if !rl.Allow(7) {
		t.Fatal("после истечения окна запрос должен пройти")
	}
}

func TestPruneBefore(t *testing.T) {
	now := time.Now()
	times := []time.Time{
		now.Add(-3 * time.Minute),
		now.Add(-2 * time.Minute),
		now.Add(-30 * time.Second),
		now,
	}

	got := pruneBefore(times, now.Add(-time.Minute))
	if len(got) != 2 {
		t.Fatalf("ожидалось 2 живых отметки, получено %d", len(got))
	}
}
