package session

import (
	"sync"
	"testing"
	"time"
)

func TestRoundTimer_CountsDownAndExpires(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	expired := make(chan struct{})

	tr := NewRoundTimer(3,
		func(remaining int) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		func() { close(expired) },
	)
	tr.interval = 5 * time.Millisecond
	tr.Start()

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatalf("таймер не истек")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) != 3 || ticks[0] != 2 || ticks[1] != 1 || ticks[2] != 0 {
		t.Fatalf("неожиданная последовательность тиков: %v", ticks)
	}
}

func TestRoundTimer_CancelPreventsExpire(t *testing.T) {
	expired := make(chan struct{})

	tr := NewRoundTimer(2, nil, func() { close(expired) })
	tr.interval = 5 * time.Millisecond
	tr.Start()
	tr.Cancel()

	select {
	case <-expired:
		t.Fatalf("expire после Cancel недопустим")
	case <-time.After(50 * time.Millisecond):
	}
}

// Cancel из обработчика expire не должен блокироваться
func TestRoundTimer_CancelFromExpireHandler(t *testing.T) {
	done := make(chan struct{})

	var tr *RoundTimer
	tr = NewRoundTimer(1, nil, func() {
		tr.Cancel()
		close(done)
	})
	tr.interval = 5 * time.Millisecond
	tr.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Cancel из обработчика заблокировался")
	}
}

func TestRoundTimer_CancelIdempotent(t *testing.T) {
	tr := NewRoundTimer(5, nil, nil)
	tr.interval = 5 * time.Millisecond
	tr.Start()
	tr.Cancel()
	tr.Cancel() // повторный вызов не должен паниковать
}

func TestRoundTimer_Remaining(t *testing.T) {
	tr := NewRoundTimer(10, nil, nil)
	if tr.Remaining() != 10 {
		t.Fatalf("до старта Remaining=%d, ожидалось 10", tr.Remaining())
	}
}
