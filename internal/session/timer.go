package session

import (
	"sync"
	"time"
)

// RoundTimer - обратный отсчет раунда: тикает раз в секунду, на нуле
// стреляет expire. Cancel гарантирует, что expire после него не вызовется.
// На сессию активен не более одного таймера.
type RoundTimer struct {
	mu        sync.Mutex
	remaining int
	interval  time.Duration
	onTick    func(remaining int)
	onExpire  func()
	stopped   bool
	done      chan struct{}
}

func NewRoundTimer(seconds int, onTick func(int), onExpire func()) *RoundTimer {
	return &RoundTimer{
		remaining: seconds,
		interval:  time.Second,
		onTick:    onTick,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
}

// Start запускает отсчет в отдельной горутине
func (t *RoundTimer) Start() {
	go t.run()
}

func (t *RoundTimer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			expired := remaining <= 0
			if expired {
				// помечаем остановленным ДО колбэка, чтобы Cancel из
				// обработчика не ждал и повторный expire был невозможен
				t.stopped = true
			}
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		case <-t.done:
			return
		}
	}
}

// Cancel останавливает таймер без expire. Идемпотентен.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// Remaining возвращает оставшиеся секунды
func (t *RoundTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
