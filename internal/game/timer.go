package game

import (
	"sync"
	"time"
)

// RoundTimer is a cancellable one-shot timer. Cancel disarms a pending fire
// and is idempotent, safe to call after the timer already fired. Callbacks
// that lose the Cancel race are expected to be generation-guarded by the
// caller (see Engine), so a late fire is harmless.
type RoundTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewRoundTimer returns a disarmed timer.
func NewRoundTimer() *RoundTimer {
	return &RoundTimer{}
}

// Schedule arms the timer, replacing any previously armed fire.
func (t *RoundTimer) Schedule(d time.Duration, onFire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, onFire)
}

// Cancel disarms the timer if it has not yet fired.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
