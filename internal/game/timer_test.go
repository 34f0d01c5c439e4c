package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundTimerFires(t *testing.T) {
	timer := NewRoundTimer()
	fired := make(chan struct{})

	timer.Schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestRoundTimerCancelPreventsFire(t *testing.T) {
	timer := NewRoundTimer()
	var fires int32

	timer.Schedule(20*time.Millisecond, func() { atomic.AddInt32(&fires, 1) })
	timer.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))

	// Cancel after fire (or repeated cancel) is harmless.
	timer.Cancel()
}

func TestRoundTimerScheduleReplacesPending(t *testing.T) {
	timer := NewRoundTimer()
	var first, second int32

	timer.Schedule(20*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	timer.Schedule(10*time.Millisecond, func() { atomic.AddInt32(&second, 1) })

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}
