package httpmcp

import (
	"context"
	"time"
)

// startPing (re)arms the keep-alive ping loop at the given period. Any
// outbound request resets the timer (resetPingTimer); the loop itself only
// fires pingFunc while the timer is left to expire undisturbed.
func (t *Transport) startPing(period time.Duration) {
	t.pingMu.Lock()
	if t.pingFunc == nil || period <= 0 {
		t.pingMu.Unlock()
		return
	}
	t.pingPeriod = period
	alreadyRunning := t.pingRunning
	if !alreadyRunning {
		t.pingRunning = true
		t.pingStop = make(chan struct{})
	}
	stop := t.pingStop
	t.pingMu.Unlock()

	if alreadyRunning {
		t.resetPingTimer()
		return
	}

	go t.pingLoop(stop)
}

func (t *Transport) pingLoop(stop chan struct{}) {
	for {
		t.pingMu.Lock()
		period := t.pingPeriod
		fn := t.pingFunc
		t.pingMu.Unlock()
		if period <= 0 || fn == nil {
			return
		}

		timer := time.NewTimer(period)
		t.pingMu.Lock()
		t.pingTimer = timer
		t.pingMu.Unlock()

		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), period)
			_ = fn(ctx)
			cancel()
		}
	}
}

// resetPingTimer restarts the keep-alive countdown; called on every
// outbound Send so a busy connection never self-pings.
func (t *Transport) resetPingTimer() {
	t.pingMu.Lock()
	defer t.pingMu.Unlock()
	if t.pingTimer != nil && t.pingPeriod > 0 {
		t.pingTimer.Reset(t.pingPeriod)
	}
}

func (t *Transport) stopPing() {
	t.pingMu.Lock()
	defer t.pingMu.Unlock()
	if t.pingRunning {
		close(t.pingStop)
		t.pingRunning = false
	}
	if t.pingTimer != nil {
		t.pingTimer.Stop()
	}
}
