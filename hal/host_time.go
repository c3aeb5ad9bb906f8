//go:build !tinygo

package hal

import "time"

type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step advances the tick stream by the real time elapsed since the previous call.
func (t *hostTime) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	const tickDur = time.Millisecond
	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.stepN(ticks)
}

// stepN publishes the newest sequence number; readers only care about the latest value.
func (t *hostTime) stepN(n uint64) {
	t.seq += n
	select {
	case t.ch <- t.seq:
	default:
	}
}
