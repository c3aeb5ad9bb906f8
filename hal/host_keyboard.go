//go:build !tinygo

package hal

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// emit queues ev, dropping it when the host is not draining events.
func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}
