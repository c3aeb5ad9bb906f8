//go:build !tinygo && !cgo

package hal

// poll is a no-op: keys only come from the window backend.
func (k *hostKeyboard) poll() {}
