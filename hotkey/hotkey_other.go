//go:build !linux

package hotkey

import (
	"sync"

	"golang.design/x/hotkey"
)

// xBackend registers trigger keys through the OS global hotkey API.
// Caps Lock and Right Alt are not registrable as global hotkeys here, so
// both fall back to Ctrl+Shift+Space.
type xBackend struct {
	keydown chan struct{}
	keyup   chan struct{}

	mu         sync.Mutex
	key        Key
	hk         *hotkey.Hotkey
	relayStop  chan struct{}
	registered bool
}

func New(key Key) Backend {
	return &xBackend{
		key:     key,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func newX(key Key) *hotkey.Hotkey {
	if key == KeyF1 {
		return hotkey.New([]hotkey.Modifier{}, hotkey.KeyF1)
	}
	return hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace)
}

func (b *xBackend) Register() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registerLocked()
}

func (b *xBackend) registerLocked() error {
	hk := newX(b.key)
	if err := hk.Register(); err != nil {
		return err
	}

	b.hk = hk
	b.relayStop = make(chan struct{})
	b.registered = true

	stop := b.relayStop
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-hk.Keydown():
				select {
				case b.keydown <- struct{}{}:
				default:
				}
			}
		}
	}()
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-hk.Keyup():
				select {
				case b.keyup <- struct{}{}:
				default:
				}
			}
		}
	}()
	return nil
}

func (b *xBackend) unregisterLocked() {
	if !b.registered {
		return
	}
	close(b.relayStop)
	b.hk.Unregister()
	b.registered = false
}

// SetKey swaps the OS registration. An error re-registering leaves the
// watcher without a hotkey until the next SetKey.
func (b *xBackend) SetKey(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if key == b.key {
		return
	}
	wasRegistered := b.registered
	b.unregisterLocked()
	b.key = key
	if wasRegistered {
		b.registerLocked()
	}
}

func (b *xBackend) Unregister() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unregisterLocked()
}

func (b *xBackend) Keydown() <-chan struct{} {
	return b.keydown
}

func (b *xBackend) Keyup() <-chan struct{} {
	return b.keyup
}

func Diagnose() (string, error) {
	return "hotkey support available", nil
}
