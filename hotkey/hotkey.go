// Package hotkey watches a global push-to-talk key. Backends deliver raw
// press/release events; Watch turns them into a clean keydown/keyup stream.
package hotkey

import "fmt"

// Key identifies a supported trigger key.
type Key int

const (
	KeyCapsLock Key = iota
	KeyRightAlt
	KeyF1
)

func ParseKey(s string) (Key, error) {
	switch s {
	case "caps_lock":
		return KeyCapsLock, nil
	case "right_alt":
		return KeyRightAlt, nil
	case "f1":
		return KeyF1, nil
	}
	return 0, fmt.Errorf("unknown trigger key %q (want caps_lock, right_alt or f1)", s)
}

func (k Key) String() string {
	switch k {
	case KeyCapsLock:
		return "caps_lock"
	case KeyRightAlt:
		return "right_alt"
	case KeyF1:
		return "f1"
	}
	return "unknown"
}

// Backend is a platform hotkey source. SetKey takes effect on the next
// press; a press already in flight completes under the old key.
type Backend interface {
	Register() error
	Unregister()
	SetKey(Key)
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
