//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
)

// evdev key codes for the supported trigger keys.
const (
	codeCapsLock = 58
	codeF1       = 59
	codeRightAlt = 100
)

const inputEventSize = 24

func evdevCode(k Key) uint32 {
	switch k {
	case KeyRightAlt:
		return codeRightAlt
	case KeyF1:
		return codeF1
	}
	return codeCapsLock
}

type linuxBackend struct {
	code    atomic.Uint32
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New(key Key) Backend {
	b := &linuxBackend{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
	b.code.Store(evdevCode(key))
	return b
}

func (b *linuxBackend) SetKey(key Key) {
	b.code.Store(evdevCode(key))
}

func (b *linuxBackend) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	b.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		b.files = append(b.files, f)
		go b.readEvents(f)
	}

	if len(b.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (b *linuxBackend) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)

	// The code the in-flight press started with. A key change while held
	// must still match the release against the old code.
	var heldCode uint32
	var held bool

	for {
		select {
		case <-b.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := uint32(binary.LittleEndian.Uint16(buf[i+18:]))
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			switch {
			case evValue == keyPress && !held && evCode == b.code.Load():
				held = true
				heldCode = evCode
				select {
				case b.keydown <- struct{}{}:
				default:
				}
			case evValue == keyRelease && held && evCode == heldCode:
				held = false
				select {
				case b.keyup <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *linuxBackend) Unregister() {
	b.once.Do(func() {
		if b.stop != nil {
			close(b.stop)
		}
		for _, f := range b.files {
			f.Close()
		}
	})
}

func (b *linuxBackend) Keydown() <-chan struct{} {
	return b.keydown
}

func (b *linuxBackend) Keyup() <-chan struct{} {
	return b.keyup
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join("/dev/input", e.Name())
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, path)
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
