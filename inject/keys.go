package inject

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func initKeys() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

// keybdStroker drives the focused application through synthetic
// keystrokes. All methods share one key bonding.
type keybdStroker struct{}

func NewKeystroker() (Keystroker, error) {
	if err := initKeys(); err != nil {
		return nil, err
	}
	return &keybdStroker{}, nil
}

func (keybdStroker) Paste() error {
	kb.Clear()
	kb.SetKeys(keybd_event.VK_V)
	setPasteModifier(&kb)
	return kb.Launching()
}

func (keybdStroker) SelectBack(chars int) error {
	kb.Clear()
	kb.SetKeys(keybd_event.VK_LEFT)
	kb.HasSHIFT(true)
	for i := 0; i < chars; i++ {
		if err := kb.Launching(); err != nil {
			return err
		}
	}
	return nil
}

func (keybdStroker) StepRight() error {
	kb.Clear()
	kb.SetKeys(keybd_event.VK_RIGHT)
	return kb.Launching()
}

func (keybdStroker) DeleteSelection() error {
	kb.Clear()
	kb.SetKeys(keybd_event.VK_DELETE)
	return kb.Launching()
}
