// Package inject places transcribed text into the focused application by
// pasting through the clipboard and driving selection with synthetic
// keystrokes. Tentative text stays selected so it can be replaced, accepted
// or cancelled without the user touching it.
package inject

import (
	"sync"
	"time"
	"unicode/utf8"

	"dictate/log"
)

// restoreDelay is how long to wait before putting the user's clipboard
// back. Pasting is asynchronous in most toolkits; restoring too early
// pastes the old clipboard instead.
const restoreDelay = 600 * time.Millisecond

type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

type Keystroker interface {
	Paste() error
	SelectBack(chars int) error
	StepRight() error
	DeleteSelection() error
}

// State describes what is currently injected at the cursor.
type State struct {
	Text      string
	CharCount int
	Tentative bool
}

type Injector struct {
	clip  Clipboard
	keys  Keystroker
	grace time.Duration

	mu    sync.Mutex
	state State
}

func New(clip Clipboard, keys Keystroker) *Injector {
	return &Injector{clip: clip, keys: keys, grace: restoreDelay}
}

// SetRestoreGrace overrides the clipboard restore delay. Tests use this
// to avoid waiting out the real grace period.
func (in *Injector) SetRestoreGrace(d time.Duration) {
	in.grace = d
}

func (in *Injector) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

func (in *Injector) Tentative() bool {
	return in.State().Tentative
}

// Inject pastes text at the cursor and leaves it as final.
func (in *Injector) Inject(text string) bool {
	if text == "" {
		return false
	}
	if !in.paste(text) {
		return false
	}
	in.mu.Lock()
	in.state = State{Text: text, CharCount: utf8.RuneCountInString(text)}
	in.mu.Unlock()
	return true
}

// InjectSelected pastes text and selects it backwards so it stays
// highlighted, marking the injection tentative.
func (in *Injector) InjectSelected(text string) bool {
	if text == "" {
		return false
	}
	if !in.paste(text) {
		return false
	}
	n := utf8.RuneCountInString(text)
	if err := in.keys.SelectBack(n); err != nil {
		log.Errorf("selecting injected text: %v", err)
		in.mu.Lock()
		in.state = State{Text: text, CharCount: n}
		in.mu.Unlock()
		return false
	}
	in.mu.Lock()
	in.state = State{Text: text, CharCount: n, Tentative: true}
	in.mu.Unlock()
	return true
}

// ReplaceSelected pastes text over the current tentative selection and
// re-selects it. Returns false if nothing is tentative.
func (in *Injector) ReplaceSelected(text string) bool {
	in.mu.Lock()
	tentative := in.state.Tentative
	in.mu.Unlock()
	if !tentative || text == "" {
		return false
	}
	if !in.paste(text) {
		return false
	}
	n := utf8.RuneCountInString(text)
	if err := in.keys.SelectBack(n); err != nil {
		log.Errorf("re-selecting replaced text: %v", err)
		in.mu.Lock()
		in.state = State{Text: text, CharCount: n}
		in.mu.Unlock()
		return false
	}
	in.mu.Lock()
	in.state = State{Text: text, CharCount: n, Tentative: true}
	in.mu.Unlock()
	return true
}

// Accept collapses the tentative selection, keeping the text.
func (in *Injector) Accept() bool {
	in.mu.Lock()
	if !in.state.Tentative {
		in.mu.Unlock()
		return false
	}
	in.state.Tentative = false
	in.mu.Unlock()

	if err := in.keys.StepRight(); err != nil {
		log.Errorf("collapsing selection: %v", err)
		return false
	}
	return true
}

// Cancel deletes the tentative selection, removing the text.
func (in *Injector) Cancel() bool {
	in.mu.Lock()
	if !in.state.Tentative {
		in.mu.Unlock()
		return false
	}
	in.state = State{}
	in.mu.Unlock()

	if err := in.keys.DeleteSelection(); err != nil {
		log.Errorf("deleting selection: %v", err)
		return false
	}
	return true
}

func (in *Injector) paste(text string) bool {
	prev, _ := in.clip.Read()
	if err := in.clip.Write(text); err != nil {
		log.Errorf("writing clipboard: %v", err)
		return false
	}
	if err := in.keys.Paste(); err != nil {
		log.Errorf("sending paste keystroke: %v", err)
		// Nothing was pasted, so the clipboard can go back right away.
		in.clip.Write(prev)
		return false
	}
	go func() {
		time.Sleep(in.grace)
		in.clip.Write(prev)
	}()
	return true
}
