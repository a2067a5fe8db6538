// Package tray puts a status icon in the menu bar with quick access to
// dictation settings. Only darwin gets a real implementation; everywhere
// else the calls are no-ops and the TUI is the control surface.
package tray

import (
	"sync"
	"time"
)

// State mirrors the engine state for icon purposes.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateBusy // transcribing or rewriting
	StateReviewing
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	enabled   = true
	enabledCb func(bool)

	modeMu    sync.Mutex
	modeNames []string
	modeSel   int
	modeCb    func(int)

	triggerMu   sync.Mutex
	triggerKeys []string
	triggerSel  string
	triggerCb   func(string)

	langMu   sync.Mutex
	langs    []string
	langSel  string
	langCb   func(string)
)

// SetEnabled seeds the enabled checkbox; OnEnable is called when the
// user toggles it.
func SetEnabled(on bool) { enabled = on }
func OnEnable(fn func(bool)) { enabledCb = fn }

func SetModes(names []string, selected int, onSwitch func(int)) {
	modeMu.Lock()
	modeNames = names
	modeSel = selected
	if onSwitch != nil {
		modeCb = onSwitch
	}
	modeMu.Unlock()
	refreshModes()
}

func SetTriggerKeys(keys []string, selected string, onSwitch func(string)) {
	triggerMu.Lock()
	triggerKeys = keys
	triggerSel = selected
	if onSwitch != nil {
		triggerCb = onSwitch
	}
	triggerMu.Unlock()
}

func SetLanguages(names []string, selected string, onSwitch func(string)) {
	langMu.Lock()
	langs = names
	langSel = selected
	if onSwitch != nil {
		langCb = onSwitch
	}
	langMu.Unlock()
}

// SetState updates the status icon.
func SetState(s State) {
	updateStateIcon(s)
}

// SetMode updates the checked mode without firing the callback. The
// engine calls this when the mode is cycled from the keyboard.
func SetMode(selected int) {
	modeMu.Lock()
	modeSel = selected
	modeMu.Unlock()
	refreshModes()
}

func SetError(msg string) {
	updateTooltip("dictate – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		updateTooltip("dictate – push to talk")
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}
