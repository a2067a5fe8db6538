//go:build darwin

package tray

import (
	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"
)

var (
	mEnabled  *systray.MenuItem
	mModes    *systray.MenuItem
	modeItems []*systray.MenuItem
	mSettings *systray.MenuItem
	mTrigger  *systray.MenuItem
	mLanguage *systray.MenuItem

	menuReady chan struct{}
)

func Init() <-chan struct{} {
	menuReady = make(chan struct{})
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip("dictate – push to talk")

	mEnabled = systray.AddMenuItemCheckbox("Dictation Enabled", "Toggle dictation on or off", enabled)
	mEnabled.Click(func() {
		if mEnabled.Checked() {
			mEnabled.Uncheck()
		} else {
			mEnabled.Check()
		}
		if enabledCb != nil {
			enabledCb(mEnabled.Checked())
		}
	})

	systray.AddSeparator()

	mModes = systray.AddMenuItem("Mode", "Select dictation mode")
	modeMu.Lock()
	modeItems = make([]*systray.MenuItem, 0, len(modeNames))
	for i, name := range modeNames {
		modeItems = append(modeItems, addModeItem(i, name, i == modeSel))
	}
	modeMu.Unlock()

	mSettings = systray.AddMenuItem("Settings", "Settings")

	mTrigger = mSettings.AddSubMenuItem("Trigger Key", "Select push-to-talk key")
	triggerMu.Lock()
	for _, key := range triggerKeys {
		k := key
		item := mTrigger.AddSubMenuItemCheckbox(k, k, k == triggerSel)
		item.Click(func() {
			triggerMu.Lock()
			cb := triggerCb
			triggerSel = k
			triggerMu.Unlock()
			if cb != nil {
				cb(k)
			}
		})
	}
	triggerMu.Unlock()

	mLanguage = mSettings.AddSubMenuItem("Target Language", "Language for Translate mode")
	langMu.Lock()
	for _, lang := range langs {
		l := lang
		item := mLanguage.AddSubMenuItemCheckbox(l, l, l == langSel)
		item.Click(func() {
			langMu.Lock()
			cb := langCb
			langSel = l
			langMu.Unlock()
			if cb != nil {
				cb(l)
			}
		})
	}
	langMu.Unlock()

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit dictate")
	mQuit.Click(func() { Quit() })
	systray.CreateMenu()

	close(menuReady)
}

func addModeItem(idx int, name string, checked bool) *systray.MenuItem {
	item := mModes.AddSubMenuItemCheckbox(name, name, checked)
	item.Click(func() {
		modeMu.Lock()
		cb := modeCb
		modeMu.Unlock()
		if cb != nil {
			cb(idx)
		}
		checkMode(idx)
	})
	return item
}

func checkMode(idx int) {
	modeMu.Lock()
	defer modeMu.Unlock()
	for i, it := range modeItems {
		if i == idx {
			it.Check()
		} else {
			it.Uncheck()
		}
	}
}

func refreshModes() {
	if menuReady == nil {
		return
	}
	select {
	case <-menuReady:
	default:
		return
	}
	modeMu.Lock()
	sel := modeSel
	modeMu.Unlock()
	checkMode(sel)
}

func updateStateIcon(s State) {
	switch s {
	case StateRecording:
		systray.SetIcon(iconRecHi)
	case StateBusy:
		systray.SetIcon(iconBusyHi)
	case StateReviewing:
		systray.SetIcon(iconReviewHi)
	default:
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
	}
}

func updateTooltip(msg string) {
	systray.SetTooltip(msg)
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}
