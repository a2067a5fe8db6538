//go:build !gui

package main

import "dictate/audio"

// Stubs for non-GUI builds (never reached since guiMode stays false)
var guiAudioCtx audio.Context
var guiCaptureDevice audio.CaptureDevice

func initGUI() {
	panic("dictate: built without GUI support (rebuild with -tags gui)")
}
