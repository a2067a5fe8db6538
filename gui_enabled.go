//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"dictate/audio"
	"dictate/encoder"
	"dictate/gui"
)

var guiApp *gui.App

// Audio context initialized on main thread for macOS Core Audio compatibility
var guiAudioCtx audio.Context
var guiCaptureDevice audio.CaptureDevice

func initGUI() {
	guiMode = true

	// macOS Core Audio requires main thread access for proper capture,
	// so the audio context comes up before Fyne takes over.
	var err error
	guiAudioCtx, err = audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}

	guiCaptureDevice, err = guiAudioCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}

	// Lock this goroutine to the OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	guiSurface = guiApp
	if err := gui.Run(guiApp); err != nil {
		guiCaptureDevice.Close()
		guiAudioCtx.Close()
		panic(err)
	}
}
