package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"dictate/api"
	"dictate/audio"
	"dictate/beep"
	"dictate/config"
	"dictate/encoder"
	"dictate/hotkey"
	"dictate/inject"
	"dictate/log"
	"dictate/mode"
	"dictate/tray"
)

var version = "dev"

var (
	guiMode    bool
	guiSurface Surface

	activeEngine *engine
	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if activeEngine != nil && activeEngine.Utterances() > 0 {
			log.SessionEnd(activeEngine.Utterances())
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func run() {
	providerFlag := flag.String("provider", "", "API provider: groq or openai (default from config)")
	langFlag := flag.String("lang", "", "Target language for the Translate mode (default from config)")
	formatFlag := flag.String("format", "wav", "Audio upload format: wav or flac")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	triggerFlag := flag.String("trigger", "", "Push-to-talk key: caps_lock, right_alt, or f1 (default from config)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Bool("gui", false, "Run with the desktop overlay (handled before flag parsing)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("dictate %s\n", version)
		os.Exit(0)
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	providerName := settings.Provider
	if *providerFlag != "" {
		providerName = *providerFlag
	}
	provider, err := api.ProviderByName(providerName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	triggerName := settings.TriggerKey
	if *triggerFlag != "" {
		triggerName = *triggerFlag
	}
	trigger, err := hotkey.ParseKey(triggerName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	targetLanguage := settings.DefaultTargetLanguage
	if *langFlag != "" {
		targetLanguage = *langFlag
	}

	switch *formatFlag {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", *formatFlag)
		os.Exit(1)
	}

	modes := mode.All(settings.Modes())

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(provider.Name, *formatFlag, trigger.String())

	client, err := api.NewClient(provider, settings.APIKey())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Printf("Set %s or add the key to the config file.\n", provider.APIKeyEnv)
		os.Exit(1)
	}
	go client.Warm()

	keys, err := inject.NewKeystroker()
	if err != nil {
		log.Errorf("keystroker init error: %v", err)
		fmt.Printf("Error initializing keystroke output: %v\n", err)
		os.Exit(1)
	}
	injector := inject.New(inject.NewClipboard(), keys)

	var captureDevice audio.CaptureDevice
	var selectedDevice *audio.DeviceInfo
	if guiMode {
		// Initialized on the main thread before Fyne started.
		captureDevice = guiCaptureDevice
	} else {
		ctx, err := audio.NewContext()
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Printf("Error initializing audio context: %v\n", err)
			os.Exit(1)
		}
		defer ctx.Close()

		if *deviceFlag != "" {
			selectedDevice, err = audio.FindDevice(ctx, *deviceFlag)
			if err != nil {
				log.Warnf("device lookup failed: %v", err)
				fmt.Printf("Warning: %v, falling back to default device\n", err)
			}
		} else if *setupFlag {
			selectedDevice, err = audio.SelectDevice(ctx)
			if err != nil {
				log.Warnf("device selection failed: %v", err)
				fmt.Printf("Warning: device selection failed: %v\n", err)
				fmt.Println("Falling back to default device")
				selectedDevice = nil
			}
		}

		captureDevice, err = ctx.NewCapture(selectedDevice, audio.CaptureConfig{
			SampleRate: encoder.SampleRate,
			Channels:   encoder.Channels,
		})
		if err != nil {
			log.Errorf("capture device init error: %v", err)
			fmt.Printf("Error initializing capture device: %v\n", err)
			os.Exit(1)
		}
		defer captureDevice.Close()
	}

	vad, err := newVADProcessor()
	if err != nil {
		log.Warnf("VAD init failed: %v (silence warnings disabled)", err)
		vad = nil
	}

	watch := hotkey.NewWatch(hotkey.New(trigger))
	if err := watch.Start(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer watch.Stop()

	useTUI := guiSurface == nil && *tuiFlag
	var surface Surface = nopSurface{}
	if guiSurface != nil {
		surface = guiSurface
	} else if useTUI {
		surface = tuiSurface{}
	}

	eng := newEngine(engineConfig{
		capture:        captureDevice,
		injector:       injector,
		service:        client,
		surface:        surface,
		vad:            vad,
		format:         *formatFlag,
		provider:       provider.Name,
		modes:          modes,
		targetLanguage: targetLanguage,
		keydown:        watch.Keydown(),
		keyup:          watch.Keyup(),
		warm:           client.Warm,
	})
	activeEngine = eng

	if useTUI {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(eng)
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()
	}

	trayQuit := tray.Init()
	tray.OnEnable(func(on bool) { eng.SetEnabled(on) })

	modeNames := make([]string, len(modes))
	for i, m := range modes {
		modeNames[i] = m.DisplayName()
	}
	tray.SetModes(modeNames, 0, func(i int) { eng.SelectMode(i) })

	tray.SetTriggerKeys([]string{"caps_lock", "right_alt", "f1"}, trigger.String(), func(name string) {
		k, err := hotkey.ParseKey(name)
		if err != nil {
			return
		}
		watch.SetTriggerKey(k)
		settings.TriggerKey = name
		if err := settings.Save(); err != nil {
			log.Warnf("config save failed: %v", err)
		}
		log.Info("trigger_key: " + name)
	})

	tray.SetLanguages(mode.Languages, targetLanguage, func(name string) {
		eng.SetTargetLanguage(name)
		settings.DefaultTargetLanguage = name
		if err := settings.Save(); err != nil {
			log.Warnf("config save failed: %v", err)
		}
	})

	go beep.Init()

	eng.Start()

	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		log.Warn("bluetooth_mic: capture quality may be degraded")
		surface.StatusLine("⚠ bluetooth mic: audio quality may be degraded")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-trayQuit:
	}
	gracefulShutdown()
}
