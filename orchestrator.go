package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dictate/api"
	"dictate/audio"
	"dictate/beep"
	"dictate/encoder"
	"dictate/inject"
	"dictate/log"
	"dictate/mode"
	"dictate/notify"
	"dictate/tray"
)

type AppState int

const (
	StateIdle AppState = iota
	StateRecording
	StateTranscribing
	StateReviewing
)

func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateReviewing:
		return "reviewing"
	}
	return "unknown"
}

// Utterance is one recorded thing the user said. OriginalText never
// changes after transcription; CurrentText tracks what is injected.
type Utterance struct {
	ID             string
	Samples        []int16
	OriginalText   string
	CurrentText    string
	Mode           mode.Mode
	TargetLanguage string
}

type uiEventKind int

const (
	uiCycleMode uiEventKind = iota
	uiSelectMode
	uiAccept
	uiCancel
	uiSetLanguage
	uiSetEnabled
)

type uiEvent struct {
	kind     uiEventKind
	delta    int
	modeIdx  int
	language string
	enabled  bool
}

type engineConfig struct {
	capture        audio.CaptureDevice
	injector       *inject.Injector
	service        api.Service
	surface        Surface
	vad            *vadProcessor
	format         string
	provider       string
	modes          []mode.Mode
	initialMode    int
	targetLanguage string
	keydown        <-chan struct{}
	keyup          <-chan struct{}
	warm           func()
}

// engine owns the application state. Everything that reads or writes
// state happens on the run goroutine; other goroutines talk to it
// through channels.
type engine struct {
	recorder *audio.Recorder
	injector *inject.Injector
	service  api.Service
	surface  Surface
	queue    *workQueue
	vad      *vadProcessor

	format   string
	provider string

	state     AppState
	stateAtom atomic.Int32

	modes          []mode.Mode
	modeIdx        int
	targetLanguage string
	enabled        bool

	current      *Utterance
	pendingGen   uint64
	pendingStart time.Time
	swallowKeyup bool

	keydown <-chan struct{}
	keyup   <-chan struct{}
	ui      chan uiEvent
	amp     chan float64
	dur     chan float64

	warm func()

	mon    *silenceMonitor
	ticker *time.Ticker
	tickCh <-chan time.Time

	lastDuration float64
	utterances   int

	stop chan struct{}
	done chan struct{}
}

func newEngine(cfg engineConfig) *engine {
	e := &engine{
		injector:       cfg.injector,
		service:        cfg.service,
		surface:        cfg.surface,
		queue:          newWorkQueue(),
		vad:            cfg.vad,
		format:         cfg.format,
		provider:       cfg.provider,
		modes:          cfg.modes,
		modeIdx:        cfg.initialMode,
		targetLanguage: cfg.targetLanguage,
		enabled:        true,
		keydown:        cfg.keydown,
		keyup:          cfg.keyup,
		warm:           cfg.warm,
		ui:             make(chan uiEvent, 16),
		amp:            make(chan float64, 1),
		dur:            make(chan float64, 1),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	if e.surface == nil {
		e.surface = nopSurface{}
	}
	if e.targetLanguage == "" {
		e.targetLanguage = mode.DefaultTargetLanguage
	}
	e.recorder = audio.NewRecorder(cfg.capture, audio.RecorderHooks{
		OnAmplitude: func(v float64) { sendLatest(e.amp, v) },
		OnDuration:  func(v float64) { sendLatest(e.dur, v) },
		OnData: func(data []byte) {
			if e.vad != nil {
				e.vad.Process(data)
			}
		},
	})
	return e
}

// sendLatest delivers the newest value without blocking the audio
// callback; a stale unread value is simply overwritten next time.
func sendLatest(ch chan float64, v float64) {
	select {
	case ch <- v:
	default:
	}
}

func (e *engine) Start() {
	go e.run()
}

func (e *engine) Stop() {
	close(e.stop)
	<-e.done
}

// State is safe to call from any goroutine.
func (e *engine) State() AppState {
	return AppState(e.stateAtom.Load())
}

func (e *engine) Mode() mode.Mode {
	return e.modes[e.modeIdx]
}

func (e *engine) CycleMode(delta int) { e.ui <- uiEvent{kind: uiCycleMode, delta: delta} }
func (e *engine) SelectMode(idx int) { e.ui <- uiEvent{kind: uiSelectMode, modeIdx: idx} }
func (e *engine) Accept() { e.ui <- uiEvent{kind: uiAccept} }
func (e *engine) Cancel() { e.ui <- uiEvent{kind: uiCancel} }
func (e *engine) SetTargetLanguage(lang string) { e.ui <- uiEvent{kind: uiSetLanguage, language: lang} }
func (e *engine) SetEnabled(on bool) { e.ui <- uiEvent{kind: uiSetEnabled, enabled: on} }

func (e *engine) run() {
	defer close(e.done)
	e.surface.ModeLine(e.modeLineText())
	for {
		select {
		case <-e.stop:
			if e.state == StateRecording {
				e.recorder.Cancel()
				e.stopTicker()
			}
			return
		case <-e.keydown:
			e.onTriggerDown()
		case <-e.keyup:
			e.onTriggerUp()
		case r := <-e.queue.Results():
			e.onJobResult(r)
		case ev := <-e.ui:
			e.onUIEvent(ev)
		case v := <-e.amp:
			e.surface.AudioLevel(v)
		case v := <-e.dur:
			e.lastDuration = v
			e.surface.RecordingTick(v)
		case <-e.tickCh:
			e.onTick()
		}
	}
}

func (e *engine) setState(s AppState, reason string) {
	if e.state == s {
		return
	}
	log.StateChange(e.state.String(), s.String(), reason)
	e.state = s
	e.stateAtom.Store(int32(s))
}

func (e *engine) modeLineText() string {
	m := e.modes[e.modeIdx]
	label := m.DisplayName()
	if m.Kind == mode.Translate {
		label += " → " + e.targetLanguage
	}
	return fmt.Sprintf("[%s | %s | %s]", e.format, e.provider, label)
}

func (e *engine) onTriggerDown() {
	switch e.state {
	case StateIdle:
		if !e.enabled {
			return
		}
		e.startRecording()
	case StateTranscribing:
		// A new press supersedes the work in flight.
		log.Job("superseded", "pending", e.pendingGen)
		e.pendingGen = 0
		e.current = nil
		e.startRecording()
	case StateReviewing:
		// Pressing while reviewing commits what is on screen. The
		// matching release must not be mistaken for end-of-recording.
		e.swallowKeyup = true
		e.resolveReview(true, "trigger_down")
	}
}

func (e *engine) onTriggerUp() {
	if e.swallowKeyup {
		e.swallowKeyup = false
		return
	}
	if e.state != StateRecording {
		return
	}
	e.finishRecording()
}

func (e *engine) startRecording() {
	if err := e.recorder.Start(); err != nil {
		e.failToIdle("microphone unavailable", err)
		return
	}
	if e.vad != nil {
		e.vad.Reset()
	}
	e.mon = newSilenceMonitor()
	e.ticker = time.NewTicker(tickInterval)
	e.tickCh = e.ticker.C
	e.lastDuration = 0
	if e.warm != nil {
		// Get the TLS session up before the upload needs it.
		go e.warm()
	}
	beep.Play(beep.Start)
	e.surface.RecordingStart()
	tray.SetState(tray.StateRecording)
	e.setState(StateRecording, "trigger_down")
}

func (e *engine) stopTicker() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
		e.tickCh = nil
	}
}

func (e *engine) finishRecording() {
	samples := e.recorder.Stop()
	e.stopTicker()
	beep.Play(beep.Stop)
	e.surface.RecordingStop()

	if len(samples) < audio.MinSamples {
		// Accidental tap on the trigger key.
		e.surface.Resolved()
		tray.SetState(tray.StateIdle)
		e.setState(StateIdle, "too_short")
		return
	}

	u := &Utterance{
		ID:             uuid.NewString(),
		Samples:        samples,
		Mode:           e.modes[e.modeIdx],
		TargetLanguage: e.targetLanguage,
	}
	e.current = u
	e.submitTranscribe(u)
	e.surface.Processing("transcribing")
	tray.SetState(tray.StateBusy)
	e.setState(StateTranscribing, "trigger_up")
}

func (e *engine) submitTranscribe(u *Utterance) {
	samples := u.Samples
	format := e.format
	e.pendingStart = time.Now()
	e.pendingGen = e.queue.submit(jobTranscribe, func(ctx context.Context) (string, error) {
		data, err := encoder.Encode(samples, format)
		if err != nil {
			return "", fmt.Errorf("encoding audio: %w", err)
		}
		result, err := e.service.Transcribe(ctx, data, format)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(result.Text), nil
	})
}

func (e *engine) submitRewrite(u *Utterance) {
	prompt := u.Mode.SystemPrompt(u.TargetLanguage)
	text := u.OriginalText
	e.pendingStart = time.Now()
	e.pendingGen = e.queue.submit(jobRewrite, func(ctx context.Context) (string, error) {
		return e.service.Rewrite(ctx, prompt, text)
	})
	e.surface.Processing("rewriting")
}

func (e *engine) onJobResult(r jobResult) {
	if r.generation != e.pendingGen || e.current == nil {
		log.Job("drop_stale", string(r.kind), r.generation)
		return
	}
	e.pendingGen = 0
	log.Job("complete", string(r.kind), r.generation)

	switch r.kind {
	case jobTranscribe:
		e.onTranscribed(r)
	case jobRewrite:
		e.onRewritten(r)
	}
}

func (e *engine) onTranscribed(r jobResult) {
	u := e.current
	if r.err != nil {
		e.failToIdle("transcription failed", r.err)
		return
	}
	if r.text == "" {
		e.surface.StatusLine("(no speech detected)")
		e.surface.Resolved()
		tray.SetState(tray.StateIdle)
		e.current = nil
		e.setState(StateIdle, "no_speech")
		return
	}

	u.OriginalText = r.text
	audioSeconds := float64(len(u.Samples)) / float64(encoder.SampleRate)
	log.Transcription(u.ID, audioSeconds, len(r.text), float64(time.Since(e.pendingStart).Milliseconds()))
	log.TranscriptionText(r.text)
	e.utterances++

	// The raw transcription goes in immediately, selected. A rewrite
	// (if the mode wants one) replaces the selection when it lands.
	if !e.applyText(u, r.text) {
		return
	}
	if !u.Mode.PassThrough() {
		e.submitRewrite(u)
	}
}

func (e *engine) onRewritten(r jobResult) {
	u := e.current
	if r.err != nil {
		// The previously injected text stays; only the processing
		// indicator clears.
		log.Errorf("rewrite failed: %v", r.err)
		notify.Notify("dictate", "Rewrite failed, keeping original text")
		beep.Play(beep.Error)
		e.surface.ErrorLine(fmt.Sprintf("rewrite failed: %v", r.err))
		e.surface.Review(u.CurrentText, u.Mode.DisplayName())
		return
	}
	if r.text == "" {
		e.surface.Review(u.CurrentText, u.Mode.DisplayName())
		return
	}
	e.applyText(u, r.text)
}

// applyText injects text as the tentative result of the current
// utterance, replacing any earlier tentative injection.
func (e *engine) applyText(u *Utterance, text string) bool {
	u.CurrentText = text

	var ok bool
	if e.injector.Tentative() {
		ok = e.injector.ReplaceSelected(text)
	} else {
		ok = e.injector.InjectSelected(text)
	}
	if !ok {
		e.failToIdle("injection failed", nil)
		return false
	}

	log.Injection(u.ID, e.injector.State().CharCount, true)
	e.surface.Review(text, u.Mode.DisplayName())
	tray.SetState(tray.StateReviewing)
	e.setState(StateReviewing, "injected")
	return true
}

// resolveReview accepts or cancels the tentative injection and returns
// to idle. An in-flight rewrite for this utterance is abandoned.
func (e *engine) resolveReview(accept bool, reason string) {
	u := e.current
	e.pendingGen = 0

	if accept {
		st := e.injector.State()
		e.injector.Accept()
		if u != nil {
			log.Injection(u.ID, st.CharCount, false)
		}
	} else {
		e.injector.Cancel()
	}

	e.current = nil
	e.surface.Resolved()
	tray.SetState(tray.StateIdle)
	e.setState(StateIdle, reason)
}

func (e *engine) failToIdle(what string, err error) {
	if err != nil {
		log.Errorf("%s: %v", what, err)
		e.surface.ErrorLine(fmt.Sprintf("%s: %v", what, err))
		tray.SetError(what)
	} else {
		log.Error(what)
		e.surface.ErrorLine(what)
	}
	notify.Notify("dictate", what)
	beep.Play(beep.Error)

	if e.injector.Tentative() {
		e.injector.Cancel()
	}
	e.current = nil
	e.pendingGen = 0
	e.surface.Resolved()
	tray.SetState(tray.StateIdle)
	e.setState(StateIdle, what)
}

func (e *engine) onUIEvent(ev uiEvent) {
	switch ev.kind {
	case uiCycleMode:
		if ev.delta < 0 {
			e.changeMode(mode.Prev(e.modes, e.modes[e.modeIdx]))
		} else {
			e.changeMode(mode.Next(e.modes, e.modes[e.modeIdx]))
		}
	case uiSelectMode:
		if ev.modeIdx >= 0 && ev.modeIdx < len(e.modes) {
			e.changeMode(e.modes[ev.modeIdx])
		}
	case uiAccept:
		if e.state == StateReviewing {
			e.resolveReview(true, "accepted")
		}
	case uiCancel:
		if e.state == StateReviewing {
			e.resolveReview(false, "cancelled")
		}
	case uiSetLanguage:
		e.changeLanguage(ev.language)
	case uiSetEnabled:
		e.setEnabled(ev.enabled)
	}
}

func (e *engine) changeMode(m mode.Mode) {
	if m.Equal(e.modes[e.modeIdx]) {
		return
	}
	for i, c := range e.modes {
		if c.Equal(m) {
			e.modeIdx = i
			break
		}
	}
	e.surface.ModeLine(e.modeLineText())
	tray.SetMode(e.modeIdx)

	switch e.state {
	case StateTranscribing:
		// Applies to the utterance in flight.
		e.current.Mode = m
	case StateReviewing:
		u := e.current
		u.Mode = m
		if m.PassThrough() {
			// Back to the raw transcription, no model call.
			e.pendingGen = 0
			u.CurrentText = u.OriginalText
			e.injector.ReplaceSelected(u.OriginalText)
			log.Injection(u.ID, e.injector.State().CharCount, true)
			e.surface.Review(u.OriginalText, m.DisplayName())
		} else {
			e.submitRewrite(u)
		}
	}
}

func (e *engine) changeLanguage(lang string) {
	e.targetLanguage = lang
	e.surface.ModeLine(e.modeLineText())

	if e.state == StateReviewing && e.current != nil {
		e.current.TargetLanguage = lang
		// Only Translate output depends on the target language.
		if e.current.Mode.Kind == mode.Translate {
			e.submitRewrite(e.current)
		}
	}
}

func (e *engine) setEnabled(on bool) {
	e.enabled = on
	if !on && e.state == StateRecording {
		e.recorder.Cancel()
		e.stopTicker()
		e.surface.RecordingStop()
		e.surface.Resolved()
		tray.SetState(tray.StateIdle)
		e.setState(StateIdle, "disabled")
	}
	if on {
		e.surface.StatusLine("dictation enabled")
	} else {
		e.surface.StatusLine("dictation disabled")
	}
}

func (e *engine) onTick() {
	if e.state != StateRecording || e.vad == nil {
		return
	}
	switch e.mon.Tick(e.vad.HasSpeechTick()) {
	case SilenceWarn:
		log.Warn("no_voice_warning")
		e.surface.NoVoiceWarning()
		beep.Play(beep.Error)
	case SilenceWarnClear:
		e.surface.VoiceCleared()
	case SilenceRepeat:
		e.surface.NoVoiceWarning()
		beep.Play(beep.Error)
	}
}

// Utterances reports how many utterances completed transcription.
func (e *engine) Utterances() int {
	return e.utterances
}
