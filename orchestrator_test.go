package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"dictate/api"
	"dictate/audio"
	"dictate/beep"
	"dictate/inject"
	"dictate/mode"
)

func TestMain(m *testing.M) {
	beep.Disable()
	os.Exit(m.Run())
}

type fakeSurface struct {
	mu     sync.Mutex
	events []string
}

func (s *fakeSurface) add(ev string) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *fakeSurface) RecordingStart() { s.add("recording_start") }
func (s *fakeSurface) RecordingStop() { s.add("recording_stop") }
func (s *fakeSurface) RecordingTick(float64) {}
func (s *fakeSurface) AudioLevel(float64) {}
func (s *fakeSurface) NoVoiceWarning() { s.add("no_voice") }
func (s *fakeSurface) VoiceCleared() { s.add("voice_cleared") }
func (s *fakeSurface) Processing(kind string) { s.add("processing:" + kind) }
func (s *fakeSurface) Review(text, m string) { s.add("review:" + m + ":" + text) }
func (s *fakeSurface) Resolved() { s.add("resolved") }
func (s *fakeSurface) ModeLine(string) {}
func (s *fakeSurface) StatusLine(text string) { s.add("status:" + text) }
func (s *fakeSurface) ErrorLine(text string) { s.add("error:" + text) }

func (s *fakeSurface) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func (s *fakeSurface) lastReview() string {
	for _, ev := range reverse(s.snapshot()) {
		if strings.HasPrefix(ev, "review:") {
			return ev
		}
	}
	return ""
}

func (s *fakeSurface) saw(prefix string) bool {
	for _, ev := range s.snapshot() {
		if strings.HasPrefix(ev, prefix) {
			return true
		}
	}
	return false
}

func reverse(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

type harness struct {
	t       *testing.T
	capture *audio.FakeCapture
	clip    *inject.FakeClipboard
	keys    *inject.FakeKeystroker
	surface *fakeSurface
	keydown chan struct{}
	keyup   chan struct{}
	eng     *engine
}

func newHarness(t *testing.T, service api.Service, initialMode int) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		capture: &audio.FakeCapture{},
		clip:    inject.NewFakeClipboard(),
		keys:    inject.NewFakeKeystroker(),
		surface: &fakeSurface{},
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
	inj := inject.New(h.clip, h.keys)
	inj.SetRestoreGrace(time.Millisecond)
	h.eng = newEngine(engineConfig{
		capture:        h.capture,
		injector:       inj,
		service:        service,
		surface:        h.surface,
		format:         "wav",
		provider:       "groq",
		modes:          mode.All(nil),
		initialMode:    initialMode,
		targetLanguage: "English",
		keydown:        h.keydown,
		keyup:          h.keyup,
	})
	h.eng.Start()
	t.Cleanup(h.eng.Stop)
	return h
}

func (h *harness) press() { h.keydown <- struct{}{} }
func (h *harness) release() { h.keyup <- struct{}{} }

func (h *harness) waitState(want AppState) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.eng.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	h.t.Fatalf("state = %v, want %v", h.eng.State(), want)
}

func (h *harness) waitFor(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	h.t.Fatalf("timed out waiting for %s", what)
}

// speak records one utterance longer than the minimum duration.
func (h *harness) speak() {
	h.t.Helper()
	h.press()
	h.waitState(StateRecording)
	samples := make([]int16, 20000)
	for i := range samples {
		samples[i] = 8000
	}
	h.capture.Feed(samples)
	h.release()
}

func lastOp(ops []string) string {
	if len(ops) == 0 {
		return ""
	}
	return ops[len(ops)-1]
}

func TestDictationHappyPath(t *testing.T) {
	svc := api.NewFakeService("hello world", "")
	h := newHarness(t, svc, 0)

	h.speak()
	h.waitState(StateReviewing)

	if got := h.surface.lastReview(); got != "review:Normal:hello world" {
		t.Errorf("review = %q", got)
	}
	ops := h.keys.Ops()
	if len(ops) < 2 || ops[len(ops)-2] != "paste" || lastOp(ops) != "selectback:11" {
		t.Errorf("ops = %v, want trailing paste, selectback:11", ops)
	}
	if svc.RewriteCalls() != 0 {
		t.Errorf("rewrite calls = %d, want 0 in Normal mode", svc.RewriteCalls())
	}

	h.eng.Accept()
	h.waitState(StateIdle)
	if got := lastOp(h.keys.Ops()); got != "right" {
		t.Errorf("last op after accept = %q, want right", got)
	}
}

func TestShortTapDiscarded(t *testing.T) {
	svc := api.NewFakeService("hello", "")
	h := newHarness(t, svc, 0)

	h.press()
	h.waitState(StateRecording)
	h.capture.Feed(make([]int16, 100))
	h.release()
	h.waitState(StateIdle)

	time.Sleep(20 * time.Millisecond)
	if svc.TranscribeCalls() != 0 {
		t.Errorf("transcribe calls = %d, want 0 for a tap", svc.TranscribeCalls())
	}
	if h.surface.saw("processing:") {
		t.Error("tap must not reach processing")
	}
}

func TestRecordingStartsCaptureStream(t *testing.T) {
	svc := api.NewFakeService("hello", "")
	h := newHarness(t, svc, 0)

	h.press()
	h.waitState(StateRecording)
	if !h.capture.Started() {
		t.Fatal("capture stream not running while recording")
	}

	h.capture.Feed(make([]int16, 20000))
	h.release()
	h.waitState(StateReviewing)
	if h.capture.Started() {
		t.Error("capture stream still running after recording stopped")
	}
}

func TestMicrophoneUnavailableStaysIdle(t *testing.T) {
	svc := api.NewFakeService("hello", "")
	h := newHarness(t, svc, 0)
	h.capture.StartErr = errors.New("device busy")

	h.press()
	h.waitFor("error line", func() bool { return h.surface.saw("error:microphone unavailable") })
	h.release()

	time.Sleep(20 * time.Millisecond)
	if h.eng.State() != StateIdle {
		t.Errorf("state = %v, want idle", h.eng.State())
	}
	if svc.TranscribeCalls() != 0 {
		t.Errorf("transcribe calls = %d, want 0", svc.TranscribeCalls())
	}
}

func TestRewriteModeReplacesSelection(t *testing.T) {
	svc := api.NewFakeService("hello world", "Hello, world.")
	h := newHarness(t, svc, 1) // Formal

	h.speak()
	h.waitFor("rewritten review", func() bool {
		return h.surface.lastReview() == "review:Formal:Hello, world."
	})

	if h.eng.State() != StateReviewing {
		t.Errorf("state = %v, want reviewing", h.eng.State())
	}
	if svc.RewriteCalls() != 1 {
		t.Errorf("rewrite calls = %d, want 1", svc.RewriteCalls())
	}
	if svc.LastInput() != "hello world" {
		t.Errorf("rewrite input = %q, want the raw transcription", svc.LastInput())
	}
}

func TestRewriteFailureKeepsInjectedText(t *testing.T) {
	svc := api.NewFakeService("hello world", "")
	svc.RewriteErr = errors.New("model overloaded")
	h := newHarness(t, svc, 1) // Formal

	h.speak()
	h.waitFor("error surfaced", func() bool { return h.surface.saw("error:") })

	if h.eng.State() != StateReviewing {
		t.Errorf("state = %v, want reviewing after rewrite failure", h.eng.State())
	}
	if got := h.surface.lastReview(); got != "review:Formal:hello world" {
		t.Errorf("review = %q, want the transcription kept", got)
	}
	if got := lastOp(h.keys.Ops()); got != "selectback:11" {
		t.Errorf("last op = %q, failed rewrite must not touch the injection", got)
	}
}

func TestModeCycleRefiresRewrite(t *testing.T) {
	svc := api.NewFakeService("hello world", "Hello, world.")
	h := newHarness(t, svc, 0) // Normal

	h.speak()
	h.waitState(StateReviewing)
	if svc.RewriteCalls() != 0 {
		t.Fatalf("rewrite calls = %d before cycling", svc.RewriteCalls())
	}

	h.eng.CycleMode(1) // Formal
	h.waitFor("rewritten review", func() bool {
		return h.surface.lastReview() == "review:Formal:Hello, world."
	})

	h.eng.CycleMode(-1) // back to Normal
	h.waitFor("original restored", func() bool {
		return h.surface.lastReview() == "review:Normal:hello world"
	})
	if svc.RewriteCalls() != 1 {
		t.Errorf("rewrite calls = %d, cycling to Normal must not call the model", svc.RewriteCalls())
	}
}

func TestReselectingActiveModeIsNoOp(t *testing.T) {
	svc := api.NewFakeService("hello world", "Hello, world.")
	h := newHarness(t, svc, 1) // Formal

	h.speak()
	h.waitFor("rewritten review", func() bool {
		return h.surface.lastReview() == "review:Formal:Hello, world."
	})
	if svc.RewriteCalls() != 1 {
		t.Fatalf("rewrite calls = %d before reselecting", svc.RewriteCalls())
	}

	h.eng.SelectMode(1) // already Formal
	time.Sleep(20 * time.Millisecond)
	if svc.RewriteCalls() != 1 {
		t.Errorf("rewrite calls = %d, reselecting the active mode must not call the model", svc.RewriteCalls())
	}
	if h.eng.State() != StateReviewing {
		t.Errorf("state = %v, want reviewing", h.eng.State())
	}
}

func TestStaleRewriteDropped(t *testing.T) {
	svc := api.NewFakeService("hello world", "Hello, world.")
	h := newHarness(t, svc, 0) // Normal

	h.speak()
	h.waitState(StateReviewing)

	// Gate the upcoming rewrite, then abandon it by cycling back to
	// Normal before it completes.
	svc.Gate = make(chan struct{})
	h.eng.CycleMode(1) // Formal, rewrite blocked on gate
	h.waitFor("rewrite pending", func() bool {
		return h.surface.saw("processing:rewriting")
	})
	h.eng.CycleMode(-1) // Normal again, synchronous
	h.waitFor("original restored", func() bool {
		return h.surface.lastReview() == "review:Normal:hello world"
	})

	svc.Gate <- struct{}{} // release the abandoned rewrite
	time.Sleep(30 * time.Millisecond)

	if got := h.surface.lastReview(); got != "review:Normal:hello world" {
		t.Errorf("review = %q, stale rewrite result must be dropped", got)
	}
	if h.eng.State() != StateReviewing {
		t.Errorf("state = %v, want reviewing", h.eng.State())
	}
}

func TestNewRecordingSupersedesTranscription(t *testing.T) {
	svc := api.NewFakeService("first take", "")
	svc.Gate = make(chan struct{})
	h := newHarness(t, svc, 0)

	h.speak()
	h.waitState(StateTranscribing)

	// Pressing again abandons the transcription in flight.
	h.press()
	h.waitState(StateRecording)
	svc.Gate <- struct{}{} // stale result arrives mid-recording
	time.Sleep(30 * time.Millisecond)

	if h.eng.State() != StateRecording {
		t.Errorf("state = %v, stale transcription must not interrupt recording", h.eng.State())
	}
	if len(h.keys.Ops()) != 0 {
		t.Errorf("ops = %v, stale transcription must not inject", h.keys.Ops())
	}

	samples := make([]int16, 20000)
	for i := range samples {
		samples[i] = 8000
	}
	h.capture.Feed(samples)
	h.release()
	h.waitState(StateTranscribing)
	svc.Gate <- struct{}{}
	h.waitState(StateReviewing)
}

// scriptedService blocks each Rewrite call until the test releases it,
// so completion order can be forced.
type scriptedService struct {
	transcript string

	mu      sync.Mutex
	pending []scriptedRewrite
}

type scriptedRewrite struct {
	prompt  string
	release chan string
}

func (s *scriptedService) Transcribe(_ context.Context, _ []byte, _ string) (*api.TranscribeResult, error) {
	return &api.TranscribeResult{Text: s.transcript}, nil
}

func (s *scriptedService) Rewrite(ctx context.Context, prompt, _ string) (string, error) {
	ch := make(chan string, 1)
	s.mu.Lock()
	s.pending = append(s.pending, scriptedRewrite{prompt: prompt, release: ch})
	s.mu.Unlock()
	select {
	case out := <-ch:
		return out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *scriptedService) waitPending(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		got := len(s.pending)
		s.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d pending rewrites", n)
}

func (s *scriptedService) releaseRewrite(t *testing.T, i int, text string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.pending) {
		t.Fatalf("no pending rewrite %d", i)
	}
	s.pending[i].release <- text
	return s.pending[i].prompt
}

func TestOutOfOrderRewriteDiscarded(t *testing.T) {
	svc := &scriptedService{transcript: "hello world"}
	h := newHarness(t, svc, 1) // Formal

	h.speak()
	h.waitState(StateReviewing) // original injected, Formal rewrite pending
	svc.waitPending(t, 1)

	h.eng.SetTargetLanguage("French")
	h.eng.CycleMode(1) // Translate, supersedes the Formal rewrite
	svc.waitPending(t, 2)

	// Newer generation completes first.
	prompt := svc.releaseRewrite(t, 1, "Bonjour le monde")
	if !strings.Contains(prompt, "French") {
		t.Errorf("translate prompt = %q, want the new target language", prompt)
	}
	h.waitFor("translated review", func() bool {
		return h.surface.lastReview() == "review:Translate:Bonjour le monde"
	})

	// The superseded Formal result lands late and must be discarded.
	svc.releaseRewrite(t, 0, "Bonjour.")
	time.Sleep(30 * time.Millisecond)
	if got := h.surface.lastReview(); got != "review:Translate:Bonjour le monde" {
		t.Errorf("review = %q, stale generation must not win", got)
	}
	if h.eng.State() != StateReviewing {
		t.Errorf("state = %v, want reviewing", h.eng.State())
	}
}

func TestCancelDeletesInjection(t *testing.T) {
	h := newHarness(t, api.NewFakeService("hello world", ""), 0)

	h.speak()
	h.waitState(StateReviewing)
	h.eng.Cancel()
	h.waitState(StateIdle)

	if got := lastOp(h.keys.Ops()); got != "delete" {
		t.Errorf("last op = %q, want delete", got)
	}
}

func TestTriggerWhileReviewingCommits(t *testing.T) {
	h := newHarness(t, api.NewFakeService("hello world", ""), 0)

	h.speak()
	h.waitState(StateReviewing)

	// Press commits; the matching release must not start or stop anything.
	h.press()
	h.waitState(StateIdle)
	if got := lastOp(h.keys.Ops()); got != "right" {
		t.Errorf("last op = %q, want right", got)
	}
	h.release()
	time.Sleep(20 * time.Millisecond)
	if h.eng.State() != StateIdle {
		t.Errorf("state = %v after swallowed release, want idle", h.eng.State())
	}

	// The key works normally again afterwards.
	h.press()
	h.waitState(StateRecording)
	h.release()
	h.waitState(StateIdle) // too short, discarded
}

func TestLanguageChangeRefiresOnlyTranslate(t *testing.T) {
	svc := api.NewFakeService("hello world", "Bonjour le monde.")
	h := newHarness(t, svc, 1) // Formal

	h.speak()
	h.waitFor("first rewrite", func() bool { return svc.RewriteCalls() == 1 })
	h.waitState(StateReviewing)

	h.eng.SetTargetLanguage("French")
	time.Sleep(30 * time.Millisecond)
	if svc.RewriteCalls() != 1 {
		t.Fatalf("rewrite calls = %d, language change in Formal must not refire", svc.RewriteCalls())
	}

	h.eng.CycleMode(1) // Translate
	h.waitFor("translate rewrite", func() bool { return svc.RewriteCalls() == 2 })

	h.eng.SetTargetLanguage("German")
	h.waitFor("refired for new language", func() bool { return svc.RewriteCalls() == 3 })
	if !strings.Contains(svc.LastPrompt(), "German") {
		t.Errorf("prompt = %q, want the new target language", svc.LastPrompt())
	}
}

func TestDisabledIgnoresTrigger(t *testing.T) {
	h := newHarness(t, api.NewFakeService("hello", ""), 0)

	h.eng.SetEnabled(false)
	h.waitFor("disabled", func() bool { return h.surface.saw("status:dictation disabled") })

	h.press()
	time.Sleep(20 * time.Millisecond)
	if h.eng.State() != StateIdle {
		t.Fatalf("state = %v, disabled engine must ignore the trigger", h.eng.State())
	}
	h.release()

	h.eng.SetEnabled(true)
	h.waitFor("enabled", func() bool { return h.surface.saw("status:dictation enabled") })
	h.press()
	h.waitState(StateRecording)
}

func TestTranscriptionErrorReturnsIdle(t *testing.T) {
	svc := api.NewFakeService("", "")
	svc.TranscribeErr = errors.New("connection refused")
	h := newHarness(t, svc, 0)

	h.speak()
	h.waitState(StateIdle)

	if !h.surface.saw("error:") {
		t.Error("transcription failure must reach the surface")
	}
	if len(h.keys.Ops()) != 0 {
		t.Errorf("ops = %v, nothing must be injected on failure", h.keys.Ops())
	}
}

func TestEmptyTranscriptionReturnsIdle(t *testing.T) {
	h := newHarness(t, api.NewFakeService("", ""), 0)

	h.speak()
	h.waitState(StateIdle)

	if len(h.keys.Ops()) != 0 {
		t.Errorf("ops = %v, empty transcription must not inject", h.keys.Ops())
	}
	if !h.surface.saw("status:(no speech detected)") {
		t.Error("empty transcription must be reported")
	}
}
