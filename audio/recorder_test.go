package audio

import (
	"errors"
	"math"
	"testing"
)

func newTestRecorder(t *testing.T, hooks RecorderHooks) (*Recorder, *FakeCapture) {
	t.Helper()
	ctx := NewFakeContext()
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	return NewRecorder(capture, hooks), ctx.Capture
}

func TestRecorderStartStop(t *testing.T) {
	rec, capture := newTestRecorder(t, RecorderHooks{})

	if rec.Recording() {
		t.Fatal("recording before Start")
	}
	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !rec.Recording() {
		t.Fatal("not recording after Start")
	}
	if !capture.Started() {
		t.Fatal("capture stream not started")
	}
	if err := rec.Start(); err == nil {
		t.Fatal("second Start should fail")
	}

	capture.Feed([]int16{100, -200, 300})
	capture.Feed([]int16{400, 500})

	samples := rec.Stop()
	if rec.Recording() {
		t.Fatal("still recording after Stop")
	}
	if capture.Started() {
		t.Fatal("capture stream still running after Stop")
	}
	want := []int16{100, -200, 300, 400, 500}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i, s := range samples {
		if s != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, s, want[i])
		}
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec, _ := newTestRecorder(t, RecorderHooks{})
	if got := rec.Stop(); got != nil {
		t.Fatalf("Stop without Start returned %d samples", len(got))
	}
}

func TestRecorderStartDeviceError(t *testing.T) {
	rec, capture := newTestRecorder(t, RecorderHooks{})
	capture.StartErr = errors.New("device busy")

	if err := rec.Start(); err == nil {
		t.Fatal("Start should fail when the device will not start")
	}
	if rec.Recording() {
		t.Fatal("recording after failed Start")
	}

	capture.StartErr = nil
	if err := rec.Start(); err != nil {
		t.Fatalf("Start after recovery: %v", err)
	}
	capture.Feed([]int16{7})
	if samples := rec.Stop(); len(samples) != 1 {
		t.Fatalf("got %d samples after recovery, want 1", len(samples))
	}
}

func TestRecorderCancelDiscards(t *testing.T) {
	rec, capture := newTestRecorder(t, RecorderHooks{})

	rec.Start()
	capture.Feed([]int16{1, 2, 3})
	rec.Cancel()

	if rec.Recording() {
		t.Fatal("still recording after Cancel")
	}
	if capture.Started() {
		t.Fatal("capture stream still running after Cancel")
	}

	rec.Start()
	samples := rec.Stop()
	if len(samples) != 0 {
		t.Fatalf("samples leaked across Cancel: %d", len(samples))
	}
}

func TestRecorderIgnoresFeedWhenStopped(t *testing.T) {
	rec, capture := newTestRecorder(t, RecorderHooks{})

	rec.Start()
	rec.Stop()
	capture.Feed([]int16{1, 2, 3})

	rec.Start()
	if samples := rec.Stop(); len(samples) != 0 {
		t.Fatalf("stale feed captured: %d samples", len(samples))
	}
}

func TestRecorderDataTap(t *testing.T) {
	var chunks int
	var tapped int
	rec, capture := newTestRecorder(t, RecorderHooks{OnData: func(data []byte) {
		chunks++
		tapped += len(data)
	}})

	rec.Start()
	capture.Feed(make([]int16, 320))
	capture.Feed(make([]int16, 320))
	rec.Stop()
	capture.Feed(make([]int16, 320)) // after stop, no tap

	if chunks != 2 {
		t.Fatalf("got %d chunks, want 2", chunks)
	}
	if tapped != 1280 {
		t.Fatalf("tapped %d bytes, want 1280", tapped)
	}
}

func TestRecorderAmplitude(t *testing.T) {
	var amps []float64
	rec, capture := newTestRecorder(t, RecorderHooks{OnAmplitude: func(a float64) { amps = append(amps, a) }})

	rec.Start()
	capture.Feed(make([]int16, 160)) // silence
	loud := make([]int16, 160)
	for i := range loud {
		loud[i] = math.MaxInt16
	}
	capture.Feed(loud)
	rec.Stop()

	if len(amps) != 2 {
		t.Fatalf("got %d amplitude callbacks, want 2", len(amps))
	}
	if amps[0] != 0 {
		t.Errorf("silence amplitude = %f, want 0", amps[0])
	}
	if amps[1] != 1.0 {
		t.Errorf("full-scale amplitude = %f, want clamped to 1.0", amps[1])
	}
}

func TestRecorderDuration(t *testing.T) {
	var durs []float64
	rec, capture := newTestRecorder(t, RecorderHooks{OnDuration: func(d float64) { durs = append(durs, d) }})

	rec.Start()
	capture.Feed(make([]int16, 16000))
	capture.Feed(make([]int16, 8000))
	rec.Stop()

	if len(durs) != 2 {
		t.Fatalf("got %d duration callbacks, want 2", len(durs))
	}
	if durs[0] != 1.0 {
		t.Errorf("first duration = %f, want 1.0", durs[0])
	}
	if durs[1] != 1.5 {
		t.Errorf("second duration = %f, want 1.5", durs[1])
	}
}
