package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"dictate/encoder"
)

// MinSamples is the shortest utterance worth transcribing. Anything below
// this is an accidental tap on the trigger key.
const MinSamples = 1600 // 100ms at 16kHz

// RecorderHooks are invoked from the audio callback thread while a
// recording is active. Consumers must hand off to their own goroutine.
type RecorderHooks struct {
	OnAmplitude func(float64) // RMS level, 0..1
	OnDuration  func(float64) // seconds recorded so far
	OnData      func([]byte)  // raw PCM16LE chunk as captured
}

// Recorder accumulates PCM16 mono samples from a capture device between
// Start and Stop.
type Recorder struct {
	capture CaptureDevice
	hooks   RecorderHooks

	mu        sync.Mutex
	recording bool
	samples   []int16
}

func NewRecorder(capture CaptureDevice, hooks RecorderHooks) *Recorder {
	return &Recorder{capture: capture, hooks: hooks}
}

// Start opens the capture stream and begins accumulating samples.
// Fails if a recording is already in progress or the device refuses to
// start (unplugged, claimed by another process).
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return errors.New("recording already in progress")
	}
	r.recording = true
	r.samples = r.samples[:0]
	r.mu.Unlock()

	r.capture.SetCallback(r.onData)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("starting capture stream: %w", err)
	}
	return nil
}

// Stop ends the recording and returns everything captured since Start.
// Returns nil if no recording was in progress.
func (r *Recorder) Stop() []int16 {
	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return nil
	}
	r.recording = false
	out := make([]int16, len(r.samples))
	copy(out, r.samples)
	return out
}

// Cancel ends the recording and discards the samples.
func (r *Recorder) Cancel() {
	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	r.recording = false
	r.samples = r.samples[:0]
	r.mu.Unlock()
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) onData(data []byte, frameCount uint32) {
	n := int(frameCount)
	if n*2 > len(data) {
		n = len(data) / 2
	}

	var sumSquares float64
	chunk := make([]int16, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		chunk[i] = s
		f := float64(s) / 32768.0
		sumSquares += f * f
	}

	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	r.samples = append(r.samples, chunk...)
	total := len(r.samples)
	r.mu.Unlock()

	if r.hooks.OnData != nil && n > 0 {
		r.hooks.OnData(data[:n*2])
	}
	if r.hooks.OnAmplitude != nil && n > 0 {
		rms := math.Sqrt(sumSquares / float64(n))
		r.hooks.OnAmplitude(math.Min(1.0, rms*10))
	}
	if r.hooks.OnDuration != nil {
		r.hooks.OnDuration(float64(total) / float64(encoder.SampleRate))
	}
}
