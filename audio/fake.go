package audio

import (
	"encoding/binary"
	"sync"
)

// FakeContext produces FakeCapture devices for tests. Tests push samples
// with Feed instead of waiting on a real capture thread.
type FakeContext struct {
	Capture *FakeCapture
}

func NewFakeContext() *FakeContext {
	return &FakeContext{Capture: &FakeCapture{}}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return f.Capture, nil
}

func (f *FakeContext) Close() {}

type FakeCapture struct {
	mu       sync.Mutex
	cb       DataCallback
	started  bool
	StartErr error // returned by Start to simulate an unavailable device
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.started = true
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// Feed delivers samples to the registered callback, the way a capture
// thread would. It is a no-op when no callback is set.
func (f *FakeCapture) Feed(samples []int16) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb == nil {
		return
	}
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	cb(data, uint32(len(samples)))
}
