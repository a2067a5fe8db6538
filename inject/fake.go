package inject

import (
	"errors"
	"fmt"
	"sync"
)

var errFakeKeystroke = errors.New("keystroke failed")

type FakeClipboard struct {
	mu      sync.Mutex
	content string
	writes  []string
}

func NewFakeClipboard() *FakeClipboard { return &FakeClipboard{} }

func (f *FakeClipboard) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content, nil
}

func (f *FakeClipboard) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = text
	f.writes = append(f.writes, text)
	return nil
}

func (f *FakeClipboard) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func (f *FakeClipboard) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

// FakeKeystroker records the keystroke operations sent to it. Ops are
// recorded as "paste", "selectback:N", "right" and "delete".
type FakeKeystroker struct {
	mu   sync.Mutex
	ops  []string
	Fail bool
}

func NewFakeKeystroker() *FakeKeystroker { return &FakeKeystroker{} }

func (f *FakeKeystroker) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return errFakeKeystroke
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *FakeKeystroker) Paste() error { return f.record("paste") }

func (f *FakeKeystroker) SelectBack(chars int) error {
	return f.record(fmt.Sprintf("selectback:%d", chars))
}

func (f *FakeKeystroker) StepRight() error       { return f.record("right") }
func (f *FakeKeystroker) DeleteSelection() error { return f.record("delete") }

func (f *FakeKeystroker) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}
