package api

import (
	"context"
	"sync"
)

// FakeService is a controllable Service for tests. If Gate is set, calls
// block until a value is sent on it (or the context is cancelled), which
// lets tests order results deliberately.
type FakeService struct {
	TranscribeText string
	TranscribeErr  error
	RewriteText    string
	RewriteErr     error
	Gate           chan struct{}

	mu             sync.Mutex
	transcribeCalls int
	rewriteCalls    int
	lastPrompt      string
	lastInput       string
}

func NewFakeService(transcribeText, rewriteText string) *FakeService {
	return &FakeService{TranscribeText: transcribeText, RewriteText: rewriteText}
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeService) Transcribe(ctx context.Context, _ []byte, _ string) (*TranscribeResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.transcribeCalls++
	f.mu.Unlock()
	if f.TranscribeErr != nil {
		return nil, f.TranscribeErr
	}
	return &TranscribeResult{Text: f.TranscribeText, Duration: 1, Metrics: &NetworkMetrics{}}, nil
}

func (f *FakeService) Rewrite(ctx context.Context, systemPrompt, text string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.rewriteCalls++
	f.lastPrompt = systemPrompt
	f.lastInput = text
	f.mu.Unlock()
	if f.RewriteErr != nil {
		return "", f.RewriteErr
	}
	return f.RewriteText, nil
}

func (f *FakeService) TranscribeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcribeCalls
}

func (f *FakeService) RewriteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rewriteCalls
}

func (f *FakeService) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt
}

func (f *FakeService) LastInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInput
}
