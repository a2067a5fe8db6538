package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitResult(t *testing.T, q *workQueue) jobResult {
	t.Helper()
	select {
	case r := <-q.Results():
		return r
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for job result")
		return jobResult{}
	}
}

func TestQueueDeliversResult(t *testing.T) {
	q := newWorkQueue()
	gen := q.submit(jobTranscribe, func(context.Context) (string, error) {
		return "hello", nil
	})

	r := waitResult(t, q)
	if r.generation != gen {
		t.Errorf("generation = %d, want %d", r.generation, gen)
	}
	if r.kind != jobTranscribe {
		t.Errorf("kind = %s", r.kind)
	}
	if r.text != "hello" || r.err != nil {
		t.Errorf("result = %q, %v", r.text, r.err)
	}
}

func TestQueueGenerationsIncrease(t *testing.T) {
	q := newWorkQueue()
	g1 := q.submit(jobTranscribe, func(context.Context) (string, error) { return "", nil })
	g2 := q.submit(jobRewrite, func(context.Context) (string, error) { return "", nil })
	if g2 <= g1 {
		t.Fatalf("generations not increasing: %d then %d", g1, g2)
	}
	waitResult(t, q)
	waitResult(t, q)
}

func TestQueueDeliversError(t *testing.T) {
	q := newWorkQueue()
	wantErr := errors.New("boom")
	q.submit(jobRewrite, func(context.Context) (string, error) {
		return "", wantErr
	})

	r := waitResult(t, q)
	if !errors.Is(r.err, wantErr) {
		t.Errorf("err = %v", r.err)
	}
}

func TestQueueSlowJobDoesNotBlockLater(t *testing.T) {
	q := newWorkQueue()
	release := make(chan struct{})
	q.submit(jobTranscribe, func(context.Context) (string, error) {
		<-release
		return "slow", nil
	})
	q.submit(jobTranscribe, func(context.Context) (string, error) {
		return "fast", nil
	})

	r := waitResult(t, q)
	if r.text != "fast" {
		t.Fatalf("first result = %q, want fast", r.text)
	}
	close(release)
	if r := waitResult(t, q); r.text != "slow" {
		t.Fatalf("second result = %q, want slow", r.text)
	}
}
