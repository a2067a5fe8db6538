package main

import (
	"context"
	"sync/atomic"

	"dictate/log"
)

type jobKind string

const (
	jobTranscribe jobKind = "transcribe"
	jobRewrite    jobKind = "rewrite"
)

type jobResult struct {
	generation uint64
	kind       jobKind
	text       string
	err        error
}

// workQueue runs jobs on their own goroutines and tags every result
// with a monotonically increasing generation. Jobs are never cancelled;
// the consumer drops results whose generation it no longer waits for.
type workQueue struct {
	generation atomic.Uint64
	results    chan jobResult
}

func newWorkQueue() *workQueue {
	return &workQueue{results: make(chan jobResult, 8)}
}

func (q *workQueue) Results() <-chan jobResult { return q.results }

func (q *workQueue) submit(kind jobKind, fn func(context.Context) (string, error)) uint64 {
	gen := q.generation.Add(1)
	log.Job("submit", string(kind), gen)
	go func() {
		text, err := fn(context.Background())
		q.results <- jobResult{generation: gen, kind: kind, text: text, err: err}
	}()
	return gen
}
