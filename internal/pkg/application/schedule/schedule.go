package schedule

import (
	"context"
	"sync"
	"time"
)

type Task func(ctx context.Context)

// Repeating runs a task right away and then once per interval until stopped.
// Runs never overlap.
type Repeating struct {
	interval time.Duration
	task     Task

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func Every(interval time.Duration, task Task) *Repeating {
	return &Repeating{
		interval: interval,
		task:     task,
	}
}

// Start returns false if the task is already running.
func (r *Repeating) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.cancel = cancel
	r.done = done

	go r.run(ctx, done)

	return true
}

// Stop cancels the task and waits for a run in progress to finish. Stopping a
// stopped task does nothing.
func (r *Repeating) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (r *Repeating) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Repeating) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.task(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			r.task(ctx)
		}
	}
}
