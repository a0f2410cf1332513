// Package scheduler implements the job registry and its 100ms polling
// loop (C4) and owns the result channel (C5) that the batch sender drains.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/probe"
)

// tickInterval is the scheduler's polling cadence — fixed, not configurable,
// per spec: scheduler jitter is bounded by exactly one tick.
const tickInterval = 100 * time.Millisecond

// resultChannelCapacity bounds the result channel; once it is full, each
// dispatched probe goroutine blocks on its send until the sender drains it
// (the tick loop itself never waits on the channel). Sized generously relative to the teacher's queueSize=16
// agent-task-queue convention since this channel fans in from every job,
// not one per connection.
const resultChannelCapacity = 256

type jobEntry struct {
	descriptor job.Descriptor
	state      job.State
	executor   probe.Executor
}

// Registry holds the set of jobs keyed by pretty name and drives dispatch.
// It owns the producer side of the result channel exclusively; nothing else
// writes to it.
type Registry struct {
	mu     sync.Mutex
	jobs   map[string]*jobEntry
	clock  job.Clock
	logger *zap.Logger
	results chan job.Result
}

// New builds an empty Registry. clock lets tests inject a fake clock;
// production callers pass job.RealClock{}.
func New(clock job.Clock, logger *zap.Logger) *Registry {
	return &Registry{
		jobs:    make(map[string]*jobEntry),
		clock:   clock,
		logger:  logger.Named("scheduler"),
		results: make(chan job.Result, resultChannelCapacity),
	}
}

// Results returns the read side of the result channel.
func (r *Registry) Results() <-chan job.Result {
	return r.results
}

// Add validates d, builds its executor, and inserts it keyed by
// PrettyName. A duplicate PrettyName overwrites the earlier entry — this is
// intentional per spec, logged at Warn rather than rejected.
func (r *Registry) Add(d job.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	exec, err := probe.New(d)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[d.PrettyName]; exists {
		r.logger.Warn("duplicate pretty_name, overwriting previous job", zap.String("pretty_name", d.PrettyName))
	}
	r.jobs[d.PrettyName] = &jobEntry{
		descriptor: d,
		state:      job.NewState(r.clock.Now()),
		executor:   exec,
	}
	return nil
}

// Run blocks, ticking every 100ms until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick advances due jobs' next_run and fires their probes concurrently.
// The mutex is held only for the due-scan, not while probes run.
func (r *Registry) tick(ctx context.Context) {
	now := r.clock.Now()

	r.mu.Lock()
	var due []*jobEntry
	for _, e := range r.jobs {
		if e.state.Due(now) {
			e.state.Advance(now, e.descriptor.Interval)
			due = append(due, e)
		}
	}
	r.mu.Unlock()

	for _, e := range due {
		go r.dispatch(ctx, e)
	}
}

func (r *Registry) dispatch(ctx context.Context, e *jobEntry) {
	res, err := e.executor.Execute(ctx)
	if err != nil {
		r.logger.Error("probe execution failed",
			zap.String("pretty_name", e.descriptor.PrettyName),
			zap.Error(err))
		return
	}
	select {
	case r.results <- res:
	case <-ctx.Done():
	}
}
