// Package worker applies match commands on shard goroutines. Every command
// for a match lands on the same shard, so a match sees its commands one at
// a time and in arrival order.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Applier runs a command against its match engine.
type Applier interface {
	Apply(ctx context.Context, cmd queue.Command) (model.Snapshot, error)
}

// Recorder persists an applied command and the snapshot it produced.
type Recorder interface {
	Record(ctx context.Context, cmd queue.Command, snap model.Snapshot) error
}

// Worker drains one shard queue.
type Worker interface {
	// Run applies commands until the queue closes. Once ctx is canceled or
	// Shutdown is called, the queue is closed and every command left in it
	// is answered with queue.ErrStopped.
	Run(ctx context.Context)

	// Shutdown stops the worker once the current command is done.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for one shard.
type InMemoryWorker struct {
	queue    queue.Queue
	applier  Applier
	recorder Recorder
	name     string

	processed atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q queue.Queue, applier Applier, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		applier:  applier,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// The dequeue side outlives ctx so leftovers can still be answered.
	commands := w.queue.Dequeue(context.WithoutCancel(ctx))
	for {
		select {
		case <-ctx.Done():
			w.reject(ctx, commands)
			return
		case <-w.shutdown:
			w.reject(ctx, commands)
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			if w.stopping(ctx) {
				cmd.Respond(model.Snapshot{}, queue.ErrStopped)
				w.reject(ctx, commands)
				return
			}
			w.process(ctx, cmd)
		}
	}
}

func (w *InMemoryWorker) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-w.shutdown:
		return true
	default:
		return false
	}
}

// reject closes the queue and answers every command still in it with
// queue.ErrStopped, so no caller waits on a worker that is gone.
func (w *InMemoryWorker) reject(ctx context.Context, commands <-chan queue.Command) {
	if err := w.queue.Close(); err != nil {
		w.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	n := 0
	for cmd := range commands {
		cmd.Respond(model.Snapshot{}, queue.ErrStopped)
		n++
	}
	if n > 0 {
		metrics.RecordErrorByComponent(w.name, "stopped")
		w.logger.Warn(ctx, "rejected queued commands on stop", logger.Int("count", n))
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of commands this worker handled.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

// process applies one command, persists the result and answers the caller.
// The command is counted before the caller is answered.
func (w *InMemoryWorker) process(ctx context.Context, cmd queue.Command) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	start := time.Now()
	snap, err := w.apply(ctx, cmd)
	w.processed.Add(1)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	cmd.Respond(snap, err)
}

// apply runs the command and records it. A persistence failure is logged
// but does not fail the command: the in-memory match is authoritative.
func (w *InMemoryWorker) apply(ctx context.Context, cmd queue.Command) (model.Snapshot, error) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	snap, err := w.applier.Apply(ctx, cmd)
	latency := float64(time.Since(cmd.EnqueuedAt).Microseconds()) / 1000
	if err != nil {
		metrics.RecordCommand(string(cmd.Kind), "rejected", latency)
		if kind := scoring.KindOf(err); kind != "" {
			metrics.RecordEngineError(string(kind))
		} else {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "apply_error")
		}
		w.logger.Debug(ctx, "command rejected",
			logger.String("match_id", cmd.MatchID),
			logger.String("command", string(cmd.Kind)),
			logger.Error(err))
		return model.Snapshot{}, err
	}
	metrics.RecordCommand(string(cmd.Kind), "applied", latency)

	if w.recorder != nil {
		if rerr := w.recorder.Record(ctx, cmd, snap); rerr != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "record_error")
			w.logger.Error(ctx, "failed to persist command",
				logger.String("match_id", cmd.MatchID),
				logger.String("command", string(cmd.Kind)),
				logger.Uint64("version", snap.Version),
				logger.Error(rerr))
		}
	}
	return snap, nil
}

// Pool owns one worker and one queue per shard.
type Pool struct {
	workers []*InMemoryWorker
	queues  []*queue.InMemoryQueue

	shutdown chan struct{}
	stopped  atomic.Bool

	logger logger.Logger
}

// NewPool creates shardCount workers, each draining its own queue of
// queueSize commands.
func NewPool(shardCount, queueSize int, applier Applier, recorder Recorder, opts ...Option) *Pool {
	if shardCount < 1 {
		shardCount = 1
	}
	p := &Pool{
		workers:  make([]*InMemoryWorker, shardCount),
		queues:   make([]*queue.InMemoryQueue, shardCount),
		shutdown: make(chan struct{}),
		logger:   poolLogger(opts),
	}

	for i := 0; i < shardCount; i++ {
		name := "shard-" + strconv.Itoa(i)
		wopts := append([]Option{}, opts...)
		wopts = append(wopts, WithName(name))
		p.queues[i] = queue.NewInMemoryQueue(queue.WithCapacity(queueSize), queue.WithName(name))
		p.workers[i] = NewInMemoryWorker(p.queues[i], applier, recorder, wopts...)
	}

	metrics.UpdateWorkerCount(shardCount)
	metrics.UpdateQueueCapacity(shardCount * p.queues[0].Cap())
	metrics.UpdateQueueSize(0)
	return p
}

// poolLogger resolves the logger the worker options carry.
func poolLogger(opts []Option) logger.Logger {
	w := &InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w.logger.Named("worker-pool")
}

// Shard returns the shard index a match is pinned to.
func (p *Pool) Shard(matchID string) int {
	return int(xxhash.Sum64String(matchID) % uint64(len(p.queues)))
}

// Submit routes cmd to its match's shard without blocking.
func (p *Pool) Submit(ctx context.Context, cmd queue.Command) error { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	if p.stopped.Load() {
		return queue.ErrStopped
	}
	q := p.queues[p.Shard(cmd.MatchID)]
	if !q.Enqueue(ctx, cmd) {
		if q.IsClosed() {
			return queue.ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return queue.ErrFull
	}
	return nil
}

// Do submits cmd and waits for its result. Cancelling ctx stops the wait;
// a command already queued is still applied.
func (p *Pool) Do(ctx context.Context, cmd queue.Command) (model.Snapshot, error) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	if err := p.Submit(ctx, cmd); err != nil {
		return model.Snapshot{}, err
	}
	select {
	case res := <-cmd.Reply:
		return res.Snapshot, res.Err
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	}
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// Len returns the number of queued commands across all shards.
func (p *Pool) Len(ctx context.Context) int {
	n := 0
	for _, q := range p.queues {
		n += q.Len(ctx)
	}
	return n
}

// Size returns the number of shards.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of commands handled by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics(ctx)
		}
	}
}

func (p *Pool) updateMetrics(ctx context.Context) {
	size := p.Len(ctx)
	capacity := len(p.queues) * p.queues[0].Cap()
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(capacity))
}

// Shutdown closes every shard queue, lets the workers apply what was
// already accepted and waits for them. Start the pool with a context that
// outlives the caller's signal handling, or canceling it turns the drain
// into rejection.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	for _, q := range p.queues {
		if err := q.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
