package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/scopogger/healthypdf/internal/types"
)

// ErrQueueFull is returned by Submit when the pool's queue is at capacity.
var ErrQueueFull = errors.New("render queue full")

// ErrRender wraps per-page rasterization failures reported in Results.
var ErrRender = errors.New("render failed")

// Renderer produces a raster for one page at the given transform. The
// fitz-backed document handle implements this; tests substitute fakes.
// Implementations must be safe for concurrent calls: the pool invokes
// Rasterize from multiple worker goroutines.
type Renderer interface {
	Rasterize(ctx context.Context, page types.PageID, zoom float64, rotation int) (*image.RGBA, error)
}

// Result is the asynchronous outcome of one task, delivered on the pool's
// results channel and applied on the control goroutine. Exactly one of
// Image and Err is set; a cancelled task that was caught before
// rasterizing produces neither and is not delivered at all.
type Result struct {
	Task  *Task
	Image *image.RGBA
	Err   error
}

// Pool executes render tasks on a small fixed set of worker goroutines.
// All workers pull from one shared queue; results go to a single results
// channel drained by the control goroutine. Rendering libraries are not
// free-threaded, so the default of two workers is also the practical
// ceiling.
type Pool struct {
	name        string
	logger      *slog.Logger
	renderer    Renderer
	workerCount int
	queueSize   int

	queue   chan *Task
	results chan Result

	inFlight  atomic.Int32
	completed atomic.Uint64
	failed    atomic.Uint64
	skipped   atomic.Uint64
}

// DefaultWorkers is the default worker count.
const DefaultWorkers = 2

// PoolConfig configures a new render pool.
type PoolConfig struct {
	Renderer Renderer
	Logger   *slog.Logger

	// Workers is the number of worker goroutines (default DefaultWorkers).
	Workers int

	// QueueSize bounds pending tasks (default 32).
	QueueSize int
}

// NewPool creates a render pool. The renderer is required.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("must provide a Renderer")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 32
	}

	return &Pool{
		name:        "render",
		logger:      logger.With("pool", "render", "workers", workers),
		renderer:    cfg.Renderer,
		workerCount: workers,
		queueSize:   queueSize,
		queue:       make(chan *Task, queueSize),
		results:     make(chan Result, queueSize),
	}, nil
}

// Start runs the worker goroutines and blocks until ctx is cancelled.
// Run in a goroutine.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Debug("render pool starting")
	for i := 0; i < p.workerCount; i++ {
		go p.worker(ctx, i)
	}
	<-ctx.Done()
	p.logger.Debug("render pool stopping")
}

// Submit adds a task to the queue. Returns ErrQueueFull if the queue is at
// capacity; the caller treats that as a dropped dispatch and re-triggers on
// the next viewport change.
func (p *Pool) Submit(t *Task) error {
	select {
	case p.queue <- t:
		return nil
	default:
		p.logger.Warn("render queue full, dropping task", "task", t.ID, "page", t.Page)
		return fmt.Errorf("%w: page %d", ErrQueueFull, t.Page)
	}
}

// Results returns the channel on which completed tasks are delivered.
// The control goroutine drains it and hands each result to the scheduler.
func (p *Pool) Results() <-chan Result {
	return p.results
}

func (p *Pool) worker(ctx context.Context, id int) {
	logger := p.logger.With("worker_id", id)
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.queue:
			p.process(ctx, logger, task)
		}
	}
}

// process runs one task. Cancellation is checked before and after the
// rasterize call; a task cancelled mid-render still delivers, and the
// scheduler's generation check discards it.
func (p *Pool) process(ctx context.Context, logger *slog.Logger, task *Task) {
	if task.Cancelled() {
		p.skipped.Add(1)
		logger.Debug("skipping cancelled task", "task", task.ID, "page", task.Page)
		return
	}

	p.inFlight.Add(1)
	img, err := p.renderer.Rasterize(ctx, task.Page, task.Zoom, task.Rotation)
	p.inFlight.Add(-1)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.failed.Add(1)
		logger.Warn("page render failed", "task", task.ID, "page", task.Page, "error", err)
		p.deliver(ctx, Result{Task: task, Err: fmt.Errorf("%w: %v", ErrRender, err)})
		return
	}

	if task.Cancelled() {
		p.skipped.Add(1)
		logger.Debug("dropping cancelled render", "task", task.ID, "page", task.Page)
		return
	}

	p.completed.Add(1)
	p.deliver(ctx, Result{Task: task, Image: img})
}

func (p *Pool) deliver(ctx context.Context, res Result) {
	select {
	case p.results <- res:
	case <-ctx.Done():
	}
}

// PoolStatus describes current pool load and lifetime counters.
type PoolStatus struct {
	Workers    int
	InFlight   int
	QueueDepth int
	Completed  uint64
	Failed     uint64
	Skipped    uint64
}

// Status returns current pool status.
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Workers:    p.workerCount,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
		Completed:  p.completed.Load(),
		Failed:     p.failed.Load(),
		Skipped:    p.skipped.Load(),
	}
}
