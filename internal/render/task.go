// Package render runs page rasterization off the control goroutine: a
// bounded worker pool executes cancellable tasks and a scheduler keeps the
// set of in-flight work aligned with the visible pages, discarding stale
// results by generation.
package render

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/scopogger/healthypdf/internal/types"
)

// Task is one cancellable unit of work: rasterize a single page at one
// zoom/rotation. Tasks are created by the scheduler, executed once by a
// pool worker, and never reused.
type Task struct {
	// ID is a correlation id for logs; staleness decisions use Generation.
	ID       string
	Page     types.PageID
	Zoom     float64
	Rotation int

	// Generation is the monotonically increasing render generation attached
	// at dispatch time. A result whose generation no longer matches the
	// latest dispatched generation for its page is dropped.
	Generation uint64

	cancelled atomic.Bool
}

// NewTask creates a task for one page render attempt.
func NewTask(page types.PageID, zoom float64, rotation int, generation uint64) *Task {
	return &Task{
		ID:         uuid.New().String(),
		Page:       page,
		Zoom:       zoom,
		Rotation:   rotation,
		Generation: generation,
	}
}

// Cancel requests cooperative cancellation. Idempotent; a task already
// running may still complete, in which case its result is discarded by the
// scheduler's generation check.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}
