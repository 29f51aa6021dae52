package render

import (
	"log/slog"
	"sort"

	"github.com/scopogger/healthypdf/internal/pagecache"
	"github.com/scopogger/healthypdf/internal/types"
	"github.com/scopogger/healthypdf/internal/viewport"
)

// State is the render lifecycle of one page identity.
type State int

const (
	// StateIdle: no task outstanding, no valid cache entry.
	StateIdle State = iota
	// StateRendering: a task is dispatched and may still be cancelled.
	StateRendering
	// StateCancelled: the task was told to stop; its result, if it still
	// arrives, is discarded.
	StateCancelled
	// StateLoaded: a result was accepted into the cache.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateCancelled:
		return "cancelled"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

type pageState struct {
	state State
	// generation of the latest dispatched task for this page. Results
	// carrying any other generation are stale.
	generation uint64
	task       *Task
}

// Scheduler keeps exactly the necessary pages rendering: on every visible
// set change it cancels work that scrolled away, dispatches work for newly
// visible pages, and prunes the cache to the visible set. Completed results
// are applied only if their generation is still current and the page is
// still visible.
//
// The scheduler is not safe for concurrent use: all methods, including
// Apply, run on the control goroutine. Workers only touch the pool's
// channels.
type Scheduler struct {
	logger     *slog.Logger
	pool       *Pool
	cache      *pagecache.Cache
	rotationOf func(types.PageID) int

	zoom    float64
	visible viewport.VisibleSet
	states  map[types.PageID]*pageState
	nextGen uint64

	dispatched   uint64
	applied      uint64
	staleDropped uint64
	cancelled    uint64
}

// SchedulerConfig configures a new scheduler.
type SchedulerConfig struct {
	Pool   *Pool
	Cache  *pagecache.Cache
	Logger *slog.Logger

	// RotationOf returns the current display rotation for a page. Nil means
	// no page is rotated.
	RotationOf func(types.PageID) int
}

// NewScheduler creates a scheduler at zoom 1.0 with an empty visible set.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rotationOf := cfg.RotationOf
	if rotationOf == nil {
		rotationOf = func(types.PageID) int { return 0 }
	}
	return &Scheduler{
		logger:     logger.With("component", "scheduler"),
		pool:       cfg.Pool,
		cache:      cfg.Cache,
		rotationOf: rotationOf,
		zoom:       1.0,
		visible:    viewport.VisibleSet{IDs: map[types.PageID]struct{}{}},
		states:     make(map[types.PageID]*pageState),
	}
}

// Zoom returns the active zoom factor.
func (s *Scheduler) Zoom() float64 {
	return s.zoom
}

// SetVisible diffs the new visible set against in-flight work: the cache is
// pruned to the new set, tasks for pages that scrolled away are cancelled,
// and renders are dispatched for newly visible pages that are neither
// cached nor already rendering. The focused page is dispatched first.
func (s *Scheduler) SetVisible(vs viewport.VisibleSet) {
	s.cache.KeepOnly(vs.IDs)

	for id, st := range s.states {
		if st.state == StateRendering && !vs.Contains(id) {
			st.task.Cancel()
			st.state = StateCancelled
			s.cancelled++
		}
	}

	for _, id := range dispatchOrder(vs) {
		if s.needsRender(id) {
			s.dispatch(id)
		}
	}

	s.visible = vs
}

// Apply delivers one completed result. It is accepted only if the task's
// generation matches the latest dispatched generation for that page and the
// page is still visible; otherwise the result is dropped silently. Returns
// true when the image was stored, so the caller can notify the display.
func (s *Scheduler) Apply(res Result) bool {
	id := res.Task.Page

	st, ok := s.states[id]
	if !ok || res.Task.Generation != st.generation {
		s.staleDropped++
		s.logger.Debug("dropping stale render result", "page", id, "task", res.Task.ID)
		return false
	}

	if res.Err != nil {
		// The page keeps its placeholder; a later viewport change retries.
		st.state = StateIdle
		return false
	}

	if !s.visible.Contains(id) {
		s.staleDropped++
		st.state = StateIdle
		return false
	}

	s.cache.Put(id, res.Image)
	st.state = StateLoaded
	s.applied++
	return true
}

// SetZoom invalidates every cached raster: all outstanding tasks are
// cancelled, the cache is cleared and every page returns to idle. The
// caller recomputes the layout at the new zoom and calls SetVisible to
// re-trigger rendering.
func (s *Scheduler) SetZoom(zoom float64) {
	if zoom == s.zoom {
		return
	}
	s.Reset()
	s.zoom = zoom
	s.logger.Debug("zoom changed", "zoom", zoom)
}

// Reset cancels every outstanding task and forgets all render state and
// cached rasters. Used on zoom change and when the edit state is reset
// after a materialize, where every existing raster may be wrong for the
// new page presentation.
func (s *Scheduler) Reset() {
	s.CancelAll()
	s.cache.Clear()
	clear(s.states)
}

// Invalidate evicts one page (rotation changed): its outstanding task is
// cancelled, its cache entry dropped, and a render is re-dispatched only if
// the page is still visible.
func (s *Scheduler) Invalidate(id types.PageID) {
	if st, ok := s.states[id]; ok {
		if st.state == StateRendering {
			st.task.Cancel()
			s.cancelled++
		}
		delete(s.states, id)
	}
	s.cache.Evict(id)

	if s.visible.Contains(id) {
		s.dispatch(id)
	}
}

// CancelAll cancels every outstanding task. Used on zoom change and
// document close.
func (s *Scheduler) CancelAll() {
	for _, st := range s.states {
		if st.state == StateRendering {
			st.task.Cancel()
			st.state = StateCancelled
			s.cancelled++
		}
	}
}

// StateOf reports the render state of a page. A loaded page whose cache
// entry was since evicted reads as idle again.
func (s *Scheduler) StateOf(id types.PageID) State {
	st, ok := s.states[id]
	if !ok {
		if s.cache.Contains(id) {
			return StateLoaded
		}
		return StateIdle
	}
	if st.state == StateLoaded && !s.cache.Contains(id) {
		return StateIdle
	}
	return st.state
}

// SchedulerStatus holds lifetime scheduler counters.
type SchedulerStatus struct {
	Dispatched   uint64
	Applied      uint64
	StaleDropped uint64
	Cancelled    uint64
}

// Status returns lifetime counters.
func (s *Scheduler) Status() SchedulerStatus {
	return SchedulerStatus{
		Dispatched:   s.dispatched,
		Applied:      s.applied,
		StaleDropped: s.staleDropped,
		Cancelled:    s.cancelled,
	}
}

func (s *Scheduler) needsRender(id types.PageID) bool {
	if s.cache.Contains(id) {
		return false
	}
	st, ok := s.states[id]
	return !ok || st.state != StateRendering
}

func (s *Scheduler) dispatch(id types.PageID) {
	s.nextGen++
	task := NewTask(id, s.zoom, s.rotationOf(id), s.nextGen)

	if err := s.pool.Submit(task); err != nil {
		// Dropped dispatch; the next viewport change retries.
		return
	}

	st, ok := s.states[id]
	if !ok {
		st = &pageState{}
		s.states[id] = st
	}
	st.state = StateRendering
	st.generation = task.Generation
	st.task = task
	s.dispatched++
	s.logger.Debug("dispatched render", "page", id, "task", task.ID, "generation", task.Generation)
}

// dispatchOrder lists the visible set with the focused page first and the
// rest in display-stable ascending identity order.
func dispatchOrder(vs viewport.VisibleSet) []types.PageID {
	ids := make([]types.PageID, 0, len(vs.IDs))
	for id := range vs.IDs {
		if vs.HasFocus && id == vs.Focused {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if vs.HasFocus {
		if _, ok := vs.IDs[vs.Focused]; ok {
			ids = append([]types.PageID{vs.Focused}, ids...)
		}
	}
	return ids
}
