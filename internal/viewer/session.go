// Package viewer ties the pipeline together: one Session owns the open
// document, the edit model, the raster cache, the render pool and the
// scheduler, and exposes the operations a UI shell calls (scroll, zoom,
// page edits, save).
//
// All mutable pipeline state is guarded by the session mutex, which makes
// the session the control context the scheduler and cache require. Worker
// goroutines never touch it; they deliver results on the pool's channel
// and Run applies them under the lock.
package viewer

import (
	"context"
	"image"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/scopogger/healthypdf/internal/document"
	"github.com/scopogger/healthypdf/internal/editmodel"
	"github.com/scopogger/healthypdf/internal/pagecache"
	"github.com/scopogger/healthypdf/internal/render"
	"github.com/scopogger/healthypdf/internal/types"
	"github.com/scopogger/healthypdf/internal/viewport"
)

// Document is the capability surface the session needs from an open
// document. *document.Handle implements it; tests substitute fakes.
type Document interface {
	render.Renderer
	Path() string
	PageCount() int
	Geometry() []types.PageGeometry
	Materialize(plan []types.PagePlan, outPath string) error
	Reload() error
	Close() error
}

var _ Document = (*document.Handle)(nil)

// Display receives pipeline notifications. Implementations are called
// with the session lock held and must not call back into the session.
type Display interface {
	// ShowPage delivers a freshly rendered raster for a visible page.
	ShowPage(id types.PageID, img *image.RGBA)
	// HidePage tells the display a page's raster is no longer valid
	// (deleted, or rotated and pending re-render).
	HidePage(id types.PageID)
	// PageFocused reports a focus change with the page's current 1-based
	// display number.
	PageFocused(id types.PageID, displayNumber int)
}

// SessionConfig configures a new session. Zero values fall back to
// defaults except BufferPages, where zero genuinely means no prefetch and
// a negative value selects the default.
type SessionConfig struct {
	Document Document
	Display  Display
	Logger   *slog.Logger

	CacheSize      int
	Workers        int
	QueueSize      int
	BufferPages    int
	PageSpacing    float64
	ScrollDebounce time.Duration
}

// Session is one open document with its full render pipeline.
type Session struct {
	mu      sync.Mutex
	logger  *slog.Logger
	doc     Document
	display Display

	cache *pagecache.Cache
	pool  *render.Pool
	sched *render.Scheduler
	edit  *editmodel.Model

	geometry []types.PageGeometry // indexed by page identity
	spacing  float64
	buffer   int
	debounce time.Duration

	scrollY    float64
	viewportW  float64
	viewportH  float64
	visible    viewport.VisibleSet
	scrollWait *time.Timer
	closed     bool
}

// NewSession builds the pipeline around an open document. Call Run to
// start rendering.
func NewSession(cfg SessionConfig) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session")

	cache := pagecache.New(cfg.CacheSize, logger)

	pool, err := render.NewPool(render.PoolConfig{
		Renderer:  cfg.Document,
		Logger:    logger,
		Workers:   cfg.Workers,
		QueueSize: cfg.QueueSize,
	})
	if err != nil {
		return nil, err
	}

	edit := editmodel.New(cfg.Document.PageCount())

	sched := render.NewScheduler(render.SchedulerConfig{
		Pool:       pool,
		Cache:      cache,
		Logger:     logger,
		RotationOf: edit.Rotation,
	})

	return &Session{
		logger:   logger,
		doc:      cfg.Document,
		display:  cfg.Display,
		cache:    cache,
		pool:     pool,
		sched:    sched,
		edit:     edit,
		geometry: cfg.Document.Geometry(),
		spacing:  cfg.PageSpacing,
		buffer:   cfg.BufferPages,
		debounce: cfg.ScrollDebounce,
		visible:  viewport.VisibleSet{IDs: map[types.PageID]struct{}{}},
	}, nil
}

// Run starts the render workers and applies results until ctx is
// cancelled. Run in a goroutine next to the UI loop.
func (s *Session) Run(ctx context.Context) {
	go s.pool.Start(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.pool.Results():
			s.HandleResult(res)
		}
	}
}

// HandleResult applies one completed render. Accepted results go to the
// display; stale or superseded ones are dropped by the scheduler.
func (s *Session) HandleResult(res render.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.sched.Apply(res) {
		s.display.ShowPage(res.Task.Page, res.Image)
	}
}

// SetViewport sets the widget size and recomputes visibility immediately.
func (s *Session) SetViewport(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewportW = width
	s.viewportH = height
	s.recomputeLocked()
}

// Scroll records a new scroll offset. Visibility recomputes after the
// configured debounce interval so a fast flick does not dispatch renders
// for every intermediate position; with no debounce it recomputes
// immediately.
func (s *Session) Scroll(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollY = y
	if s.debounce <= 0 {
		s.recomputeLocked()
		return
	}
	if s.scrollWait != nil {
		s.scrollWait.Stop()
	}
	s.scrollWait = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.recomputeLocked()
	})
}

// ScrollTo centers a page in the viewport and recomputes immediately.
// Used for page navigation controls.
func (s *Session) ScrollTo(id types.PageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := viewport.CenterScroll(s.layoutLocked(), id, s.viewportH)
	if !ok {
		return false
	}
	s.scrollY = y
	s.recomputeLocked()
	return true
}

// SetZoom changes the zoom factor, clamped to the supported range. Every
// cached raster is for the old zoom, so the cache is cleared and visible
// pages re-render; scroll re-anchors on the focused page.
func (s *Session) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoomLocked(viewport.ClampZoom(zoom))
}

// ZoomIn steps to the next zoom preset.
func (s *Session) ZoomIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoomLocked(viewport.NextZoom(s.sched.Zoom()))
}

// ZoomOut steps to the previous zoom preset.
func (s *Session) ZoomOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoomLocked(viewport.PrevZoom(s.sched.Zoom()))
}

// FitWidth zooms so the focused page fills the viewport width, leaving
// margin pixels.
func (s *Session) FitWidth(margin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, _ := s.focusedDimsLocked()
	s.setZoomLocked(viewport.FitWidth(w, s.viewportW, margin))
}

// FitHeight zooms so the focused page fills the viewport height, leaving
// margin pixels.
func (s *Session) FitHeight(margin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, h := s.focusedDimsLocked()
	s.setZoomLocked(viewport.FitHeight(h, s.viewportH, margin))
}

func (s *Session) setZoomLocked(zoom float64) {
	if zoom == s.sched.Zoom() {
		return
	}
	anchor := s.visible.Focused
	hasAnchor := s.visible.HasFocus

	s.sched.SetZoom(zoom)
	if hasAnchor {
		if y, ok := viewport.CenterScroll(s.layoutLocked(), anchor, s.viewportH); ok {
			s.scrollY = y
		}
	}
	s.recomputeLocked()
}

// RotatePage accumulates a 90-degree rotation step for one page. The old
// raster is invalid, so the page is hidden, evicted and re-rendered if
// visible.
func (s *Session) RotatePage(id types.PageID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.edit.Rotate(id, delta); err != nil {
		return err
	}
	s.display.HidePage(id)
	s.sched.Invalidate(id)
	// A 90-degree step swaps the page's display width and height, which
	// shifts the layout below it.
	s.recomputeLocked()
	return nil
}

// DeletePage marks a page deleted. Its identity survives (undo by a later
// materialize plan is possible at the model level); it just disappears
// from the layout, so the next recompute evicts it and reflows the rest.
func (s *Session) DeletePage(id types.PageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.edit.Delete(id); err != nil {
		return err
	}
	s.display.HidePage(id)
	s.recomputeLocked()
	return nil
}

// MovePageUp swaps a page with its nearest predecessor in display order.
// Cached rasters stay valid: identity does not change, only position.
func (s *Session) MovePageUp(id types.PageID) (bool, error) {
	return s.move(id, (*editmodel.Model).MoveUp)
}

// MovePageDown swaps a page with its nearest successor in display order.
func (s *Session) MovePageDown(id types.PageID) (bool, error) {
	return s.move(id, (*editmodel.Model).MoveDown)
}

func (s *Session) move(id types.PageID, op func(*editmodel.Model, types.PageID) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved, err := op(s.edit, id)
	if err != nil || !moved {
		return moved, err
	}
	s.recomputeLocked()
	return true, nil
}

// CurrentPage returns the focused page identity and its 1-based display
// number. ok is false before the first viewport computation.
func (s *Session) CurrentPage() (id types.PageID, displayNumber int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible.HasFocus {
		return 0, 0, false
	}
	n, known := s.edit.DisplayNumber(s.visible.Focused)
	if !known {
		return 0, 0, false
	}
	return s.visible.Focused, n, true
}

// Modified reports whether unsaved edits exist.
func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edit.Modified()
}

// Zoom returns the active zoom factor.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Zoom()
}

// VisiblePages returns the current visible set in ascending identity
// order.
func (s *Session) VisiblePages() []types.PageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]types.PageID, 0, len(s.visible.IDs))
	for id := range s.visible.IDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Save materializes the current edit plan to outPath. On success the
// edit state resets to the identity mapping and the render state is
// discarded: an in-place save rewrote the file under the handle (which is
// reloaded, renumbering identities), and a save-as leaves the session on
// the unedited source, so rasters with rotations baked in are wrong
// either way. On failure the edit state is left untouched.
func (s *Session) Save(outPath string) error {
	s.mu.Lock()
	plan := s.edit.Plan()
	s.mu.Unlock()

	if err := s.doc.Materialize(plan, outPath); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if outPath == s.doc.Path() {
		if err := s.doc.Reload(); err != nil {
			return err
		}
		s.geometry = s.doc.Geometry()
	}
	s.edit.Reset(s.doc.PageCount())
	s.sched.Reset()
	s.recomputeLocked()
	return nil
}

// Close cancels outstanding work and closes the document. The session is
// unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.scrollWait != nil {
		s.scrollWait.Stop()
	}
	s.sched.CancelAll()
	s.mu.Unlock()
	return s.doc.Close()
}

// Status aggregates pipeline counters for diagnostics.
type Status struct {
	Cache     pagecache.Status
	Pool      render.PoolStatus
	Scheduler render.SchedulerStatus
}

// Status returns a snapshot of pipeline counters.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Cache:     s.cache.Status(),
		Pool:      s.pool.Status(),
		Scheduler: s.sched.Status(),
	}
}

// recomputeLocked recomputes the visible set from the current layout and
// hands it to the scheduler, which prunes the cache, cancels scrolled-away
// work and dispatches what is missing.
func (s *Session) recomputeLocked() {
	prevFocus := s.visible.Focused
	hadFocus := s.visible.HasFocus

	vs := viewport.Compute(s.layoutLocked(), s.scrollY, s.viewportH, s.buffer)
	s.sched.SetVisible(vs)
	s.visible = vs

	if vs.HasFocus && (!hadFocus || vs.Focused != prevFocus) {
		if n, ok := s.edit.DisplayNumber(vs.Focused); ok {
			s.display.PageFocused(vs.Focused, n)
		}
	}
}

// layoutLocked stacks the non-deleted pages in display order at the
// current zoom. Pages rotated 90 or 270 swap width and height.
func (s *Session) layoutLocked() []viewport.PageLayout {
	order := s.edit.VisibleOrder()
	geoms := make([]types.PageGeometry, 0, len(order))
	for _, id := range order {
		g := s.geometry[id]
		if r := s.edit.Rotation(id); r == 90 || r == 270 {
			g.Width, g.Height = g.Height, g.Width
		}
		geoms = append(geoms, g)
	}
	return viewport.Layout(geoms, s.sched.Zoom(), s.spacing)
}

// focusedDimsLocked returns the focused page's rotated dimensions, falling
// back to the first page before any viewport computation.
func (s *Session) focusedDimsLocked() (width, height float64) {
	id := types.PageID(0)
	if s.visible.HasFocus {
		id = s.visible.Focused
	}
	if int(id) >= len(s.geometry) {
		return 0, 0
	}
	g := s.geometry[id]
	if r := s.edit.Rotation(id); r == 90 || r == 270 {
		return g.Height, g.Width
	}
	return g.Width, g.Height
}
