// Package editmodel tracks page edits (deletion, reordering, rotation)
// without touching the underlying document until an explicit save.
//
// Edits are keyed by stable page identity, never by display position. That
// decoupling is what lets the cache and in-flight renders stay valid across
// arbitrary reordering: moving a page changes only the display permutation,
// so no raster is invalidated and nothing re-renders.
//
// The model is not safe for concurrent use; it belongs to the control
// goroutine like the rest of the pipeline state.
package editmodel

import (
	"errors"
	"fmt"

	"github.com/scopogger/healthypdf/internal/types"
)

// ErrLastPage is returned when a delete would remove the only remaining
// non-deleted page.
var ErrLastPage = errors.New("cannot delete the last remaining page")

// ErrUnknownPage is returned for identities outside the document.
var ErrUnknownPage = errors.New("unknown page")

// Model is the edit state of one open document: the display-order
// permutation, the set of deleted pages, and per-page rotation deltas.
// A fresh model is the identity mapping: original order, nothing deleted,
// no rotation.
type Model struct {
	order     []types.PageID // display order, includes deleted (skipped on read)
	deleted   map[types.PageID]struct{}
	rotations map[types.PageID]int
	modified  bool
}

// New creates an identity model for a document with pageCount pages.
func New(pageCount int) *Model {
	m := &Model{}
	m.reset(pageCount)
	return m
}

func (m *Model) reset(pageCount int) {
	m.order = make([]types.PageID, pageCount)
	for i := range m.order {
		m.order[i] = types.PageID(i)
	}
	m.deleted = make(map[types.PageID]struct{})
	m.rotations = make(map[types.PageID]int)
	m.modified = false
}

// Reset discards all edits, returning to the identity mapping for a
// document of pageCount pages. Called after a successful materialize.
func (m *Model) Reset(pageCount int) {
	m.reset(pageCount)
}

// Modified reports whether any edit is outstanding.
func (m *Model) Modified() bool {
	return m.modified
}

// PageCount returns the total page count including deleted pages.
func (m *Model) PageCount() int {
	return len(m.order)
}

// VisibleCount returns the number of non-deleted pages.
func (m *Model) VisibleCount() int {
	return len(m.order) - len(m.deleted)
}

// IsDeleted reports whether id is marked deleted.
func (m *Model) IsDeleted(id types.PageID) bool {
	_, ok := m.deleted[id]
	return ok
}

// Rotation returns the accumulated display rotation for id in degrees
// (0, 90, 180 or 270).
func (m *Model) Rotation(id types.PageID) int {
	return m.rotations[id]
}

// VisibleOrder returns the non-deleted pages in display order.
func (m *Model) VisibleOrder() []types.PageID {
	out := make([]types.PageID, 0, m.VisibleCount())
	for _, id := range m.order {
		if !m.IsDeleted(id) {
			out = append(out, id)
		}
	}
	return out
}

// DisplayNumber returns the 1-based display number of id among non-deleted
// pages, or false if id is deleted or unknown.
func (m *Model) DisplayNumber(id types.PageID) (int, bool) {
	n := 1
	for _, cur := range m.order {
		if m.IsDeleted(cur) {
			continue
		}
		if cur == id {
			return n, true
		}
		n++
	}
	return 0, false
}

// Delete marks id deleted. The display-order permutation is unchanged;
// deleted pages are simply skipped when reading. Fails with ErrLastPage if
// id is the only remaining non-deleted page.
func (m *Model) Delete(id types.PageID) error {
	if err := m.check(id); err != nil {
		return err
	}
	if m.IsDeleted(id) {
		return nil
	}
	if m.VisibleCount() <= 1 {
		return ErrLastPage
	}
	m.deleted[id] = struct{}{}
	m.modified = true
	return nil
}

// Rotate accumulates a rotation step for id. delta must be +90 or -90.
// Returns the new normalized rotation.
func (m *Model) Rotate(id types.PageID, delta int) (int, error) {
	if err := m.check(id); err != nil {
		return 0, err
	}
	if delta != 90 && delta != -90 {
		return 0, fmt.Errorf("rotation delta must be +90 or -90, got %d", delta)
	}
	r := types.NormalizeRotation(m.rotations[id] + delta)
	if r == 0 {
		delete(m.rotations, id)
	} else {
		m.rotations[id] = r
	}
	m.modified = true
	return r, nil
}

// MoveUp swaps id with its nearest non-deleted predecessor in display
// order. Returns false (and no error) if id is already first.
func (m *Model) MoveUp(id types.PageID) (bool, error) {
	return m.move(id, -1)
}

// MoveDown swaps id with its nearest non-deleted successor in display
// order. Returns false (and no error) if id is already last.
func (m *Model) MoveDown(id types.PageID) (bool, error) {
	return m.move(id, +1)
}

func (m *Model) move(id types.PageID, dir int) (bool, error) {
	if err := m.check(id); err != nil {
		return false, err
	}
	if m.IsDeleted(id) {
		return false, nil
	}

	cur := -1
	for i, p := range m.order {
		if p == id {
			cur = i
			break
		}
	}
	if cur < 0 {
		return false, fmt.Errorf("%w: %d", ErrUnknownPage, id)
	}

	// Nearest non-deleted neighbor in the requested direction.
	target := cur
	for {
		target += dir
		if target < 0 || target >= len(m.order) {
			return false, nil // boundary: no-op, not an error
		}
		if !m.IsDeleted(m.order[target]) {
			break
		}
	}

	m.order[cur], m.order[target] = m.order[target], m.order[cur]
	m.modified = true
	return true, nil
}

// Plan returns the materialize plan: the surviving pages in display order,
// each with its accumulated rotation. The model is not mutated; the caller
// resets it only after the plan was written out successfully.
func (m *Model) Plan() []types.PagePlan {
	plan := make([]types.PagePlan, 0, m.VisibleCount())
	for _, id := range m.order {
		if m.IsDeleted(id) {
			continue
		}
		plan = append(plan, types.PagePlan{Page: id, Rotation: m.rotations[id]})
	}
	return plan
}

func (m *Model) check(id types.PageID) error {
	if id < 0 || int(id) >= len(m.order) {
		return fmt.Errorf("%w: %d", ErrUnknownPage, id)
	}
	return nil
}
