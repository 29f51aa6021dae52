// Package viewport computes which pages are visible for a given scroll
// position and widget geometry.
//
// Everything here is pure: callers pass the current layout (non-deleted
// pages in display order), the scroll offset and the viewport height, and
// get back the visible set plus the focused page. No state is kept between
// calls, which keeps visibility logic testable independent of rendering.
package viewport

import (
	"math"

	"github.com/scopogger/healthypdf/internal/types"
)

// DefaultBuffer is the number of pages prefetched on each side of the
// focused page.
const DefaultBuffer = 1

// PageLayout is one page's display rectangle in the scrolled content:
// Offset is the top edge in pixels at the current zoom, Height its
// rendered height. Entries are ordered by display position and exclude
// deleted pages.
type PageLayout struct {
	ID     types.PageID
	Offset float64
	Height float64
}

// VisibleSet is the result of a visibility computation: the identities
// whose rectangles intersect the viewport (plus buffer pages around the
// focused page) and the single focused page, the one closest to the
// viewport's vertical center.
type VisibleSet struct {
	IDs      map[types.PageID]struct{}
	Focused  types.PageID
	HasFocus bool
}

// Contains reports whether id is in the visible set.
func (vs VisibleSet) Contains(id types.PageID) bool {
	_, ok := vs.IDs[id]
	return ok
}

// Compute returns the set of pages whose rectangles intersect the viewport
// [scrollY, scrollY+viewportHeight), extended by buffer pages immediately
// before the first and after the last intersecting page in display order.
// When nothing intersects, the buffer anchors on the focused page instead.
// The focused page is the one whose center is closest to the viewport
// center; ties go to the earlier page (lower offset). A negative buffer
// falls back to DefaultBuffer.
func Compute(layout []PageLayout, scrollY, viewportHeight float64, buffer int) VisibleSet {
	if buffer < 0 {
		buffer = DefaultBuffer
	}
	vs := VisibleSet{IDs: make(map[types.PageID]struct{})}
	if len(layout) == 0 || viewportHeight <= 0 {
		return vs
	}

	viewTop := scrollY
	viewBottom := scrollY + viewportHeight
	viewCenter := scrollY + viewportHeight/2

	focusIdx := -1
	bestDist := math.Inf(1)
	firstIdx, lastIdx := -1, -1

	for i, p := range layout {
		top := p.Offset
		bottom := p.Offset + p.Height

		if bottom > viewTop && top < viewBottom {
			vs.IDs[p.ID] = struct{}{}
			if firstIdx < 0 {
				firstIdx = i
			}
			lastIdx = i
		}

		center := p.Offset + p.Height/2
		dist := math.Abs(center - viewCenter)
		// Strict less-than keeps the earlier page on ties.
		if dist < bestDist {
			bestDist = dist
			focusIdx = i
		}
	}

	if focusIdx < 0 {
		return vs
	}
	vs.Focused = layout[focusIdx].ID
	vs.HasFocus = true

	if firstIdx < 0 {
		firstIdx, lastIdx = focusIdx, focusIdx
	}
	for off := 1; off <= buffer; off++ {
		if i := firstIdx - off; i >= 0 {
			vs.IDs[layout[i].ID] = struct{}{}
		}
		if i := lastIdx + off; i < len(layout) {
			vs.IDs[layout[i].ID] = struct{}{}
		}
	}

	return vs
}

// Layout computes display rectangles for pages at the given zoom, stacking
// them vertically with spacing pixels between consecutive pages.
func Layout(pages []types.PageGeometry, zoom, spacing float64) []PageLayout {
	out := make([]PageLayout, 0, len(pages))
	offset := 0.0
	for _, g := range pages {
		h := g.Height * zoom
		out = append(out, PageLayout{ID: g.ID, Offset: offset, Height: h})
		offset += h + spacing
	}
	return out
}

// OffsetOf returns the top offset of id in layout, for scroll-to-page
// navigation. The second return is false if id is not laid out.
func OffsetOf(layout []PageLayout, id types.PageID) (float64, bool) {
	for _, p := range layout {
		if p.ID == id {
			return p.Offset, true
		}
	}
	return 0, false
}

// CenterScroll returns the scroll offset that centers id in a viewport of
// the given height, clamped at zero. The second return is false if id is
// not laid out.
func CenterScroll(layout []PageLayout, id types.PageID, viewportHeight float64) (float64, bool) {
	for _, p := range layout {
		if p.ID == id {
			s := p.Offset + p.Height/2 - viewportHeight/2
			if s < 0 {
				s = 0
			}
			return s, true
		}
	}
	return 0, false
}
