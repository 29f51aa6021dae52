// Package types provides shared types used across multiple packages.
// This package has no dependencies on other healthypdf packages to avoid import cycles.
package types

// PageID is the stable identity of a page within an open document session.
// It is assigned at document-open time (the page's original zero-based index)
// and never changes afterwards: reordering and deletion move a page's display
// position, not its identity. IDs are never reused within a session.
type PageID int

// PageGeometry describes a page's intrinsic size in page-space units
// (PDF points, 1/72 inch). Set once at open time. Rotation is a display
// transform and does not mutate geometry.
type PageGeometry struct {
	ID     PageID
	Width  float64
	Height float64
}

// PagePlan is one entry of a materialize plan: emit the page identified by
// Page with Rotation degrees applied. A full plan lists the surviving pages
// in their current display order.
type PagePlan struct {
	Page     PageID
	Rotation int // degrees, one of 0, 90, 180, 270
}

// NormalizeRotation reduces an accumulated rotation to the canonical
// 0/90/180/270 range. Negative inputs (counter-clockwise steps) are allowed.
func NormalizeRotation(deg int) int {
	r := deg % 360
	if r < 0 {
		r += 360
	}
	return r
}
