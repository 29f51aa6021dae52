package viewport

// Zoom limits match the original viewer's 10%..10000% selector range.
const (
	MinZoom = 0.10
	MaxZoom = 100.0
)

// ZoomPresets are the factors offered by the zoom selector, in ascending
// order.
var ZoomPresets = []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 2.0, 3.0, 4.0}

// ClampZoom bounds a zoom factor to the supported range.
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// NextZoom returns the smallest preset strictly greater than current, or
// current clamped if already at or beyond the largest preset.
func NextZoom(current float64) float64 {
	for _, p := range ZoomPresets {
		if p > current {
			return p
		}
	}
	return ClampZoom(current)
}

// PrevZoom returns the largest preset strictly smaller than current, or
// current clamped if already at or below the smallest preset.
func PrevZoom(current float64) float64 {
	for i := len(ZoomPresets) - 1; i >= 0; i-- {
		if ZoomPresets[i] < current {
			return ZoomPresets[i]
		}
	}
	return ClampZoom(current)
}

// FitWidth returns the zoom factor that makes a page of pageWidth points
// fill viewportWidth pixels, leaving margin pixels on the sides.
func FitWidth(pageWidth, viewportWidth, margin float64) float64 {
	avail := viewportWidth - margin
	if pageWidth <= 0 || avail <= 0 {
		return 1.0
	}
	return ClampZoom(avail / pageWidth)
}

// FitHeight returns the zoom factor that makes a page of pageHeight points
// fill viewportHeight pixels, leaving margin pixels on the top and bottom.
func FitHeight(pageHeight, viewportHeight, margin float64) float64 {
	avail := viewportHeight - margin
	if pageHeight <= 0 || avail <= 0 {
		return 1.0
	}
	return ClampZoom(avail / pageHeight)
}
