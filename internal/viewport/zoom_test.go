package viewport

import "testing"

func TestZoomStepping(t *testing.T) {
	t.Run("next preset", func(t *testing.T) {
		if got := NextZoom(1.0); got != 1.25 {
			t.Errorf("NextZoom(1.0) = %v, want 1.25", got)
		}
		if got := NextZoom(1.1); got != 1.25 {
			t.Errorf("NextZoom(1.1) = %v, want 1.25", got)
		}
		if got := NextZoom(4.0); got != 4.0 {
			t.Errorf("NextZoom(4.0) = %v, want 4.0", got)
		}
	})

	t.Run("prev preset", func(t *testing.T) {
		if got := PrevZoom(1.0); got != 0.75 {
			t.Errorf("PrevZoom(1.0) = %v, want 0.75", got)
		}
		if got := PrevZoom(0.25); got != 0.25 {
			t.Errorf("PrevZoom(0.25) = %v, want 0.25", got)
		}
	})
}

func TestClampZoom(t *testing.T) {
	if got := ClampZoom(0.01); got != MinZoom {
		t.Errorf("ClampZoom(0.01) = %v, want %v", got, MinZoom)
	}
	if got := ClampZoom(500); got != MaxZoom {
		t.Errorf("ClampZoom(500) = %v, want %v", got, MaxZoom)
	}
	if got := ClampZoom(1.5); got != 1.5 {
		t.Errorf("ClampZoom(1.5) = %v, want 1.5", got)
	}
}

func TestFitZoom(t *testing.T) {
	// 612pt letter page into a 662px viewport with 50px margin: zoom 1.0.
	if got := FitWidth(612, 662, 50); got != 1.0 {
		t.Errorf("FitWidth = %v, want 1.0", got)
	}
	if got := FitHeight(792, 446, 50); got != 0.5 {
		t.Errorf("FitHeight = %v, want 0.5", got)
	}
	// Degenerate inputs fall back to 1.0.
	if got := FitWidth(0, 800, 0); got != 1.0 {
		t.Errorf("FitWidth(0) = %v, want 1.0", got)
	}
	if got := FitHeight(792, 20, 50); got != 1.0 {
		t.Errorf("FitHeight with no available space = %v, want 1.0", got)
	}
}
