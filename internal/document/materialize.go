package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/scopogger/healthypdf/internal/types"
)

// Materialize writes a new PDF at outPath containing exactly the pages in
// plan, in plan order, with each page's rotation baked in. The open
// session file is never modified. The output is assembled in a temp file
// next to outPath and swapped in with a rename, so a failure partway
// through leaves any existing file at outPath untouched.
func (h *Handle) Materialize(plan []types.PagePlan, outPath string) error {
	if len(plan) == 0 {
		return errors.New("materialize: empty plan")
	}
	for _, p := range plan {
		if int(p.Page) < 0 || int(p.Page) >= h.pageCount {
			return fmt.Errorf("materialize: %w: %d", ErrPageRange, p.Page)
		}
	}

	dir := filepath.Dir(outPath)
	tmpOut := filepath.Join(dir, ".healthypdf-"+uuid.NewString()[:8]+".pdf")
	defer os.Remove(tmpOut)

	// Collect reproduces source pages in selection order, which handles
	// deletion and reordering in one pass.
	if err := api.CollectFile(h.sessionPath, tmpOut, pageSelection(plan), nil); err != nil {
		return fmt.Errorf("materialize collect: %w", err)
	}

	for _, g := range rotationGroups(plan) {
		if err := api.RotateFile(tmpOut, "", g.degrees, g.pages, nil); err != nil {
			return fmt.Errorf("materialize rotate %d: %w", g.degrees, err)
		}
	}

	// The rename can fail transiently when the destination is held open by
	// another process (common on Windows and over network mounts).
	err := retry.Do(
		func() error { return os.Rename(tmpOut, outPath) },
		retry.Attempts(5),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("materialize replace %s: %w", outPath, err)
	}

	h.logger.Debug("document materialized", "out", outPath, "pages", len(plan))
	return nil
}

// pageSelection returns the 1-based source page numbers for plan, in plan
// order, in the selection syntax pdfcpu's collect expects.
func pageSelection(plan []types.PagePlan) []string {
	sel := make([]string, 0, len(plan))
	for _, p := range plan {
		sel = append(sel, strconv.Itoa(int(p.Page)+1))
	}
	return sel
}

type rotationGroup struct {
	degrees int
	pages   []string // 1-based positions in the materialized output
}

// rotationGroups buckets the plan's rotated pages by angle, addressed by
// their 1-based position in the output document (rotation runs after
// collect, so source numbering no longer applies). Groups come back sorted
// by angle so repeated materializations behave identically.
func rotationGroups(plan []types.PagePlan) []rotationGroup {
	byAngle := make(map[int][]string)
	for i, p := range plan {
		deg := types.NormalizeRotation(p.Rotation)
		if deg == 0 {
			continue
		}
		byAngle[deg] = append(byAngle[deg], strconv.Itoa(i+1))
	}

	groups := make([]rotationGroup, 0, len(byAngle))
	for deg, pages := range byAngle {
		groups = append(groups, rotationGroup{degrees: deg, pages: pages})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].degrees < groups[j].degrees })
	return groups
}
