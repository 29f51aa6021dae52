// Package document wraps the external PDF capability behind the small
// surface the viewer core needs: open a file (authenticating if
// encrypted), report page count and page sizes, rasterize one page, and
// materialize an edited copy.
//
// Structured operations (page dims, decryption, page collection, rotation)
// go through pdfcpu; rasterization goes through MuPDF via go-fitz. Workers
// rasterize through a fresh fitz document per task and close it
// immediately: the underlying library is not free-threaded, and per-task
// open+close avoids sharing a document object across goroutines at the
// cost of an open per render.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/scopogger/healthypdf/internal/raster"
	"github.com/scopogger/healthypdf/internal/types"
)

// ErrAuth is returned by Open when an encrypted document's password is
// wrong or missing.
var ErrAuth = errors.New("document authentication failed")

// ErrPageRange is returned for page identities outside the document.
var ErrPageRange = errors.New("page out of range")

// Handle is an open document session. The handle itself only holds
// metadata; rasterization opens the session file per task, so a Handle may
// be shared with the render pool's workers.
type Handle struct {
	path        string
	sessionPath string // decrypted temp copy for encrypted documents
	isTemp      bool
	pageCount   int
	geometry    []types.PageGeometry
	logger      *slog.Logger
}

// Open opens the document at path. For encrypted files the password is
// required: a decrypted session copy is written to a temp file owned by
// the handle (removed on Close), and a wrong or missing password yields
// ErrAuth. The handle caches page count and page geometry at open time;
// geometry never changes afterwards (rotation is a display transform).
func Open(path, password string, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("document", path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	sessionPath := path
	isTemp := false

	if _, err := api.PageCountFile(path); err != nil {
		if !looksEncrypted(err) {
			return nil, fmt.Errorf("open document: %w", err)
		}
		tmp, derr := decryptCopy(path, password)
		if derr != nil {
			return nil, derr
		}
		sessionPath = tmp
		isTemp = true
		logger.Debug("opened encrypted document via session copy")
	}

	count, err := api.PageCountFile(sessionPath)
	if err != nil {
		removeTemp(sessionPath, isTemp)
		return nil, fmt.Errorf("page count: %w", err)
	}
	if count == 0 {
		removeTemp(sessionPath, isTemp)
		return nil, fmt.Errorf("open document: no pages")
	}

	dims, err := api.PageDimsFile(sessionPath)
	if err != nil {
		removeTemp(sessionPath, isTemp)
		return nil, fmt.Errorf("page dimensions: %w", err)
	}

	geometry := make([]types.PageGeometry, 0, len(dims))
	for i, d := range dims {
		geometry = append(geometry, types.PageGeometry{
			ID:     types.PageID(i),
			Width:  d.Width,
			Height: d.Height,
		})
	}

	logger.Debug("document opened", "pages", count)
	return &Handle{
		path:        path,
		sessionPath: sessionPath,
		isTemp:      isTemp,
		pageCount:   count,
		geometry:    geometry,
		logger:      logger,
	}, nil
}

// decryptCopy writes a decrypted copy of an encrypted document to a temp
// file and returns its path.
func decryptCopy(path, password string) (string, error) {
	tmp, err := os.CreateTemp("", "healthypdf-session-*.pdf")
	if err != nil {
		return "", fmt.Errorf("session copy: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.DecryptFile(path, tmpPath, conf); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return tmpPath, nil
}

// looksEncrypted reports whether a pdfcpu open failure indicates an
// encrypted document rather than a corrupt one.
func looksEncrypted(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

func removeTemp(path string, isTemp bool) {
	if isTemp {
		os.Remove(path)
	}
}

// Path returns the path the document was opened from.
func (h *Handle) Path() string {
	return h.path
}

// PageCount returns the number of pages.
func (h *Handle) PageCount() int {
	return h.pageCount
}

// Geometry returns intrinsic page sizes in display order at open time
// (identity order). The slice is shared; callers must not mutate it.
func (h *Handle) Geometry() []types.PageGeometry {
	return h.geometry
}

// PageSize returns the intrinsic size of one page in points.
func (h *Handle) PageSize(id types.PageID) (width, height float64, err error) {
	if int(id) < 0 || int(id) >= h.pageCount {
		return 0, 0, fmt.Errorf("%w: %d", ErrPageRange, id)
	}
	g := h.geometry[id]
	return g.Width, g.Height, nil
}

// Rasterize renders one page at the given zoom and display rotation.
// Safe for concurrent calls: each call opens its own fitz document against
// the session file and closes it before returning. Cancellation is checked
// between the open, render and rotate steps.
func (h *Handle) Rasterize(ctx context.Context, id types.PageID, zoom float64, rotation int) (*image.RGBA, error) {
	if int(id) < 0 || int(id) >= h.pageCount {
		return nil, fmt.Errorf("%w: %d", ErrPageRange, id)
	}
	if zoom <= 0 {
		return nil, fmt.Errorf("zoom must be positive, got %v", zoom)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(h.sessionPath)
	if err != nil {
		return nil, fmt.Errorf("open for render: %w", err)
	}
	defer doc.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Zoom 1.0 is 72 DPI: one pixel per PDF point.
	img, err := doc.ImageDPI(int(id), 72*zoom)
	if err != nil {
		return nil, fmt.Errorf("rasterize page %d: %w", id, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return raster.Rotate(img, rotation)
}

// Reload re-reads page count and geometry after the file at the open path
// was rewritten by an in-place materialize. An encrypted document's temp
// session copy is dropped: the rewritten file is no longer encrypted, so
// the handle reads the path directly from here on.
func (h *Handle) Reload() error {
	if h.isTemp {
		os.Remove(h.sessionPath)
		h.sessionPath = h.path
		h.isTemp = false
	}

	count, err := api.PageCountFile(h.sessionPath)
	if err != nil {
		return fmt.Errorf("reload page count: %w", err)
	}
	dims, err := api.PageDimsFile(h.sessionPath)
	if err != nil {
		return fmt.Errorf("reload page dimensions: %w", err)
	}

	geometry := make([]types.PageGeometry, 0, len(dims))
	for i, d := range dims {
		geometry = append(geometry, types.PageGeometry{
			ID:     types.PageID(i),
			Width:  d.Width,
			Height: d.Height,
		})
	}

	h.pageCount = count
	h.geometry = geometry
	h.logger.Debug("document reloaded", "pages", count)
	return nil
}

// Close releases the handle. For encrypted documents this removes the
// decrypted session copy.
func (h *Handle) Close() error {
	if h.isTemp && h.sessionPath != "" {
		err := os.Remove(h.sessionPath)
		h.sessionPath = ""
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session copy: %w", err)
		}
	}
	return nil
}
