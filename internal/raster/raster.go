// Package raster provides pixel-level transforms applied after
// rasterization: display rotation in 90-degree steps and thumbnail
// downscaling.
package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/scopogger/healthypdf/internal/types"
)

// Rotate returns img rotated clockwise by the given degrees (any multiple
// of 90, negatives allowed). Zero rotation returns img unchanged.
func Rotate(img *image.RGBA, degrees int) (*image.RGBA, error) {
	deg := types.NormalizeRotation(degrees)
	if deg == 0 {
		return img, nil
	}

	b := img.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())

	var dst *image.RGBA
	var m f64.Aff3
	switch deg {
	case 90:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, -1, h, 1, 0, 0}
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case 270:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, 1, 0, -1, 0, w}
	default:
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}

	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst, nil
}

// Thumbnail downscales img to the given width, preserving aspect ratio,
// with Catmull-Rom resampling. Images already narrower than width are
// returned unchanged.
func Thumbnail(img *image.RGBA, width int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
