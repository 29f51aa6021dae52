package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scopogger/healthypdf/internal/config"
	"github.com/scopogger/healthypdf/internal/document"
	"github.com/scopogger/healthypdf/internal/raster"
	"github.com/scopogger/healthypdf/internal/render"
)

var (
	renderPages   string
	renderZoom    float64
	renderOutDir  string
	renderThumb   int
	renderWorkers int
)

var renderCmd = &cobra.Command{
	Use:   "render <file.pdf>",
	Short: "Rasterize pages to PNG through the worker pool",
	Long: `Render the selected pages through the background worker pool and
write one PNG per page to the output directory.

Examples:
  healthypdf render book.pdf
  healthypdf render --pages 1,3,5-7 --zoom 2.0 book.pdf
  healthypdf render --thumbnail 160 -o thumbs book.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		doc, err := document.Open(args[0], password, logger)
		if err != nil {
			return err
		}
		defer doc.Close()

		pages, err := parsePageList(renderPages, doc.PageCount())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(renderOutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		workers := renderWorkers
		if workers <= 0 {
			mgr, err := config.NewManager(cfgFile)
			if err != nil {
				return err
			}
			workers = mgr.Get().Render.Workers
		}

		pool, err := render.NewPool(render.PoolConfig{
			Renderer:  doc,
			Logger:    logger,
			Workers:   workers,
			QueueSize: len(pages),
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go pool.Start(ctx)

		gen := uint64(0)
		for _, p := range pages {
			gen++
			if err := pool.Submit(render.NewTask(p, renderZoom, 0, gen)); err != nil {
				return err
			}
		}

		failed := 0
		for done := 0; done < len(pages); done++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case res := <-pool.Results():
				if res.Err != nil {
					failed++
					logger.Error("page failed", "page", int(res.Task.Page)+1, "error", res.Err)
					continue
				}
				img := res.Image
				if renderThumb > 0 {
					img = raster.Thumbnail(img, renderThumb)
				}
				out := filepath.Join(renderOutDir, fmt.Sprintf("page_%04d.png", int(res.Task.Page)+1))
				if err := writePNG(out, img); err != nil {
					return err
				}
				logger.Info("page written", "page", int(res.Task.Page)+1, "file", out)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d pages failed to render", failed, len(pages))
		}
		return nil
	},
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func init() {
	renderCmd.Flags().StringVar(&renderPages, "pages", "", "pages to render, e.g. 1,3,5-7 (default: all)")
	renderCmd.Flags().Float64Var(&renderZoom, "zoom", 1.0, "zoom factor (1.0 = 72 DPI)")
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", ".", "output directory")
	renderCmd.Flags().IntVar(&renderThumb, "thumbnail", 0, "downscale output to this width in pixels")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "worker goroutines (default from config)")

	rootCmd.AddCommand(renderCmd)
}
