package config

import "time"

// Config holds healthypdf configuration.
// Stored at: ~/.healthypdf/config.yaml
type Config struct {
	Render RenderCfg `mapstructure:"render" yaml:"render"`
	View   ViewCfg   `mapstructure:"view" yaml:"view"`
}

// RenderCfg tunes the background render pipeline.
type RenderCfg struct {
	Workers   int `mapstructure:"workers" yaml:"workers"`       // Render worker goroutines
	QueueSize int `mapstructure:"queue_size" yaml:"queue_size"` // Pending task bound
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"` // Rendered pages held in memory
}

// ViewCfg tunes viewport and display behavior.
type ViewCfg struct {
	BufferPages      int     `mapstructure:"buffer_pages" yaml:"buffer_pages"`             // Prefetched pages past each window edge
	PageSpacing      float64 `mapstructure:"page_spacing" yaml:"page_spacing"`             // Pixels between stacked pages
	ScrollDebounceMs int     `mapstructure:"scroll_debounce_ms" yaml:"scroll_debounce_ms"` // Delay before a scroll recomputes visibility
	DefaultZoom      float64 `mapstructure:"default_zoom" yaml:"default_zoom"`             // Zoom factor on open
	ThumbnailWidth   int     `mapstructure:"thumbnail_width" yaml:"thumbnail_width"`       // Sidebar thumbnail width in pixels
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderCfg{
			Workers:   2,
			QueueSize: 32,
			CacheSize: 6,
		},
		View: ViewCfg{
			BufferPages:      1,
			PageSpacing:      8,
			ScrollDebounceMs: 200,
			DefaultZoom:      1.0,
			ThumbnailWidth:   160,
		},
	}
}

// ScrollDebounce returns the scroll debounce as a duration.
func (c *Config) ScrollDebounce() time.Duration {
	return time.Duration(c.View.ScrollDebounceMs) * time.Millisecond
}

// Normalize clamps out-of-range values back to their defaults so a
// hand-edited config file cannot stall the pipeline.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Render.Workers <= 0 {
		c.Render.Workers = def.Render.Workers
	}
	if c.Render.QueueSize <= 0 {
		c.Render.QueueSize = def.Render.QueueSize
	}
	if c.Render.CacheSize <= 0 {
		c.Render.CacheSize = def.Render.CacheSize
	}
	if c.View.BufferPages < 0 {
		c.View.BufferPages = def.View.BufferPages
	}
	if c.View.PageSpacing < 0 {
		c.View.PageSpacing = def.View.PageSpacing
	}
	if c.View.ScrollDebounceMs < 0 {
		c.View.ScrollDebounceMs = def.View.ScrollDebounceMs
	}
	if c.View.DefaultZoom <= 0 {
		c.View.DefaultZoom = def.View.DefaultZoom
	}
	if c.View.ThumbnailWidth <= 0 {
		c.View.ThumbnailWidth = def.View.ThumbnailWidth
	}
}
