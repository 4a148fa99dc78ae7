package tui

import (
	"context"
	"time"

	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/recurring"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/tui/themes"
)

// Config holds dashboard configuration.
type Config struct {
	Store  report.Store
	Poster Poster
	Bus    *events.Bus
	Theme  themes.Theme
	Month  time.Month
	Year   int
	Width  int
	Height int
	// LoadTimeout bounds a single snapshot load.
	LoadTimeout time.Duration
}

// Option configures the dashboard.
type Option func(*Config)

// WithStore sets the store the reports are read from.
func WithStore(store report.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// Poster posts recurring transactions that have come due.
type Poster interface {
	Post(ctx context.Context, asOf time.Time) ([]recurring.Posted, error)
}

// WithPoster enables posting due recurring transactions from the dashboard.
func WithPoster(p Poster) Option {
	return func(c *Config) {
		c.Poster = p
	}
}

// WithBus subscribes the dashboard to change notifications.
func WithBus(bus *events.Bus) Option {
	return func(c *Config) {
		c.Bus = bus
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithMonth sets the month shown first.
func WithMonth(year int, month time.Month) Option {
	return func(c *Config) {
		c.Year = year
		c.Month = month
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

func defaultConfig() Config {
	now := time.Now()
	return Config{
		Theme:       themes.Default,
		Year:        now.Year(),
		Month:       now.Month(),
		Width:       100,
		Height:      30,
		LoadTimeout: 10 * time.Second,
	}
}

func newConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
