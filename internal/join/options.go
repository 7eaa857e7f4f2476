package join

import (
	"log/slog"

	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
)

// Option configures a Compiler or a single join.
type Option func(*config)

type config struct {
	strategy Strategy
	logger   *slog.Logger
	ids      func() string

	// where maps a table name to the stream.Pipeline[T] applied to its
	// rows before joining.
	where map[string]any
}

func defaultConfig() config {
	return config{
		strategy: StrategyAuto,
		ids:      newRealizationID,
	}
}

func (c config) with(opts []Option) config {
	if c.where != nil {
		where := make(map[string]any, len(c.where))
		for k, v := range c.where {
			where[k] = v
		}
		c.where = where
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// WithStrategy forces a strategy for every stage that can use it.
// Stages without an equality link always run as nested loops.
//
// Results are the same under every strategy; only the order of tuples
// and the memory profile differ.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithLogger sets the logger for plan and realization events.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithIDs sets the function naming each realization in logs.
// Default: a fresh UUIDv7 per realization.
func WithIDs(next func() string) Option {
	return func(c *config) {
		c.ids = next
	}
}

// Where applies p to the rows of table id before they take part in the
// join. Filters placed here shrink indexes and scans.
func Where[T any](id table.Identifier[T], p stream.Pipeline[T]) Option {
	return func(c *config) {
		if c.where == nil {
			c.where = make(map[string]any)
		}
		c.where[id.Name()] = p
	}
}
