package tdb

import (
	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/tdb/internal/options"
)

const (
	// DefaultInitialCapacity is the number of items a new Cursor holds.
	DefaultInitialCapacity = 1 << 16
	// DefaultMaxCapacity bounds Cursor growth.
	DefaultMaxCapacity = 1 << 30
)

type config struct {
	logger          log.Logger
	registerer      prometheus.Registerer
	skipIndex       bool
	sidecars        bool
	initialCapacity int
	maxCapacity     int
}

func defaultConfig() *config {
	return &config{
		logger:          log.NewNopLogger(),
		initialCapacity: DefaultInitialCapacity,
		maxCapacity:     DefaultMaxCapacity,
	}
}

// Option configures Open.
type Option = options.Option[*config]

// WithLogger sets the logger for open, close and degraded-mode messages.
// Decoding never logs.
func WithLogger(logger log.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRegisterer registers decode and lookup counters with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return options.NoError(func(c *config) {
		c.registerer = reg
	})
}

// WithoutIdentifierIndex ignores cookies.index and resolves identifiers by
// linear scan.
func WithoutIdentifierIndex() Option {
	return options.NoError(func(c *config) {
		c.skipIndex = true
	})
}

// WithCompressedFiles allows compressed sidecar files to stand in for
// missing plain files.
func WithCompressedFiles(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.sidecars = enabled
	})
}

// WithInitialCapacity sets the item capacity of new cursors.
func WithInitialCapacity(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return errors.Newf("tdb: initial capacity %d must be positive", n)
		}
		c.initialCapacity = n

		return nil
	})
}

// WithMaxCapacity sets the item capacity beyond which a cursor stops
// growing and fails with ErrBufferTooLarge.
func WithMaxCapacity(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return errors.Newf("tdb: max capacity %d must be positive", n)
		}
		c.maxCapacity = n

		return nil
	})
}
