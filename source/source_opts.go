package source

import "log/slog"

// Option configures Load and Read.
type Option func(*config)

type config struct {
	maxSize          uint64
	maxDecoderMemory uint64
	logger           *slog.Logger
}

func newConfig(opts []Option) *config {
	c := &config{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithMaxSize limits the decompressed archive size (default: DefaultMaxSize).
func WithMaxSize(limit uint64) Option {
	return func(c *config) {
		c.maxSize = limit
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.maxDecoderMemory = limit
	}
}

// WithLogger sets a logger.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
