package ustar

import "log/slog"

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets a logger for the Reader.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithMissingTrailer controls whether a buffer that ends exactly on a block
// boundary, without an end-of-archive block, ends iteration cleanly.
//
// By default such a buffer reports ErrTruncated.
func WithMissingTrailer(allowed bool) Option {
	return func(r *Reader) {
		r.missingTrailer = allowed
	}
}
