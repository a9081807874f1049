package ustar

import (
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/meigma/ustar/internal/sizing"
)

// State is the iteration state of a Reader.
type State uint8

const (
	// StateActive means the Reader may yield more headers.
	StateActive State = iota

	// StateDone means the Reader reached an end-of-archive block.
	StateDone

	// StateFailed means the Reader stopped on a truncated or corrupt archive.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reader walks the header blocks of an archive held in memory.
//
// A Reader is a single-pass cursor. To iterate again, construct a new Reader
// over the same buffer. A Reader is not safe for concurrent use; distinct
// Readers may share a buffer because the buffer is never written.
type Reader struct {
	buf            []byte
	off            int64
	state          State
	err            error
	missingTrailer bool
	logger         *slog.Logger
}

// NewReader returns a Reader positioned at the start of buf.
//
// The buffer is retained by the Reader; callers must not modify it while
// iterating.
func NewReader(buf []byte, opts ...Option) *Reader {
	r := &Reader{buf: buf}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Next decodes the header at the current offset and advances past the
// entry's header block and padded data region.
//
// Next returns io.EOF once an all-zero block is reached. If the archive is
// truncated or a header is corrupt, Next returns the error and keeps
// returning it on later calls.
func (r *Reader) Next() (Header, error) {
	switch r.state {
	case StateDone:
		return Header{}, io.EOF
	case StateFailed:
		return Header{}, r.err
	}

	size := int64(len(r.buf))
	if r.missingTrailer && r.off == size {
		return Header{}, r.finish()
	}
	if end, ok := sizing.AddInt64(r.off, BlockSize); !ok || end > size {
		return Header{}, r.fail(&HeaderError{Offset: r.off, Err: ErrTruncated})
	}

	hdr, err := Decode(r.buf, r.off)
	if errors.Is(err, io.EOF) {
		return Header{}, r.finish()
	}
	if err != nil {
		return Header{}, r.fail(err)
	}

	next, ok := r.advance(hdr)
	if !ok {
		// Unrepresentable offsets lie past any buffer; the next step reports truncation.
		next = -1
	}
	r.log().Debug("decoded header",
		slog.String("name", hdr.Name),
		slog.Int64("offset", hdr.Offset),
		slog.Uint64("size", hdr.Size))
	r.off = next
	return hdr, nil
}

// advance returns the offset of the header that follows hdr.
func (r *Reader) advance(hdr Header) (int64, bool) {
	padded, ok := sizing.PadToBlock(hdr.Size, BlockSize)
	if !ok {
		return 0, false
	}
	span, err := sizing.ToInt64(padded, ErrSizeOverflow)
	if err != nil {
		return 0, false
	}
	next, ok := sizing.AddInt64(hdr.DataOffset(), span)
	if !ok {
		return 0, false
	}
	return next, true
}

func (r *Reader) finish() error {
	r.state = StateDone
	r.log().Debug("end of archive", slog.Int64("offset", r.off))
	return io.EOF
}

func (r *Reader) fail(err error) error {
	r.state = StateFailed
	r.err = err
	r.log().Warn("archive iteration failed", slog.Int64("offset", r.off), slog.Any("error", err))
	return err
}

// Offset returns the offset the next header will be decoded from.
func (r *Reader) Offset() int64 {
	return r.off
}

// State returns the iteration state.
func (r *Reader) State() State {
	return r.state
}

// Err returns the error that stopped iteration, or nil if the Reader is
// still active or ended on an end-of-archive block.
func (r *Reader) Err() error {
	return r.err
}

// All returns an iterator over the remaining headers.
//
// Iteration stops at the end of the archive or at the first failure; call Err
// afterwards to tell the two apart. Breaking out of the loop early leaves the
// Reader positioned after the last yielded header.
func (r *Reader) All() iter.Seq[Header] {
	return func(yield func(Header) bool) {
		for {
			hdr, err := r.Next()
			if err != nil {
				return
			}
			if !yield(hdr) {
				return
			}
		}
	}
}

// Headers decodes every header in buf.
//
// On failure it returns the headers decoded before the failing block along
// with the error.
func Headers(buf []byte, opts ...Option) ([]Header, error) {
	r := NewReader(buf, opts...)
	var hdrs []Header
	for hdr := range r.All() {
		hdrs = append(hdrs, hdr)
	}
	return hdrs, r.Err()
}
