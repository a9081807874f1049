package index

import "github.com/opencontainers/go-digest"

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	archiveSize   int64
	archiveDigest digest.Digest
}

// WithArchiveSize records the byte length of the indexed archive.
func WithArchiveSize(n int64) Option {
	return func(c *buildConfig) {
		c.archiveSize = n
	}
}

// WithArchiveDigest records the digest of the indexed archive so a reader of
// the index can check it still describes the same bytes.
func WithArchiveDigest(d digest.Digest) Option {
	return func(c *buildConfig) {
		c.archiveDigest = d
	}
}
