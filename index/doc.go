//go:generate flatc --go --go-namespace fb -o ../internal ../schema/index.fbs

// Package index stores decoded USTAR headers in a FlatBuffers lookup index.
//
// The index records, for every entry of an archive, its header fields and the
// offset of its header block. Entries are sorted by name, enabling O(log n)
// lookups and prefix scans without rescanning the archive. When an archive
// holds several entries with the same name, the last one wins, matching how
// tar extraction overwrites earlier members.
package index
