// Package ledger remembers which movie ids a previous run already wrote, so a
// re-run of the same file can skip them without a database round trip.
package ledger

import "strconv"

// EvictCallback is called when an id is evicted from the ledger.
// Only the memory provider reports evictions; Redis expires the whole set.
type EvictCallback func(id int64)

// Ledger records the ids of links that were written successfully.
type Ledger interface {
	// Seen reports whether id was marked by this or an earlier run.
	Seen(id int64) bool

	// Mark records id as written.
	Mark(id int64)

	// Len returns the number of ids currently remembered.
	Len() int

	// Close releases any resources held by the ledger.
	Close() error
}

func member(id int64) string {
	return strconv.FormatInt(id, 10)
}
