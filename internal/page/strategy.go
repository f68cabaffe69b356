package page

// ReplacementStrategy tracks the set of pages currently cached by a Manager
// and proposes eviction candidates subject to a caller-supplied veto. The
// veto performs the actual invalidation attempt; a strategy only proposes,
// it never invalidates a frame itself.
type ReplacementStrategy interface {
	// Allocate records that a page is now cached. Must be called exactly
	// once per new frame.
	Allocate(id PageID)

	// Read and Write are policy hooks signaling a logical content access
	// (not raw disk I/O during initial load).
	Read(id PageID)
	Write(id PageID)

	// Evict iterates candidates in policy order. For each candidate it
	// calls veto, which attempts a real invalidation and reports whether it
	// succeeded. The first accepted candidate is removed from the tracking
	// structure and returned. If every candidate is exhausted without one
	// being accepted, Evict fails with ErrNoPages.
	Evict(veto func(PageID) bool) (PageID, error)
}
