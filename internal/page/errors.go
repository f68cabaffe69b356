package page

import "errors"

var (
	// ErrNoPages is returned by a Manager's Allocate, or a ReplacementStrategy's
	// Evict, when every tracked page is pinned and no victim can be produced.
	// It is retryable: the caller should wait for pins to drop and try again.
	ErrNoPages = errors.New("page: no pages available for eviction")

	// ErrPageInvalidated is returned by Handle.Pin once every Ref to the
	// frame has been released, after which its payload has been or may at any
	// time be reclaimed. The caller must reload the page from its backing
	// store.
	ErrPageInvalidated = errors.New("page: page has been invalidated, must be reloaded")

	// ErrStillPinned is returned by Page.TryInvalidate when the frame still
	// has a live reference. It is consumed internally by the
	// eviction loop and never surfaced past a ReplacementStrategy.
	ErrStillPinned = errors.New("page: page is still pinned, cannot invalidate")

	// ErrAlreadyInvalidated is returned by Page.TryInvalidate when the frame
	// has already been reclaimed once. Like ErrStillPinned, it is consumed
	// internally.
	ErrAlreadyInvalidated = errors.New("page: page is already invalidated")

	// ErrNotInstalled is returned by Allocate when no global Manager has
	// been installed yet. Seeing it means the process started a File
	// Manager operation before calling page.Install during startup.
	ErrNotInstalled = errors.New("page: global page manager not installed")
)
