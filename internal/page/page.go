// Package page implements the frame/reference-counting core of the buffer
// pool: the Page/Handle/Ref ownership triad, pluggable replacement
// strategies, and the two Page Manager variants (buffered, unlimited) that
// hand out frames to callers such as the file manager.
//
// The design splits ownership into two counts, per frame:
//
//   - handleCount tracks administrative owners (the Page kept by a Manager's
//     pool table, and the Handle kept by a caller such as the file manager).
//     Reaching zero frees the frame's bookkeeping.
//   - refCount tracks live content references (Ref values). Reaching zero is
//     the signal that the payload *may* be reclaimed; Page.TryInvalidate is
//     the operation that actually reclaims it.
//
// Go has no destructors, so where the original design relies on Drop to
// enforce the discipline, this package exposes explicit Release methods that
// callers must invoke on every exit path (see DESIGN.md).
package page

import (
	"sync"
	"sync/atomic"

	"github.com/ferrodb/ferrodb/internal/util"
)

type pageIDTag struct{}

// PageID is an opaque, globally unique, monotonically increasing integer
// minted by a process-wide counter.
type PageID = util.ID[pageIDTag]

var pageIDCounter = util.NewCounter[pageIDTag]()

// frame is the heap-allocated record shared by every Page, Handle, and Ref
// over the same logical page (ferrodb's PageInner).
type frame struct {
	handleCount atomic.Int64
	refCount    atomic.Int64

	mu      sync.RWMutex
	payload []byte // nil once invalidated
}

// Page is the administrative owner of a frame, held inside a Manager's pool
// table. It alone may attempt TryInvalidate.
type Page struct {
	id PageID
	f  *frame
}

// Handle is a weak administrative reference to a frame, held by the file
// manager's clean/dirty slots. It may attempt to Pin the frame back into a
// live Ref; pinning fails if the frame was already invalidated.
type Handle struct {
	id       PageID
	f        *frame
	strategy ReplacementStrategy
}

// Ref is a pinned, live view over a frame's payload. It keeps the payload
// alive and grants read/write access; cloning increments the frame's
// refCount.
type Ref struct {
	id       PageID
	f        *frame
	strategy ReplacementStrategy
}

// Allocate constructs a fresh frame around contents and returns the three
// ownership views over it. handleCount starts at 2 (the returned Page plus
// the returned Handle); refCount starts at 1 (the returned Ref).
func Allocate(contents []byte, strategy ReplacementStrategy) (*Page, *Handle, *Ref) {
	f := &frame{payload: contents}
	f.handleCount.Store(2)
	f.refCount.Store(1)

	id := pageIDCounter.Next()

	return &Page{id: id, f: f}, &Handle{id: id, f: f, strategy: strategy}, &Ref{id: id, f: f, strategy: strategy}
}

// AllocateWithSize is Allocate with a freshly zeroed buffer of size bytes.
func AllocateWithSize(size int, strategy ReplacementStrategy) (*Page, *Handle, *Ref) {
	return Allocate(make([]byte, size), strategy)
}

// ID returns the page identifier shared by every view over this frame.
func (p *Page) ID() PageID { return p.id }

// TryInvalidate attempts to reclaim the frame's payload. It fails with
// ErrStillPinned while any Ref is outstanding (refCount > 0). Once the last
// Ref has been released it extracts the payload; ErrAlreadyInvalidated means
// the payload was already taken by an earlier call, the only state
// payload==nil can mean.
func (p *Page) TryInvalidate() ([]byte, error) {
	// A refCount of 0 is terminal: Pin refuses it and Clone needs a live Ref,
	// so no new Ref can appear after this check.
	if p.f.refCount.Load() > 0 {
		return nil, ErrStillPinned
	}

	p.f.mu.Lock()
	defer p.f.mu.Unlock()

	if p.f.payload == nil {
		return nil, ErrAlreadyInvalidated
	}

	buf := p.f.payload
	p.f.payload = nil
	return buf, nil
}

// Release drops this Page's administrative ownership. Reaching a
// handleCount of zero while refCount is still nonzero is a fatal programming
// error: it means a Ref escaped its owning Handle/Page.
func (p *Page) Release() {
	releaseHandle(p.f)
}

// Release drops this Handle's administrative ownership. See Page.Release.
func (h *Handle) Release() {
	releaseHandle(h.f)
}

func releaseHandle(f *frame) {
	if f.handleCount.Add(-1) == 0 {
		if f.refCount.Load() > 0 {
			panic("page: handle_count reached zero while a Ref is still outstanding")
		}
	}
}

// Pin attempts to obtain a live Ref from this Handle. It fails with
// ErrPageInvalidated once the frame's refCount has dropped to zero: the
// payload has then been reclaimed, or may be reclaimed at any time.
func (h *Handle) Pin() (*Ref, error) {
	for {
		current := h.f.refCount.Load()
		if current == 0 {
			return nil, ErrPageInvalidated
		}
		if h.f.refCount.CompareAndSwap(current, current+1) {
			return &Ref{id: h.id, f: h.f, strategy: h.strategy}, nil
		}
	}
}

// ID returns the page identifier this Handle refers to.
func (h *Handle) ID() PageID { return h.id }

// ID returns the page identifier this Ref points at.
func (r *Ref) ID() PageID { return r.id }

// ReadGuard is a strictly scoped shared view of a frame's payload. Release
// must be called on every exit path.
type ReadGuard struct {
	mu   *sync.RWMutex
	data []byte
}

// Bytes exposes the underlying page contents for reading.
func (g *ReadGuard) Bytes() []byte { return g.data }

// Release unlocks the frame's payload lock.
func (g *ReadGuard) Release() { g.mu.RUnlock() }

// WriteGuard is a strictly scoped exclusive view of a frame's payload.
// Release must be called on every exit path.
type WriteGuard struct {
	mu   *sync.RWMutex
	data []byte
}

// Bytes exposes the underlying page contents for reading and writing.
func (g *WriteGuard) Bytes() []byte { return g.data }

// Release unlocks the frame's payload lock.
func (g *WriteGuard) Release() { g.mu.Unlock() }

// Read acquires a shared lock over the payload and notifies the replacement
// strategy of the access.
func (r *Ref) Read() *ReadGuard {
	r.f.mu.RLock()
	if r.strategy != nil {
		r.strategy.Read(r.id)
	}
	return &ReadGuard{mu: &r.f.mu, data: r.f.payload}
}

// Write acquires an exclusive lock over the payload and notifies the
// replacement strategy of the access.
func (r *Ref) Write() *WriteGuard {
	r.f.mu.Lock()
	if r.strategy != nil {
		r.strategy.Write(r.id)
	}
	return &WriteGuard{mu: &r.f.mu, data: r.f.payload}
}

// Clone returns a new Ref over the same frame, incrementing refCount. The
// frame cannot be invalidated while any clone is outstanding.
func (r *Ref) Clone() *Ref {
	r.f.refCount.Add(1)
	return &Ref{id: r.id, f: r.f, strategy: r.strategy}
}

// Release drops this Ref's content pin, decrementing refCount.
func (r *Ref) Release() {
	r.f.refCount.Add(-1)
}
