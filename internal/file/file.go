// Package file implements the file manager: a per-(file,page) cache sitting
// on top of the page package's global Manager, responsible for loading pages
// from disk, keeping at most one evictable clean copy and one always-pinned
// dirty copy per slot, and flushing dirty bytes back out on demand.
package file

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ferrodb/ferrodb/internal/page"
	"github.com/ferrodb/ferrodb/internal/util"
)

var (
	// ErrUnknownFile is returned when an operation names a FileID that was
	// never produced by Manager.FileID.
	ErrUnknownFile = errors.New("file: unknown file id")
)

type fileIDTag struct{}

// FileID is an opaque identifier interned from a file's path.
type FileID = util.ID[fileIDTag]

type entryKey struct {
	file FileID
	pg   uint64
}

// Ref wraps a page.Ref with a writable bit: true for a Ref obtained through
// Dirty, false for one obtained through Clean. The bit is only reported by
// Writable; Write is not blocked on a Ref obtained through Clean, and bytes
// written through one are never written back by Sync.
type Ref struct {
	*page.Ref
	writable bool
}

// Writable reports whether this Ref was obtained for writing.
func (r *Ref) Writable() bool { return r.writable }

// entry tracks the clean and dirty slots for one (file, page) pair.
type entry struct {
	mu    sync.Mutex
	clean *page.Handle // evictable, reloaded from disk on demand
	dirty struct {
		h *page.Handle
		r *page.Ref // always pinned while dirty is non-nil
	}
}

// Manager is the file manager: it interns file names to FileIDs, opens and
// holds os.File handles, and serves page-sized reads/writes backed by the
// process-wide page.Manager.
//
// Locks are taken in a fixed order to avoid deadlocks: idsMu before filesMu
// (FileID), and a per-entry mutex before filesMu (Clean, Dirty and Sync).
// filesMu guards both files and paths; entriesMu is only ever held on its
// own, inside entryFor.
type Manager struct {
	pageSize int
	workdir  string

	idsMu  sync.Mutex
	nextID util.Counter[fileIDTag]
	ids    map[string]FileID // path -> id

	filesMu sync.Mutex
	files   map[FileID]*os.File
	paths   map[FileID]string

	entriesMu sync.Mutex
	entries   map[entryKey]*entry
}

// NewManager constructs a Manager rooted at workdir, serving pageSize-byte
// pages.
func NewManager(workdir string, pageSize int) *Manager {
	return &Manager{
		pageSize: pageSize,
		workdir:  workdir,
		ids:      make(map[string]FileID),
		files:    make(map[FileID]*os.File),
		paths:    make(map[FileID]string),
		entries:  make(map[entryKey]*entry),
	}
}

// FileID interns name (relative to the manager's workdir) and returns its
// FileID, opening the backing file (creating it if absent) the first time
// name is seen.
func (m *Manager) FileID(name string) (FileID, error) {
	m.idsMu.Lock()
	defer m.idsMu.Unlock()

	if id, ok := m.ids[name]; ok {
		return id, nil
	}

	path := filepath.Join(m.workdir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, err
	}

	id := m.nextID.Next()

	m.filesMu.Lock()
	m.files[id] = f
	m.paths[id] = path
	m.filesMu.Unlock()

	m.ids[name] = id
	return id, nil
}

func (m *Manager) entryFor(file FileID, pg uint64) *entry {
	m.entriesMu.Lock()
	defer m.entriesMu.Unlock()

	key := entryKey{file: file, pg: pg}
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	return e
}

func (m *Manager) osFile(id FileID) (*os.File, error) {
	m.filesMu.Lock()
	defer m.filesMu.Unlock()

	f, ok := m.files[id]
	if !ok {
		return nil, ErrUnknownFile
	}
	return f, nil
}

// readToPage allocates a fresh page-sized frame from the global page.Manager
// and fills it from disk, zero-filling any bytes past EOF.
func (m *Manager) readToPage(id FileID, pg uint64) (*page.Handle, *page.Ref, error) {
	f, err := m.osFile(id)
	if err != nil {
		return nil, nil, err
	}

	h, r, err := page.AllocatePage()
	if err != nil {
		return nil, nil, err
	}

	wg := r.Write()
	n, err := f.ReadAt(wg.Bytes(), int64(pg)*int64(m.pageSize))
	if err != nil && !errors.Is(err, io.EOF) {
		wg.Release()
		r.Release()
		h.Release()
		return nil, nil, err
	}
	for i := n; i < len(wg.Bytes()); i++ {
		wg.Bytes()[i] = 0
	}
	wg.Release()

	return h, r, nil
}

// Clean returns a read-oriented Ref over (file, pg), loading it from disk on
// first access and reusing the cached clean frame while it can still be
// pinned; once every Ref to that frame has been released, the next call
// reloads it from disk. The returned Ref is always pinned; release it with
// Ref.Release when done.
func (m *Manager) Clean(file FileID, pg uint64) (*Ref, error) {
	e := m.entryFor(file, pg)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.clean != nil {
		if r, err := e.clean.Pin(); err == nil {
			return &Ref{Ref: r, writable: false}, nil
		}
		// Every Ref to the frame was released (it may since have been
		// evicted); fall through to reload.
		e.clean.Release()
		e.clean = nil
	}

	h, r, err := m.readToPage(file, pg)
	if err != nil {
		return nil, err
	}
	e.clean = h

	return &Ref{Ref: r, writable: false}, nil
}

// Dirty returns a write-oriented Ref over (file, pg). Unlike Clean, the
// underlying Handle is never released until Sync writes it back, so it can
// never be evicted while dirty.
func (m *Manager) Dirty(file FileID, pg uint64) (*Ref, error) {
	e := m.entryFor(file, pg)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dirty.h != nil {
		return &Ref{Ref: e.dirty.r.Clone(), writable: true}, nil
	}

	h, r, err := m.readToPage(file, pg)
	if err != nil {
		return nil, err
	}

	e.dirty.h = h
	e.dirty.r = r

	return &Ref{Ref: r.Clone(), writable: true}, nil
}

// Sync writes the dirty slot's bytes (if any) for (file, pg) back to disk,
// then releases the dirty pin and reconciles the clean slot to see the same
// frame.
func (m *Manager) Sync(file FileID, pg uint64) error {
	e := m.entryFor(file, pg)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dirty.h == nil {
		return nil
	}

	f, err := m.osFile(file)
	if err != nil {
		return err
	}

	rg := e.dirty.r.Read()
	_, err = f.WriteAt(rg.Bytes(), int64(pg)*int64(m.pageSize))
	rg.Release()
	if err != nil {
		return err
	}

	if e.clean != nil {
		e.clean.Release()
	}
	e.clean = e.dirty.h
	e.dirty.r.Release()
	e.dirty.h = nil
	e.dirty.r = nil

	return nil
}
