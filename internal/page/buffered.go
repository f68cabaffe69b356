package page

import "sync"

// BufferedManager is a Manager bounded to at most limit live pages. When
// full, Allocate asks its strategy to propose a victim; the proposal is
// vetoed by actually attempting Page.TryInvalidate on the candidate, so a
// page that still has a live Ref is skipped.
type BufferedManager struct {
	mu       sync.Mutex
	pages    map[PageID]*Page
	strategy ReplacementStrategy
	limit    int
	pageSize int
}

// NewBuffered constructs a BufferedManager holding at most limit pages of
// pageSize bytes each, reclaiming frames via strategy.
func NewBuffered(pageSize, limit int, strategy ReplacementStrategy) *BufferedManager {
	return &BufferedManager{
		pages:    make(map[PageID]*Page, limit),
		strategy: strategy,
		limit:    limit,
		pageSize: pageSize,
	}
}

// Allocate yields a fresh (Handle, Ref) pair. If the pool is below limit it
// grows; otherwise it asks the strategy to propose and veto a victim,
// recycling the victim's buffer for the new page. ErrNoPages propagates if
// every tracked page is pinned.
func (m *BufferedManager) Allocate() (*Handle, *Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pages) < m.limit {
		p, h, r := AllocateWithSize(m.pageSize, m.strategy)
		m.pages[p.ID()] = p
		m.strategy.Allocate(p.ID())
		return h, r, nil
	}

	var reclaimed []byte

	victimID, err := m.strategy.Evict(func(id PageID) bool {
		victim, ok := m.pages[id]
		if !ok {
			return false
		}
		buf, verr := victim.TryInvalidate()
		if verr != nil {
			return false
		}
		reclaimed = buf
		return true
	})
	if err != nil {
		return nil, nil, err
	}

	victim := m.pages[victimID]
	victim.Release()
	delete(m.pages, victimID)

	p, h, r := Allocate(reclaimed, m.strategy)
	m.pages[p.ID()] = p
	m.strategy.Allocate(p.ID())
	return h, r, nil
}

// Stats summarizes current occupancy, exposed over the stats side channel.
type Stats struct {
	Capacity int `json:"capacity"`
	InUse    int `json:"in_use"`
}

// Stats reports this manager's current occupancy.
func (m *BufferedManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{Capacity: m.limit, InUse: len(m.pages)}
}
