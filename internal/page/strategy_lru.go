package page

import (
	"container/list"
	"sync"
)

// LRUStrategy evicts the least-recently-accessed page first. Read and Write
// both refresh a page's position; raw disk I/O during initial load is not
// reported through this path, so ordering reflects logical use, not load.
type LRUStrategy struct {
	mu       sync.Mutex
	order    *list.List // front = least recently used, back = most recent
	elements map[PageID]*list.Element
}

// NewLRUStrategy constructs an LRUStrategy. limit is an optional sizing
// hint.
func NewLRUStrategy(limit int) *LRUStrategy {
	return &LRUStrategy{
		order:    list.New(),
		elements: make(map[PageID]*list.Element, limit),
	}
}

func (s *LRUStrategy) Allocate(id PageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elements[id] = s.order.PushBack(id)
}

func (s *LRUStrategy) Read(id PageID)  { s.touch(id) }
func (s *LRUStrategy) Write(id PageID) { s.touch(id) }

func (s *LRUStrategy) touch(id PageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.elements[id]; ok {
		s.order.MoveToBack(e)
	}
}

func (s *LRUStrategy) Evict(veto func(PageID) bool) (PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for e := s.order.Front(); e != nil; e = e.Next() {
		id := e.Value.(PageID)
		if veto(id) {
			s.order.Remove(e)
			delete(s.elements, id)
			return id, nil
		}
	}

	return 0, ErrNoPages
}
