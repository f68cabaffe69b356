package page

import (
	"container/list"
	"sync"
)

// FIFOStrategy evicts the longest-resident page first. Reads and writes do
// not affect ordering.
type FIFOStrategy struct {
	mu    sync.Mutex
	order *list.List
}

// NewFIFOStrategy constructs a FIFOStrategy. limit is an optional sizing
// hint; the queue grows as needed regardless.
func NewFIFOStrategy(limit int) *FIFOStrategy {
	return &FIFOStrategy{
		order: list.New(),
	}
}

func (s *FIFOStrategy) Allocate(id PageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order.PushBack(id)
}

func (*FIFOStrategy) Read(PageID)  {}
func (*FIFOStrategy) Write(PageID) {}

func (s *FIFOStrategy) Evict(veto func(PageID) bool) (PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for e := s.order.Front(); e != nil; e = e.Next() {
		id := e.Value.(PageID)
		if veto(id) {
			s.order.Remove(e)
			return id, nil
		}
	}

	return 0, ErrNoPages
}
