package page

import (
	"math/rand"
	"sync"
)

// RandomStrategy proposes eviction candidates in uniformly random order,
// without replacement within a single Evict call: a candidate skipped by the
// veto is not retried until the next Evict call.
//
// No example repo in the pack vendors a non-stdlib PRNG suited to this
// use (the Rust original reaches for the `rand` crate, which has no
// established Go ecosystem counterpart used anywhere in the pack); math/rand
// is the idiomatic stdlib choice here since nothing security-sensitive is at
// stake (see DESIGN.md).
type RandomStrategy struct {
	mu    sync.Mutex
	pages []PageID
	rng   *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy. limit is an optional
// sizing hint.
func NewRandomStrategy(limit int) *RandomStrategy {
	return &RandomStrategy{
		pages: make([]PageID, 0, limit),
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
}

func (s *RandomStrategy) Allocate(id PageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = append(s.pages, id)
}

func (*RandomStrategy) Read(PageID)  {}
func (*RandomStrategy) Write(PageID) {}

// Evict picks candidates uniformly at random from the remaining untried
// pool, without replacement, swapping tried-and-skipped candidates to the
// front so the "rest" shrinks each iteration (mirroring the original's
// swap-and-shrink scan).
func (s *RandomStrategy) Evict(veto func(PageID) bool) (PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped := 0
	rest := s.pages

	for len(rest) > 0 {
		idx := s.rng.Intn(len(rest))
		candidate := rest[idx]

		if veto(candidate) {
			s.pages = append(s.pages[:skipped+idx], s.pages[skipped+idx+1:]...)
			return candidate, nil
		}

		skipped++
		rest[0], rest[idx] = rest[idx], rest[0]
		rest = rest[1:]
	}

	return 0, ErrNoPages
}
