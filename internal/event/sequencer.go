package event

import (
	"context"
	"sync"
)

// Sequencer runs work in ticket order. Tickets start at 1 and every ticket
// must be passed to Do exactly once; a ticket whose caller gave up is
// skipped so later tickets still run.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	waiters map[uint64]chan struct{}
	skipped map[uint64]struct{}
}

// NewSequencer creates a sequencer whose first ticket is 1.
func NewSequencer() *Sequencer {
	return &Sequencer{
		next:    1,
		waiters: make(map[uint64]chan struct{}),
		skipped: make(map[uint64]struct{}),
	}
}

// Do waits until every ticket below seq has finished, then runs fn.
// If ctx ends first, fn is not run, the ticket is released and ctx.Err()
// is returned.
func (s *Sequencer) Do(ctx context.Context, seq uint64, fn func()) error {
	s.mu.Lock()
	if seq == s.next {
		s.mu.Unlock()
		fn()
		s.advance()
		return nil
	}
	turn := make(chan struct{})
	s.waiters[seq] = turn
	s.mu.Unlock()

	select {
	case <-turn:
		fn()
		s.advance()
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	if _, waiting := s.waiters[seq]; waiting {
		delete(s.waiters, seq)
		s.skipped[seq] = struct{}{}
		s.mu.Unlock()
		return ctx.Err()
	}
	s.mu.Unlock()

	// The turn was granted while we were giving up; pass it on.
	s.advance()
	return ctx.Err()
}

// advance finishes the current ticket and wakes the next runnable one.
func (s *Sequencer) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	for {
		if _, ok := s.skipped[s.next]; ok {
			delete(s.skipped, s.next)
			s.next++
			continue
		}
		if turn, ok := s.waiters[s.next]; ok {
			delete(s.waiters, s.next)
			close(turn)
		}
		return
	}
}

// Next returns the ticket that runs next.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
