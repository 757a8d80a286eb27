package session

import "sync"

// Store serializes dispatches against a single State and fans snapshots out
// to subscribers. Within one client, actions apply strictly in dispatch
// order.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
}

// NewStore returns a store holding the initial state.
func NewStore() *Store {
	return &Store{
		state:       NewState(),
		subscribers: make(map[chan State]struct{}),
	}
}

// Dispatch applies an action and returns the resulting snapshot.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	next := s.state
	for ch := range s.subscribers {
		select {
		case ch <- next:
		default:
			// Drop the stale snapshot so a slow subscriber never blocks
			// dispatch; the latest state is what matters.
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
	return next
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel receiving every post-dispatch snapshot,
// starting with the current one. The cancel func must be called to avoid a
// leak when the consumer's screen goes away.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.state
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
