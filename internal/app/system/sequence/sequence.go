// internal/app/system/sequence/sequence.go
package sequence

import (
	"sync"
	"time"
)

// Token identifies one list fetch issued for a client. Tokens for the same
// client increase monotonically.
type Token uint64

// Sequencer hands out per-client fetch tokens so that a slow, older list
// response can be recognized and dropped instead of overwriting a newer one.
// It is safe for concurrent use.
type Sequencer struct {
	mu      sync.Mutex
	clients map[string]*entry
	idle    time.Duration
	now     func() time.Time
}

type entry struct {
	latest   Token
	lastSeen time.Time
}

// New creates a Sequencer. Clients with no activity for idle are forgotten
// by Sweep.
func New(idle time.Duration) *Sequencer {
	return &Sequencer{
		clients: make(map[string]*entry),
		idle:    idle,
		now:     time.Now,
	}
}

// Begin issues the next token for key.
func (s *Sequencer) Begin(key string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.clients[key]
	if !ok {
		e = &entry{}
		s.clients[key] = e
	}
	e.latest++
	e.lastSeen = s.now()
	return e.latest
}

// IsLatest reports whether tok is still the most recent token issued for
// key. An unknown key (for example after Sweep) counts as latest.
func (s *Sequencer) IsLatest(key string, tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.clients[key]
	if !ok {
		return true
	}
	return e.latest == tok
}

// Len returns the number of tracked clients.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Sweep forgets clients idle longer than the configured duration and
// returns how many were removed.
func (s *Sequencer) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idle)
	removed := 0
	for key, e := range s.clients {
		if e.lastSeen.Before(cutoff) {
			delete(s.clients, key)
			removed++
		}
	}
	return removed
}
