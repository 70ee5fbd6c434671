package holds

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps holds in process memory. A restart releases every hold.
// The number of entries is bounded by maxEntries; inserting into a full store
// first drops expired entries.
type MemoryStore struct {
	mu         sync.Mutex
	holds      map[uuid.UUID]Hold
	maxEntries int
	newToken   func() string
}

// NewMemoryStore creates a store holding at most maxEntries holds.
// maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		holds:      make(map[uuid.UUID]Hold),
		maxEntries: maxEntries,
		newToken:   newToken,
	}
}

func (s *MemoryStore) TryHold(ctx context.Context, seatID, holderID uuid.UUID, now time.Time, ttl time.Duration) (*Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.holds[seatID]; ok {
		if existing.Live(now) {
			return nil, ErrAlreadyHeld
		}
		delete(s.holds, seatID)
	}

	if s.maxEntries > 0 && len(s.holds) >= s.maxEntries {
		s.evictExpiredLocked(now)
		if len(s.holds) >= s.maxEntries {
			return nil, ErrStoreFull
		}
	}

	hold := Hold{
		SeatID:    seatID,
		HolderID:  holderID,
		Token:     s.newToken(),
		ExpiresAt: now.Add(ttl),
	}
	s.holds[seatID] = hold
	return &hold, nil
}

func (s *MemoryStore) Get(ctx context.Context, seatID uuid.UUID, now time.Time) (*Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold, ok := s.liveLocked(seatID, now)
	if !ok {
		return nil, ErrHoldNotFound
	}
	return &hold, nil
}

func (s *MemoryStore) IsHeld(ctx context.Context, seatID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.liveLocked(seatID, now)
	return ok, nil
}

func (s *MemoryStore) HeldAmong(ctx context.Context, seatIDs []uuid.UUID, now time.Time) (map[uuid.UUID]Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := make(map[uuid.UUID]Hold)
	for _, id := range seatIDs {
		if hold, ok := s.liveLocked(id, now); ok {
			held[id] = hold
		}
	}
	return held, nil
}

func (s *MemoryStore) Release(ctx context.Context, seatID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holds, seatID)
	return nil
}

func (s *MemoryStore) ReleaseOwned(ctx context.Context, seatID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold, ok := s.holds[seatID]
	if !ok {
		return ErrHoldNotFound
	}
	if hold.Token != token {
		return ErrTokenMismatch
	}
	delete(s.holds, seatID)
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.evictExpiredLocked(now), nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.holds)
}

// liveLocked returns the live hold for seatID, evicting a stale entry.
// The caller must hold s.mu.
func (s *MemoryStore) liveLocked(seatID uuid.UUID, now time.Time) (Hold, bool) {
	hold, ok := s.holds[seatID]
	if !ok {
		return Hold{}, false
	}
	if !hold.Live(now) {
		delete(s.holds, seatID)
		return Hold{}, false
	}
	return hold, true
}

func (s *MemoryStore) evictExpiredLocked(now time.Time) int {
	removed := 0
	for id, hold := range s.holds {
		if !hold.Live(now) {
			delete(s.holds, id)
			removed++
		}
	}
	return removed
}
