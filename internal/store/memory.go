package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"skytycoon/internal/models"
)

// MemStore keeps every entity in maps keyed by id.
type MemStore struct {
	mu           sync.RWMutex
	ids          IDAllocator
	snapshotPath string

	players      map[int64]models.Player
	aircraft     map[int64]models.Aircraft
	airports     map[int64]models.Airport
	routes       map[int64]models.Route
	flights      map[int64]models.Flight
	transactions map[int64]models.Transaction
}

type MemOption func(*MemStore)

// WithIDAllocator replaces the default sequential allocator.
func WithIDAllocator(ids IDAllocator) MemOption {
	return func(s *MemStore) {
		s.ids = ids
	}
}

// WithSnapshotPath enables Snapshot and LoadSnapshot.
func WithSnapshotPath(path string) MemOption {
	return func(s *MemStore) {
		s.snapshotPath = path
	}
}

func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		ids:          NewSequentialIDs(),
		players:      make(map[int64]models.Player),
		aircraft:     make(map[int64]models.Aircraft),
		airports:     make(map[int64]models.Airport),
		routes:       make(map[int64]models.Route),
		flights:      make(map[int64]models.Flight),
		transactions: make(map[int64]models.Transaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) GetPlayer(_ context.Context, id int64) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return models.Player{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) GetPlayerByUsername(_ context.Context, username string) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.Username == username {
			return p, nil
		}
	}
	return models.Player{}, ErrNotFound
}

func (s *MemStore) CreatePlayer(_ context.Context, p models.Player) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.players {
		if existing.Username == p.Username {
			return models.Player{}, ErrConflict
		}
	}
	p.ID = s.ids.Next(EntityPlayer)
	s.players[p.ID] = p
	return p, nil
}

func (s *MemStore) UpdatePlayer(_ context.Context, p models.Player) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; !ok {
		return models.Player{}, ErrNotFound
	}
	s.players[p.ID] = p
	return p, nil
}

func (s *MemStore) GetAircraft(_ context.Context, id int64) (models.Aircraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.aircraft[id]
	if !ok {
		return models.Aircraft{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) ListAircraftByPlayer(_ context.Context, playerID int64) ([]models.Aircraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.aircraft, func(a models.Aircraft) bool { return a.PlayerID == playerID }), nil
}

func (s *MemStore) CreateAircraft(_ context.Context, a models.Aircraft) (models.Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.ids.Next(EntityAircraft)
	s.aircraft[a.ID] = a
	return a, nil
}

func (s *MemStore) UpdateAircraft(_ context.Context, a models.Aircraft) (models.Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.aircraft[a.ID]; !ok {
		return models.Aircraft{}, ErrNotFound
	}
	s.aircraft[a.ID] = a
	return a, nil
}

func (s *MemStore) GetAirport(_ context.Context, id int64) (models.Airport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.airports[id]
	if !ok {
		return models.Airport{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) GetAirportByCode(_ context.Context, code string) (models.Airport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.airports {
		if a.Code == code {
			return a, nil
		}
	}
	return models.Airport{}, ErrNotFound
}

func (s *MemStore) ListAirports(_ context.Context) ([]models.Airport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.airports, func(models.Airport) bool { return true }), nil
}

func (s *MemStore) CreateAirport(_ context.Context, a models.Airport) (models.Airport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.airports {
		if existing.Code == a.Code {
			return models.Airport{}, ErrConflict
		}
	}
	a.ID = s.ids.Next(EntityAirport)
	s.airports[a.ID] = a
	return a, nil
}

func (s *MemStore) GetRoute(_ context.Context, id int64) (models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return models.Route{}, ErrNotFound
	}
	return r, nil
}

func (s *MemStore) ListRoutesByPlayer(_ context.Context, playerID int64) ([]models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.routes, func(r models.Route) bool { return r.PlayerID == playerID }), nil
}

func (s *MemStore) GetRouteByOriginDestination(_ context.Context, playerID int64, origin, destination string) (models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.routes {
		if r.PlayerID == playerID && r.OriginCode == origin && r.DestinationCode == destination {
			return r, nil
		}
	}
	return models.Route{}, ErrNotFound
}

func (s *MemStore) CreateRoute(_ context.Context, r models.Route) (models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.routes {
		if existing.PlayerID == r.PlayerID && existing.OriginCode == r.OriginCode && existing.DestinationCode == r.DestinationCode {
			return models.Route{}, ErrConflict
		}
	}
	r.ID = s.ids.Next(EntityRoute)
	s.routes[r.ID] = r
	return r, nil
}

func (s *MemStore) GetFlight(_ context.Context, id int64) (models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[id]
	if !ok {
		return models.Flight{}, ErrNotFound
	}
	return f, nil
}

func (s *MemStore) ListFlightsByPlayer(_ context.Context, playerID int64) ([]models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.flights, func(f models.Flight) bool { return f.PlayerID == playerID }), nil
}

func (s *MemStore) ListUpcomingFlightsByPlayer(_ context.Context, playerID int64, since models.Date) ([]models.Flight, error) {
	s.mu.RLock()
	out := collect(s.flights, func(f models.Flight) bool {
		return f.PlayerID == playerID && !f.DepartureDate.Before(since.Time) && !f.Status.Terminal()
	})
	s.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b models.Flight) int {
		return a.DepartsAt().Compare(b.DepartsAt())
	})
	return out, nil
}

func (s *MemStore) CreateFlight(_ context.Context, f models.Flight) (models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.ids.Next(EntityFlight)
	s.flights[f.ID] = f
	return f, nil
}

func (s *MemStore) UpdateFlight(_ context.Context, f models.Flight) (models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flights[f.ID]; !ok {
		return models.Flight{}, ErrNotFound
	}
	s.flights[f.ID] = f
	return f, nil
}

func (s *MemStore) GetTransaction(_ context.Context, id int64) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) ListTransactionsByPlayer(_ context.Context, playerID int64) ([]models.Transaction, error) {
	s.mu.RLock()
	out := collect(s.transactions, func(t models.Transaction) bool { return t.PlayerID == playerID })
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b models.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MemStore) CreateTransaction(_ context.Context, t models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.ids.Next(EntityTransaction)
	s.transactions[t.ID] = t
	return t, nil
}

// collect returns the matching values ordered by map key. Callers hold the lock.
func collect[T any](m map[int64]T, keep func(T) bool) []T {
	keys := make([]int64, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, id := range keys {
		if v := m[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}
