// Package store defines the persistence collaborator used by the game engine
// and an in-memory implementation of it.
package store

import (
	"context"
	"errors"
	"sync"

	"skytycoon/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("record already exists")
)

// Store is CRUD access to every game entity plus the secondary-key lookups
// the engine needs. Implementations must be safe for concurrent use.
type Store interface {
	GetPlayer(ctx context.Context, id int64) (models.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (models.Player, error)
	CreatePlayer(ctx context.Context, p models.Player) (models.Player, error)
	UpdatePlayer(ctx context.Context, p models.Player) (models.Player, error)

	GetAircraft(ctx context.Context, id int64) (models.Aircraft, error)
	ListAircraftByPlayer(ctx context.Context, playerID int64) ([]models.Aircraft, error)
	CreateAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error)
	UpdateAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error)

	GetAirport(ctx context.Context, id int64) (models.Airport, error)
	GetAirportByCode(ctx context.Context, code string) (models.Airport, error)
	ListAirports(ctx context.Context) ([]models.Airport, error)
	CreateAirport(ctx context.Context, a models.Airport) (models.Airport, error)

	GetRoute(ctx context.Context, id int64) (models.Route, error)
	ListRoutesByPlayer(ctx context.Context, playerID int64) ([]models.Route, error)
	GetRouteByOriginDestination(ctx context.Context, playerID int64, origin, destination string) (models.Route, error)
	CreateRoute(ctx context.Context, r models.Route) (models.Route, error)

	GetFlight(ctx context.Context, id int64) (models.Flight, error)
	ListFlightsByPlayer(ctx context.Context, playerID int64) ([]models.Flight, error)
	// ListUpcomingFlightsByPlayer returns flights departing on or after since
	// that are neither completed nor cancelled, earliest departure first.
	ListUpcomingFlightsByPlayer(ctx context.Context, playerID int64, since models.Date) ([]models.Flight, error)
	CreateFlight(ctx context.Context, f models.Flight) (models.Flight, error)
	UpdateFlight(ctx context.Context, f models.Flight) (models.Flight, error)

	GetTransaction(ctx context.Context, id int64) (models.Transaction, error)
	// ListTransactionsByPlayer returns the ledger newest first.
	ListTransactionsByPlayer(ctx context.Context, playerID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
}

// Snapshotter is implemented by stores that can persist their full contents
// on demand.
type Snapshotter interface {
	Snapshot(ctx context.Context) error
}

// Entity names an id sequence.
type Entity string

const (
	EntityPlayer      Entity = "player"
	EntityAircraft    Entity = "aircraft"
	EntityAirport     Entity = "airport"
	EntityRoute       Entity = "route"
	EntityFlight      Entity = "flight"
	EntityTransaction Entity = "transaction"
)

// IDAllocator hands out ids for new records.
type IDAllocator interface {
	Next(entity Entity) int64
}

// SequentialIDs allocates 1, 2, 3... independently per entity.
type SequentialIDs struct {
	mu   sync.Mutex
	last map[Entity]int64
}

func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{last: make(map[Entity]int64)}
}

func (s *SequentialIDs) Next(entity Entity) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[entity]++
	return s.last[entity]
}

// Observe records an id that already exists so later allocations skip past it.
func (s *SequentialIDs) Observe(entity Entity, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last[entity] {
		s.last[entity] = id
	}
}
