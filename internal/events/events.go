// Package events records what happened in each player's game and forwards
// it to an optional publisher.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skytycoon/internal/models"
)

type Kind string

const (
	PlayerCreated     Kind = "player.created"
	AircraftPurchased Kind = "aircraft.purchased"
	RouteOpened       Kind = "route.opened"
	FlightScheduled   Kind = "flight.scheduled"
	FlightCancelled   Kind = "flight.cancelled"
	FlightCompleted   Kind = "flight.completed"
	DayAdvanced       Kind = "day.advanced"
	TransactionPosted Kind = "transaction.posted"
	GameSaved         Kind = "game.saved"
)

// maxEvents is how many recent events are kept per player.
const maxEvents = 20

type Event struct {
	PlayerID int64       `json:"playerId"`
	Kind     Kind        `json:"kind"`
	Message  string      `json:"message"`
	GameDate models.Date `json:"gameDate"`
	At       time.Time   `json:"at"`
}

// Publisher ships events out of the process.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Log keeps the most recent events per player in memory.
type Log struct {
	mu       sync.Mutex
	byPlayer map[int64][]Event
	pub      Publisher
}

// NewLog returns a Log that forwards every event to pub. pub may be nil.
func NewLog(pub Publisher) *Log {
	return &Log{byPlayer: make(map[int64][]Event), pub: pub}
}

// Record stores e and publishes it. Publish failures are logged, not returned.
func (l *Log) Record(ctx context.Context, e Event) {
	if e.Message == "" {
		return
	}
	l.mu.Lock()
	list := append(l.byPlayer[e.PlayerID], e)
	if len(list) > maxEvents {
		list = list[len(list)-maxEvents:]
	}
	l.byPlayer[e.PlayerID] = list
	l.mu.Unlock()

	if l.pub == nil {
		return
	}
	if err := l.pub.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event",
			"component", "events",
			"kind", e.Kind,
			"player_id", e.PlayerID,
			"error", err,
		)
	}
}

// Recent returns the player's events, oldest first.
func (l *Log) Recent(playerID int64) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.byPlayer[playerID]))
	copy(out, l.byPlayer[playerID])
	return out
}
