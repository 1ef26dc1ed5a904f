package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"skytycoon/internal/models"
)

// snapshotPlayer carries the password hash, which the API shape hides.
type snapshotPlayer struct {
	models.Player
	PasswordHash string `json:"passwordHash,omitempty"`
}

type snapshot struct {
	Players      []snapshotPlayer     `json:"players"`
	Aircraft     []models.Aircraft    `json:"aircraft"`
	Airports     []models.Airport     `json:"airports"`
	Routes       []models.Route       `json:"routes"`
	Flights      []models.Flight      `json:"flights"`
	Transactions []models.Transaction `json:"transactions"`
}

type idObserver interface {
	Observe(entity Entity, id int64)
}

// Snapshot writes the full store to the configured path. Without a path it
// is a no-op.
func (s *MemStore) Snapshot(_ context.Context) error {
	if s.snapshotPath == "" {
		return nil
	}
	s.mu.RLock()
	var snap snapshot
	for _, p := range collect(s.players, keepAll[models.Player]) {
		snap.Players = append(snap.Players, snapshotPlayer{Player: p, PasswordHash: p.PasswordHash})
	}
	snap.Aircraft = collect(s.aircraft, keepAll[models.Aircraft])
	snap.Airports = collect(s.airports, keepAll[models.Airport])
	snap.Routes = collect(s.routes, keepAll[models.Route])
	snap.Flights = collect(s.flights, keepAll[models.Flight])
	snap.Transactions = collect(s.transactions, keepAll[models.Transaction])
	s.mu.RUnlock()

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return err
	}
	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.snapshotPath)
}

// LoadSnapshot replaces the store contents with the snapshot on disk. A
// missing file leaves the store empty and is not an error.
func (s *MemStore) LoadSnapshot() error {
	if s.snapshotPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obs, _ := s.ids.(idObserver)
	observe := func(entity Entity, id int64) {
		if obs != nil {
			obs.Observe(entity, id)
		}
	}
	clear(s.players)
	for _, sp := range snap.Players {
		p := sp.Player
		p.PasswordHash = sp.PasswordHash
		s.players[p.ID] = p
		observe(EntityPlayer, p.ID)
	}
	load(s.aircraft, snap.Aircraft, func(a models.Aircraft) int64 { return a.ID }, EntityAircraft, observe)
	load(s.airports, snap.Airports, func(a models.Airport) int64 { return a.ID }, EntityAirport, observe)
	load(s.routes, snap.Routes, func(r models.Route) int64 { return r.ID }, EntityRoute, observe)
	load(s.flights, snap.Flights, func(f models.Flight) int64 { return f.ID }, EntityFlight, observe)
	load(s.transactions, snap.Transactions, func(t models.Transaction) int64 { return t.ID }, EntityTransaction, observe)
	return nil
}

func load[T any](m map[int64]T, items []T, id func(T) int64, entity Entity, observe func(Entity, int64)) {
	clear(m)
	for _, item := range items {
		m[id(item)] = item
		observe(entity, id(item))
	}
}

func keepAll[T any](T) bool { return true }
