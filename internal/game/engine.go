package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"skytycoon/internal/apperr"
	"skytycoon/internal/auth"
	"skytycoon/internal/events"
	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

const (
	defaultHub         = "JFK"
	defaultAirlineCode = "SK"
)

// Engine implements every game operation on top of a store. Operations that
// change a player's balance or date hold that player's lock for their whole
// read-modify-write sequence.
type Engine struct {
	store   store.Store
	catalog []models.AircraftModel
	byModel map[string]models.AircraftModel
	events  *events.Log
	locks   *playerLocks
	airline string
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Engine)

// WithRand sets the random source used for bookings and registrations.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithEvents(log *events.Log) Option {
	return func(e *Engine) {
		e.events = log
	}
}

// WithCatalog replaces the default aircraft models.
func WithCatalog(list []models.AircraftModel) Option {
	return func(e *Engine) {
		e.catalog = list
	}
}

// WithAirlineCode sets the prefix of generated flight numbers.
func WithAirlineCode(code string) Option {
	return func(e *Engine) {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			e.airline = code
		}
	}
}

func NewEngine(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		catalog: DefaultCatalog(),
		events:  events.NewLog(nil),
		locks:   newPlayerLocks(),
		airline: defaultAirlineCode,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.byModel = make(map[string]models.AircraftModel, len(e.catalog))
	for _, m := range e.catalog {
		e.byModel[strings.ToUpper(m.Key)] = m
	}
	return e
}

// Catalog lists the aircraft models for sale.
func (e *Engine) Catalog() []models.AircraftModel {
	out := make([]models.AircraftModel, len(e.catalog))
	copy(out, e.catalog)
	return out
}

func (e *Engine) model(key string) (models.AircraftModel, bool) {
	m, ok := e.byModel[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		// catalog keys drop punctuation, so "A330-300" finds A330300
		m, ok = e.byModel[strings.ToUpper(strings.ReplaceAll(key, "-", ""))]
	}
	return m, ok
}

func (e *Engine) withRand(fn func(r *rand.Rand)) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	fn(e.rng)
}

func (e *Engine) record(ctx context.Context, p models.Player, kind events.Kind, format string, args ...any) {
	e.events.Record(ctx, events.Event{
		PlayerID: p.ID,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		GameDate: p.CurrentDate,
		At:       e.now(),
	})
}

// RecentEvents returns the player's last events, oldest first.
func (e *Engine) RecentEvents(ctx context.Context, playerID int64) ([]events.Event, error) {
	if _, err := e.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return e.events.Recent(playerID), nil
}

// storeErr turns a store failure into an application error naming what was
// being looked up.
func storeErr(err error, what string, key any) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFoundf("%s %v not found", what, key)
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflictf("%s %v already exists", what, key)
	default:
		return apperr.WrapInternal(fmt.Sprintf("failed to access %s", what), err)
	}
}

// players

type NewPlayer struct {
	Username   string
	Password   string
	Hub        string
	Difficulty models.Difficulty
}

func (e *Engine) CreatePlayer(ctx context.Context, in NewPlayer) (models.Player, error) {
	logger := slog.With("component", "engine", "operation", "create_player")

	username := strings.TrimSpace(in.Username)
	var issues []apperr.Issue
	if username == "" {
		issues = append(issues, apperr.Issue{Field: "username", Message: "is required"})
	}
	if in.Password == "" {
		issues = append(issues, apperr.Issue{Field: "password", Message: "is required"})
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}
	if _, ok := difficulties[difficulty]; !ok {
		issues = append(issues, apperr.Issue{Field: "difficulty", Message: "must be one of easy, normal, hard"})
	}
	if len(issues) > 0 {
		return models.Player{}, apperr.Invalid("invalid player", issues)
	}

	hub := strings.ToUpper(strings.TrimSpace(in.Hub))
	if hub == "" {
		hub = defaultHub
	}
	if _, err := e.store.GetAirportByCode(ctx, hub); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Player{}, apperr.Invalid("invalid player", []apperr.Issue{{Field: "hub", Message: "unknown airport " + hub}})
		}
		return models.Player{}, storeErr(err, "airport", hub)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.Player{}, apperr.WrapInternal("failed to hash password", err)
	}
	now := e.now()
	p, err := e.store.CreatePlayer(ctx, models.Player{
		Username:     username,
		PasswordHash: hash,
		Money:        SettingsFor(difficulty).StartingMoney,
		CurrentDate:  models.DateOf(now),
		Hub:          hub,
		Difficulty:   difficulty,
		LastLogin:    now,
	})
	if errors.Is(err, store.ErrConflict) {
		return models.Player{}, apperr.Conflictf("username %q is already taken", username)
	}
	if err != nil {
		return models.Player{}, storeErr(err, "player", username)
	}
	logger.Info("Player created", "player_id", p.ID, "hub", hub, "difficulty", difficulty)
	e.record(ctx, p, events.PlayerCreated, "%s founded an airline at %s", p.Username, p.Hub)
	return p, nil
}

// Authenticate returns the player whose credentials match.
func (e *Engine) Authenticate(ctx context.Context, username, password string) (models.Player, error) {
	p, err := e.store.GetPlayerByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return models.Player{}, storeErr(err, "player", username)
	}
	if err != nil || !auth.CheckPassword(p.PasswordHash, password) {
		return models.Player{}, apperr.Unauthorized("invalid username or password")
	}
	return p, nil
}

func (e *Engine) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	p, err := e.store.GetPlayer(ctx, id)
	if err != nil {
		return models.Player{}, storeErr(err, "player", id)
	}
	return p, nil
}

// PlayerUpdate lists the fields a player may change directly. Cash and date
// only move through game operations.
type PlayerUpdate struct {
	Hub *string
}

func (e *Engine) UpdatePlayer(ctx context.Context, id int64, upd PlayerUpdate) (models.Player, error) {
	defer e.locks.lock(id)()
	p, err := e.GetPlayer(ctx, id)
	if err != nil {
		return models.Player{}, err
	}
	if upd.Hub != nil {
		hub := strings.ToUpper(strings.TrimSpace(*upd.Hub))
		if _, err := e.store.GetAirportByCode(ctx, hub); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return models.Player{}, apperr.Invalid("invalid player update", []apperr.Issue{{Field: "hub", Message: "unknown airport " + hub}})
			}
			return models.Player{}, storeErr(err, "airport", hub)
		}
		p.Hub = hub
	}
	if p, err = e.store.UpdatePlayer(ctx, p); err != nil {
		return models.Player{}, storeErr(err, "player", id)
	}
	return p, nil
}

// SaveGame stamps the player's last login and, when the store keeps
// snapshots, writes one.
func (e *Engine) SaveGame(ctx context.Context, id int64) (models.Player, error) {
	defer e.locks.lock(id)()
	p, err := e.GetPlayer(ctx, id)
	if err != nil {
		return models.Player{}, err
	}
	p.LastLogin = e.now()
	if p, err = e.store.UpdatePlayer(ctx, p); err != nil {
		return models.Player{}, storeErr(err, "player", id)
	}
	if snap, ok := e.store.(store.Snapshotter); ok {
		if err := snap.Snapshot(ctx); err != nil {
			return models.Player{}, apperr.WrapInternal("failed to save game", err)
		}
	}
	e.record(ctx, p, events.GameSaved, "Game saved on %s", p.CurrentDate)
	return p, nil
}

// airports

func (e *Engine) ListAirports(ctx context.Context) ([]models.Airport, error) {
	list, err := e.store.ListAirports(ctx)
	if err != nil {
		return nil, storeErr(err, "airports", "")
	}
	return list, nil
}

func (e *Engine) GetAirport(ctx context.Context, code string) (models.Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	ap, err := e.store.GetAirportByCode(ctx, code)
	if err != nil {
		return models.Airport{}, storeErr(err, "airport", code)
	}
	return ap, nil
}
