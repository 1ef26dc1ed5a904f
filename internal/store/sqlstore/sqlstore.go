// Package sqlstore implements store.Store on database/sql, backed by SQLite
// or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store is a store.Store over a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn with the driver for dialect and applies the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	logger := slog.With("component", "sqlstore", "operation", "open")

	var driver string
	switch dialect {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported store dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialect == SQLite {
		// one writer; in-memory databases are per connection
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("Database ready", "dialect", dialect)
	return s, nil
}

// New wraps an already open connection. The schema is not touched.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates any missing tables and indices.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, s.dialect.ddl(stmt)); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	if err != nil {
		return 0, s.fail(op, err)
	}
	return id, nil
}

func (s *Store) update(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return s.fail(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// fail maps driver errors onto the store sentinels and logs the rest.
func (s *Store) fail(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case isUniqueViolation(err):
		return store.ErrConflict
	}
	slog.Error("Database operation failed", "component", "sqlstore", "operation", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func queryAll[T any](ctx context.Context, s *Store, op string, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, s.fail(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return out, nil
}

func queryOne[T any](ctx context.Context, s *Store, op string, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(s.db.QueryRowContext(ctx, s.rebind(query), args...))
	if err != nil {
		var zero T
		return zero, s.fail(op, err)
	}
	return v, nil
}

// players

const playerColumns = `id, username, password_hash, money, game_date, hub, difficulty, last_login`

func scanPlayer(sc scanner) (models.Player, error) {
	var p models.Player
	var lastLogin string
	err := sc.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Money, &p.CurrentDate, &p.Hub, &p.Difficulty, &lastLogin)
	if err != nil {
		return p, err
	}
	if lastLogin != "" {
		if p.LastLogin, err = time.Parse(time.RFC3339Nano, lastLogin); err != nil {
			return p, fmt.Errorf("parse last_login: %w", err)
		}
	}
	return p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *Store) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	return queryOne(ctx, s, "get player", scanPlayer, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
}

func (s *Store) GetPlayerByUsername(ctx context.Context, username string) (models.Player, error) {
	return queryOne(ctx, s, "get player by username", scanPlayer, `SELECT `+playerColumns+` FROM players WHERE username = ?`, username)
}

func (s *Store) CreatePlayer(ctx context.Context, p models.Player) (models.Player, error) {
	id, err := s.insert(ctx, "create player",
		`INSERT INTO players (username, password_hash, money, game_date, hub, difficulty, last_login) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Username, p.PasswordHash, p.Money, p.CurrentDate, p.Hub, string(p.Difficulty), formatTime(p.LastLogin))
	if err != nil {
		return models.Player{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, p models.Player) (models.Player, error) {
	err := s.update(ctx, "update player",
		`UPDATE players SET username = ?, password_hash = ?, money = ?, game_date = ?, hub = ?, difficulty = ?, last_login = ? WHERE id = ?`,
		p.Username, p.PasswordHash, p.Money, p.CurrentDate, p.Hub, string(p.Difficulty), formatTime(p.LastLogin), p.ID)
	if err != nil {
		return models.Player{}, err
	}
	return p, nil
}

// aircraft

const aircraftColumns = `id, player_id, model, registration, capacity, range_km, cruising_speed, fuel_efficiency, status,
	purchase_price, purchase_date, maintenance_due, has_wifi, has_entertainment, has_premium_seating`

func scanAircraft(sc scanner) (models.Aircraft, error) {
	var a models.Aircraft
	err := sc.Scan(&a.ID, &a.PlayerID, &a.Model, &a.Registration, &a.Capacity, &a.Range, &a.CruisingSpeed,
		&a.FuelEfficiency, &a.Status, &a.PurchasePrice, &a.PurchaseDate, &a.MaintenanceDue,
		&a.HasWifi, &a.HasEntertainment, &a.HasPremiumSeating)
	return a, err
}

func (s *Store) GetAircraft(ctx context.Context, id int64) (models.Aircraft, error) {
	return queryOne(ctx, s, "get aircraft", scanAircraft, `SELECT `+aircraftColumns+` FROM aircraft WHERE id = ?`, id)
}

func (s *Store) ListAircraftByPlayer(ctx context.Context, playerID int64) ([]models.Aircraft, error) {
	return queryAll(ctx, s, "list aircraft", scanAircraft, `SELECT `+aircraftColumns+` FROM aircraft WHERE player_id = ? ORDER BY id`, playerID)
}

func (s *Store) CreateAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error) {
	id, err := s.insert(ctx, "create aircraft",
		`INSERT INTO aircraft (player_id, model, registration, capacity, range_km, cruising_speed, fuel_efficiency, status,
			purchase_price, purchase_date, maintenance_due, has_wifi, has_entertainment, has_premium_seating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PlayerID, a.Model, a.Registration, a.Capacity, a.Range, a.CruisingSpeed, a.FuelEfficiency, string(a.Status),
		a.PurchasePrice, a.PurchaseDate, a.MaintenanceDue, a.HasWifi, a.HasEntertainment, a.HasPremiumSeating)
	if err != nil {
		return models.Aircraft{}, err
	}
	a.ID = id
	return a, nil
}

func (s *Store) UpdateAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error) {
	err := s.update(ctx, "update aircraft",
		`UPDATE aircraft SET player_id = ?, model = ?, registration = ?, capacity = ?, range_km = ?, cruising_speed = ?,
			fuel_efficiency = ?, status = ?, purchase_price = ?, purchase_date = ?, maintenance_due = ?,
			has_wifi = ?, has_entertainment = ?, has_premium_seating = ?
		WHERE id = ?`,
		a.PlayerID, a.Model, a.Registration, a.Capacity, a.Range, a.CruisingSpeed, a.FuelEfficiency, string(a.Status),
		a.PurchasePrice, a.PurchaseDate, a.MaintenanceDue, a.HasWifi, a.HasEntertainment, a.HasPremiumSeating, a.ID)
	if err != nil {
		return models.Aircraft{}, err
	}
	return a, nil
}

// airports

const airportColumns = `id, code, name, city, country, latitude, longitude, demand_rating, landing_fee`

func scanAirport(sc scanner) (models.Airport, error) {
	var a models.Airport
	err := sc.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country, &a.Latitude, &a.Longitude, &a.DemandRating, &a.LandingFee)
	return a, err
}

func (s *Store) GetAirport(ctx context.Context, id int64) (models.Airport, error) {
	return queryOne(ctx, s, "get airport", scanAirport, `SELECT `+airportColumns+` FROM airports WHERE id = ?`, id)
}

func (s *Store) GetAirportByCode(ctx context.Context, code string) (models.Airport, error) {
	return queryOne(ctx, s, "get airport by code", scanAirport, `SELECT `+airportColumns+` FROM airports WHERE code = ?`, code)
}

func (s *Store) ListAirports(ctx context.Context) ([]models.Airport, error) {
	return queryAll(ctx, s, "list airports", scanAirport, `SELECT `+airportColumns+` FROM airports ORDER BY id`)
}

func (s *Store) CreateAirport(ctx context.Context, a models.Airport) (models.Airport, error) {
	id, err := s.insert(ctx, "create airport",
		`INSERT INTO airports (code, name, city, country, latitude, longitude, demand_rating, landing_fee) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Code, a.Name, a.City, a.Country, a.Latitude, a.Longitude, a.DemandRating, a.LandingFee)
	if err != nil {
		return models.Airport{}, err
	}
	a.ID = id
	return a, nil
}

// routes

const routeColumns = `id, player_id, origin_code, destination_code, distance, estimated_time, demand, established`

func scanRoute(sc scanner) (models.Route, error) {
	var r models.Route
	err := sc.Scan(&r.ID, &r.PlayerID, &r.OriginCode, &r.DestinationCode, &r.Distance, &r.EstimatedTime, &r.Demand, &r.Established)
	return r, err
}

func (s *Store) GetRoute(ctx context.Context, id int64) (models.Route, error) {
	return queryOne(ctx, s, "get route", scanRoute, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id)
}

func (s *Store) ListRoutesByPlayer(ctx context.Context, playerID int64) ([]models.Route, error) {
	return queryAll(ctx, s, "list routes", scanRoute, `SELECT `+routeColumns+` FROM routes WHERE player_id = ? ORDER BY id`, playerID)
}

func (s *Store) GetRouteByOriginDestination(ctx context.Context, playerID int64, origin, destination string) (models.Route, error) {
	return queryOne(ctx, s, "get route by pair", scanRoute,
		`SELECT `+routeColumns+` FROM routes WHERE player_id = ? AND origin_code = ? AND destination_code = ?`,
		playerID, origin, destination)
}

func (s *Store) CreateRoute(ctx context.Context, r models.Route) (models.Route, error) {
	id, err := s.insert(ctx, "create route",
		`INSERT INTO routes (player_id, origin_code, destination_code, distance, estimated_time, demand, established) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.PlayerID, r.OriginCode, r.DestinationCode, r.Distance, r.EstimatedTime, r.Demand, r.Established)
	if err != nil {
		return models.Route{}, err
	}
	r.ID = id
	return r, nil
}

// flights

const flightColumns = `id, player_id, route_id, aircraft_id, flight_number, departure_date, departure_time,
	arrival_date, arrival_time, booked_passengers, maximum_passengers, status, revenue, operating_cost`

func scanFlight(sc scanner) (models.Flight, error) {
	var f models.Flight
	err := sc.Scan(&f.ID, &f.PlayerID, &f.RouteID, &f.AircraftID, &f.FlightNumber, &f.DepartureDate, &f.DepartureTime,
		&f.ArrivalDate, &f.ArrivalTime, &f.BookedPassengers, &f.MaximumPassengers, &f.Status, &f.Revenue, &f.OperatingCost)
	return f, err
}

func (s *Store) GetFlight(ctx context.Context, id int64) (models.Flight, error) {
	return queryOne(ctx, s, "get flight", scanFlight, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
}

func (s *Store) ListFlightsByPlayer(ctx context.Context, playerID int64) ([]models.Flight, error) {
	return queryAll(ctx, s, "list flights", scanFlight, `SELECT `+flightColumns+` FROM flights WHERE player_id = ? ORDER BY id`, playerID)
}

func (s *Store) ListUpcomingFlightsByPlayer(ctx context.Context, playerID int64, since models.Date) ([]models.Flight, error) {
	return queryAll(ctx, s, "list upcoming flights", scanFlight,
		`SELECT `+flightColumns+` FROM flights
		WHERE player_id = ? AND departure_date >= ? AND status NOT IN (?, ?)
		ORDER BY departure_date, departure_time, id`,
		playerID, since, string(models.FlightCompleted), string(models.FlightCancelled))
}

func (s *Store) CreateFlight(ctx context.Context, f models.Flight) (models.Flight, error) {
	id, err := s.insert(ctx, "create flight",
		`INSERT INTO flights (player_id, route_id, aircraft_id, flight_number, departure_date, departure_time,
			arrival_date, arrival_time, booked_passengers, maximum_passengers, status, revenue, operating_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.PlayerID, f.RouteID, f.AircraftID, f.FlightNumber, f.DepartureDate, f.DepartureTime,
		f.ArrivalDate, f.ArrivalTime, f.BookedPassengers, f.MaximumPassengers, string(f.Status), f.Revenue, f.OperatingCost)
	if err != nil {
		return models.Flight{}, err
	}
	f.ID = id
	return f, nil
}

func (s *Store) UpdateFlight(ctx context.Context, f models.Flight) (models.Flight, error) {
	err := s.update(ctx, "update flight",
		`UPDATE flights SET player_id = ?, route_id = ?, aircraft_id = ?, flight_number = ?, departure_date = ?,
			departure_time = ?, arrival_date = ?, arrival_time = ?, booked_passengers = ?, maximum_passengers = ?,
			status = ?, revenue = ?, operating_cost = ?
		WHERE id = ?`,
		f.PlayerID, f.RouteID, f.AircraftID, f.FlightNumber, f.DepartureDate, f.DepartureTime,
		f.ArrivalDate, f.ArrivalTime, f.BookedPassengers, f.MaximumPassengers, string(f.Status), f.Revenue, f.OperatingCost, f.ID)
	if err != nil {
		return models.Flight{}, err
	}
	return f, nil
}

// transactions

const transactionColumns = `id, player_id, amount, type, description, date`

func scanTransaction(sc scanner) (models.Transaction, error) {
	var t models.Transaction
	err := sc.Scan(&t.ID, &t.PlayerID, &t.Amount, &t.Type, &t.Description, &t.Date)
	return t, err
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	return queryOne(ctx, s, "get transaction", scanTransaction, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
}

func (s *Store) ListTransactionsByPlayer(ctx context.Context, playerID int64) ([]models.Transaction, error) {
	return queryAll(ctx, s, "list transactions", scanTransaction,
		`SELECT `+transactionColumns+` FROM transactions WHERE player_id = ? ORDER BY date DESC, id DESC`, playerID)
}

func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	id, err := s.insert(ctx, "create transaction",
		`INSERT INTO transactions (player_id, amount, type, description, date) VALUES (?, ?, ?, ?, ?)`,
		t.PlayerID, t.Amount, string(t.Type), t.Description, t.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	t.ID = id
	return t, nil
}
