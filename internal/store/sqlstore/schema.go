package sqlstore

import "strings"

// schema is written for SQLite; postgres swaps the id column type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id {{ID}},
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		money TEXT NOT NULL,
		game_date TEXT NOT NULL,
		hub TEXT NOT NULL,
		difficulty TEXT NOT NULL DEFAULT 'normal',
		last_login TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS airports (
		id {{ID}},
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		latitude {{REAL}} NOT NULL,
		longitude {{REAL}} NOT NULL,
		demand_rating INTEGER NOT NULL DEFAULT 0,
		landing_fee TEXT NOT NULL DEFAULT '0.00'
	)`,
	`CREATE TABLE IF NOT EXISTS aircraft (
		id {{ID}},
		player_id BIGINT NOT NULL,
		model TEXT NOT NULL,
		registration TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		range_km INTEGER NOT NULL,
		cruising_speed INTEGER NOT NULL,
		fuel_efficiency {{REAL}} NOT NULL,
		status TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		purchase_date TEXT NOT NULL,
		maintenance_due TEXT NOT NULL,
		has_wifi BOOLEAN NOT NULL DEFAULT FALSE,
		has_entertainment BOOLEAN NOT NULL DEFAULT FALSE,
		has_premium_seating BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_aircraft_player ON aircraft(player_id)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id {{ID}},
		player_id BIGINT NOT NULL,
		origin_code TEXT NOT NULL,
		destination_code TEXT NOT NULL,
		distance INTEGER NOT NULL,
		estimated_time INTEGER NOT NULL,
		demand INTEGER NOT NULL,
		established TEXT NOT NULL,
		UNIQUE (player_id, origin_code, destination_code)
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id {{ID}},
		player_id BIGINT NOT NULL,
		route_id BIGINT NOT NULL,
		aircraft_id BIGINT NOT NULL,
		flight_number TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		arrival_date TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		booked_passengers INTEGER NOT NULL,
		maximum_passengers INTEGER NOT NULL,
		status TEXT NOT NULL,
		revenue TEXT NOT NULL,
		operating_cost TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_player_departure ON flights(player_id, departure_date)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id {{ID}},
		player_id BIGINT NOT NULL,
		amount TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		date TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_player ON transactions(player_id, date)`,
}

func (d Dialect) ddl(stmt string) string {
	id, float := "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	if d == Postgres {
		id, float = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}
	return strings.NewReplacer("{{ID}}", id, "{{REAL}}", float).Replace(stmt)
}
