package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"skytycoon/internal/models"
	"skytycoon/internal/store"
	"skytycoon/internal/store/storetest"
)

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		path := filepath.Join(t.TempDir(), "skytycoon.db")
		st, err := Open(context.Background(), SQLite, path)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		return st
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, SQLite, filepath.Join(t.TempDir(), "twice.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	got := pg.rebind(`SELECT a FROM t WHERE x = ? AND y IN (?, ?)`)
	want := `SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)`
	if got != want {
		t.Fatalf("rebind = %q, want %q", got, want)
	}
	lite := &Store{dialect: SQLite}
	if q := lite.rebind("x = ?"); q != "x = ?" {
		t.Fatalf("sqlite rebind changed query: %q", q)
	}
}

func TestPostgresGetPlayerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM players WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "money", "game_date", "hub", "difficulty", "last_login"}))

	st := New(db, Postgres)
	if _, err := st.GetPlayer(context.Background(), 7); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetPlayerScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "money", "game_date", "hub", "difficulty", "last_login"}).
		AddRow(int64(3), "alice", "hash", "9876543.21", "2025-01-04", "LHR", "hard", "2025-01-01T12:00:00Z")
	mock.ExpectQuery(`SELECT .+ FROM players WHERE username = \$1`).WithArgs("alice").WillReturnRows(rows)

	st := New(db, Postgres)
	p, err := st.GetPlayerByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.ID != 3 || p.Money.String() != "9876543.21" || p.CurrentDate.String() != "2025-01-04" || p.Difficulty != models.DifficultyHard {
		t.Fatalf("unexpected player %+v", p)
	}
	if p.LastLogin.Hour() != 12 {
		t.Fatalf("last login = %v", p.LastLogin)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUniqueViolationIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO players .+ RETURNING id`).
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	st := New(db, Postgres)
	_, err = st.CreatePlayer(context.Background(), models.Player{Username: "alice", Money: models.MoneyFromInt(1), CurrentDate: models.NewDate(2025, 1, 1)})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE flights SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	st := New(db, SQLite)
	_, err = st.UpdateFlight(context.Background(), models.Flight{ID: 42, DepartureDate: models.NewDate(2025, 1, 1), ArrivalDate: models.NewDate(2025, 1, 1)})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
