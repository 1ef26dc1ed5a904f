// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

// Run exercises st against the contract documented on store.Store. newStore
// must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("players", func(t *testing.T) { testPlayers(t, newStore(t)) })
	t.Run("airports", func(t *testing.T) { testAirports(t, newStore(t)) })
	t.Run("aircraft", func(t *testing.T) { testAircraft(t, newStore(t)) })
	t.Run("routes", func(t *testing.T) { testRoutes(t, newStore(t)) })
	t.Run("flights", func(t *testing.T) { testFlights(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
}

func day(d int) models.Date {
	return models.NewDate(2025, time.January, d)
}

func mustPlayer(t *testing.T, st store.Store, username string) models.Player {
	t.Helper()
	p, err := st.CreatePlayer(context.Background(), models.Player{
		Username:     username,
		PasswordHash: "hash-" + username,
		Money:        models.MustMoney("10000000.00"),
		CurrentDate:  day(1),
		Hub:          "JFK",
		Difficulty:   models.DifficultyNormal,
		LastLogin:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create player %s: %v", username, err)
	}
	return p
}

func testPlayers(t *testing.T, st store.Store) {
	ctx := context.Background()
	a := mustPlayer(t, st, "alice")
	b := mustPlayer(t, st, "bob")
	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Fatalf("expected distinct non-zero ids, got %d and %d", a.ID, b.ID)
	}

	if _, err := st.CreatePlayer(ctx, models.Player{Username: "alice", Money: models.MoneyFromInt(1), CurrentDate: day(1)}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate username: expected ErrConflict, got %v", err)
	}

	got, err := st.GetPlayerByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != a.ID || got.PasswordHash != "hash-alice" {
		t.Fatalf("unexpected player %+v", got)
	}
	if !got.Money.Equal(models.MustMoney("10000000").Decimal) {
		t.Fatalf("money round trip: got %s", got.Money)
	}

	got.Money = models.MustMoney("123.45")
	got.CurrentDate = day(2)
	if _, err := st.UpdatePlayer(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	reread, err := st.GetPlayer(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.Money.String() != "123.45" || !reread.CurrentDate.Equal(day(2).Time) {
		t.Fatalf("update not persisted: %+v", reread)
	}

	if _, err := st.GetPlayer(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing player: expected ErrNotFound, got %v", err)
	}
	if _, err := st.UpdatePlayer(ctx, models.Player{ID: 9999, Username: "ghost", CurrentDate: day(1)}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing player: expected ErrNotFound, got %v", err)
	}
}

func testAirports(t *testing.T, st store.Store) {
	ctx := context.Background()
	jfk, err := st.CreateAirport(ctx, models.Airport{Code: "JFK", Name: "John F. Kennedy International", City: "New York", Country: "USA", Latitude: 40.6413, Longitude: -73.7781, DemandRating: 9, LandingFee: models.MustMoney("5000")})
	if err != nil {
		t.Fatalf("create airport: %v", err)
	}
	if _, err := st.CreateAirport(ctx, models.Airport{Code: "LHR", Name: "Heathrow", City: "London", Country: "UK", Latitude: 51.47, Longitude: -0.4543}); err != nil {
		t.Fatalf("create airport: %v", err)
	}
	if _, err := st.CreateAirport(ctx, models.Airport{Code: "JFK", Name: "dup"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate code: expected ErrConflict, got %v", err)
	}

	got, err := st.GetAirportByCode(ctx, "JFK")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got.ID != jfk.ID || got.DemandRating != 9 || got.LandingFee.String() != "5000.00" {
		t.Fatalf("unexpected airport %+v", got)
	}
	if _, err := st.GetAirportByCode(ctx, "ZZZ"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown code: expected ErrNotFound, got %v", err)
	}
	list, err := st.ListAirports(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 airports, got %d", len(list))
	}
}

func testAircraft(t *testing.T, st store.Store) {
	ctx := context.Background()
	p := mustPlayer(t, st, "carol")
	other := mustPlayer(t, st, "dave")
	a, err := st.CreateAircraft(ctx, models.Aircraft{
		PlayerID: p.ID, Model: "A320neo", Registration: "N1234", Capacity: 180, Range: 6500,
		CruisingSpeed: 870, FuelEfficiency: 2.4, Status: models.AircraftActive,
		PurchasePrice: models.MustMoney("101500000"), PurchaseDate: day(1), MaintenanceDue: day(31),
		HasWifi: true,
	})
	if err != nil {
		t.Fatalf("create aircraft: %v", err)
	}
	if _, err := st.CreateAircraft(ctx, models.Aircraft{PlayerID: other.ID, Model: "A330300", Registration: "N9999", Capacity: 295, Status: models.AircraftActive, PurchaseDate: day(1), MaintenanceDue: day(31)}); err != nil {
		t.Fatalf("create aircraft: %v", err)
	}

	list, err := st.ListAircraftByPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != a.ID || !list[0].HasWifi || list[0].HasEntertainment {
		t.Fatalf("unexpected fleet %+v", list)
	}

	a.Status = models.AircraftMaintenance
	if _, err := st.UpdateAircraft(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := st.GetAircraft(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.AircraftMaintenance || !got.MaintenanceDue.Equal(day(31).Time) {
		t.Fatalf("unexpected aircraft %+v", got)
	}
	if _, err := st.GetAircraft(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing aircraft: expected ErrNotFound, got %v", err)
	}
}

func testRoutes(t *testing.T, st store.Store) {
	ctx := context.Background()
	p := mustPlayer(t, st, "erin")
	other := mustPlayer(t, st, "frank")
	r, err := st.CreateRoute(ctx, models.Route{PlayerID: p.ID, OriginCode: "JFK", DestinationCode: "LHR", Distance: 5540, EstimatedTime: 421, Demand: 78, Established: day(1)})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if _, err := st.CreateRoute(ctx, models.Route{PlayerID: p.ID, OriginCode: "JFK", DestinationCode: "LHR", Established: day(1)}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate route: expected ErrConflict, got %v", err)
	}
	if _, err := st.CreateRoute(ctx, models.Route{PlayerID: p.ID, OriginCode: "LHR", DestinationCode: "JFK", Established: day(1)}); err != nil {
		t.Fatalf("reverse direction is a separate route: %v", err)
	}
	if _, err := st.CreateRoute(ctx, models.Route{PlayerID: other.ID, OriginCode: "JFK", DestinationCode: "LHR", Established: day(1)}); err != nil {
		t.Fatalf("same pair for another player: %v", err)
	}

	got, err := st.GetRouteByOriginDestination(ctx, p.ID, "JFK", "LHR")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != r.ID || got.Demand != 78 {
		t.Fatalf("unexpected route %+v", got)
	}
	if _, err := st.GetRouteByOriginDestination(ctx, p.ID, "JFK", "CDG"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing route: expected ErrNotFound, got %v", err)
	}
	list, err := st.ListRoutesByPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(list))
	}
}

func testFlights(t *testing.T, st store.Store) {
	ctx := context.Background()
	p := mustPlayer(t, st, "grace")
	base := models.Flight{
		PlayerID: p.ID, AircraftID: 1, RouteID: 1, FlightNumber: "SK1001",
		ArrivalTime: "18:00", BookedPassengers: 120, MaximumPassengers: 180,
		Status: models.FlightScheduled, Revenue: models.MustMoney("27000.50"), OperatingCost: models.MustMoney("18000.25"),
	}
	mk := func(d int, at string, status models.FlightStatus) models.Flight {
		f := base
		f.DepartureDate, f.ArrivalDate = day(d), day(d)
		f.DepartureTime = at
		f.Status = status
		created, err := st.CreateFlight(ctx, f)
		if err != nil {
			t.Fatalf("create flight: %v", err)
		}
		return created
	}
	past := mk(1, "09:00", models.FlightScheduled)
	late := mk(5, "14:00", models.FlightScheduled)
	early := mk(5, "08:30", models.FlightScheduled)
	mk(6, "10:00", models.FlightCancelled)
	mk(7, "10:00", models.FlightCompleted)
	sameDay := mk(3, "23:59", models.FlightScheduled)

	upcoming, err := st.ListUpcomingFlightsByPlayer(ctx, p.ID, day(3))
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	want := []int64{sameDay.ID, early.ID, late.ID}
	if len(upcoming) != len(want) {
		t.Fatalf("expected %d upcoming flights, got %d", len(want), len(upcoming))
	}
	for i, id := range want {
		if upcoming[i].ID != id {
			t.Fatalf("upcoming[%d] = %d, want %d", i, upcoming[i].ID, id)
		}
	}

	all, err := st.ListFlightsByPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 flights, got %d", len(all))
	}

	past.Status = models.FlightCompleted
	if _, err := st.UpdateFlight(ctx, past); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := st.GetFlight(ctx, past.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.FlightCompleted || got.Profit().String() != "9000.25" {
		t.Fatalf("unexpected flight %+v", got)
	}
	if _, err := st.UpdateFlight(ctx, models.Flight{ID: 9999, DepartureDate: day(1), ArrivalDate: day(1)}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing flight: expected ErrNotFound, got %v", err)
	}
}

func testTransactions(t *testing.T, st store.Store) {
	ctx := context.Background()
	p := mustPlayer(t, st, "heidi")
	add := func(d int, amount string, kind models.TransactionType) models.Transaction {
		tx, err := st.CreateTransaction(ctx, models.Transaction{PlayerID: p.ID, Amount: models.MustMoney(amount), Type: kind, Description: "test", Date: day(d)})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		return tx
	}
	first := add(1, "-101500000", models.TransactionPurchase)
	second := add(2, "27000.50", models.TransactionRevenue)
	third := add(2, "-18000.25", models.TransactionExpense)

	list, err := st.ListTransactionsByPlayer(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{third.ID, second.ID, first.ID}
	if len(list) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("ledger[%d] = %d, want %d", i, list[i].ID, id)
		}
	}
	got, err := st.GetTransaction(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.String() != "-101500000.00" || got.Type != models.TransactionPurchase {
		t.Fatalf("unexpected transaction %+v", got)
	}
}
