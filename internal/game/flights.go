package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"skytycoon/internal/apperr"
	"skytycoon/internal/events"
	"skytycoon/internal/models"
)

const clockLayout = "15:04"

// NewFlight schedules an aircraft on a route. FlightNumber, arrival and
// MaximumPassengers are derived when left empty.
type NewFlight struct {
	RouteID           int64
	AircraftID        int64
	FlightNumber      string
	DepartureDate     models.Date
	DepartureTime     string
	ArrivalDate       *models.Date
	ArrivalTime       string
	MaximumPassengers int
}

func normalizeClock(field, v string) (string, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(v))
	if err != nil {
		return "", apperr.Invalid("invalid flight", []apperr.Issue{{Field: field, Message: "must be a time formatted HH:MM"}})
	}
	return t.Format(clockLayout), nil
}

// arrival adds the block time to a departure.
func arrival(departure time.Time, distanceKm, speed int) (models.Date, string) {
	minutes := math.Round(FlightDurationMinutes(float64(distanceKm), float64(speed)))
	at := departure.Add(time.Duration(minutes) * time.Minute)
	return models.DateOf(at), at.Format(clockLayout)
}

// schedule fills in arrival fields and checks they follow departure.
func schedule(f *models.Flight, arrivalDate *models.Date, arrivalTime string, distance, speed int) error {
	dep, err := normalizeClock("departureTime", f.DepartureTime)
	if err != nil {
		return err
	}
	f.DepartureTime = dep
	if strings.TrimSpace(arrivalTime) == "" {
		f.ArrivalDate, f.ArrivalTime = arrival(f.DepartsAt(), distance, speed)
		return nil
	}
	if f.ArrivalTime, err = normalizeClock("arrivalTime", arrivalTime); err != nil {
		return err
	}
	f.ArrivalDate = f.DepartureDate
	if arrivalDate != nil {
		f.ArrivalDate = *arrivalDate
	}
	arrives := models.Flight{DepartureDate: f.ArrivalDate, DepartureTime: f.ArrivalTime}.DepartsAt()
	if !arrives.After(f.DepartsAt()) {
		return apperr.Invalid("invalid flight", []apperr.Issue{{Field: "arrivalTime", Message: "must be after departure"}})
	}
	return nil
}

// ScheduleFlight books a flight and freezes its passengers, revenue and cost.
func (e *Engine) ScheduleFlight(ctx context.Context, playerID int64, in NewFlight) (models.Flight, error) {
	defer e.locks.lock(playerID)()
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return models.Flight{}, err
	}
	ac, err := e.GetAircraft(ctx, in.AircraftID)
	if err != nil || ac.PlayerID != playerID {
		return models.Flight{}, apperr.NotFoundf("aircraft %d not found", in.AircraftID)
	}
	rt, err := e.GetRoute(ctx, in.RouteID)
	if err != nil || rt.PlayerID != playerID {
		return models.Flight{}, apperr.NotFoundf("route %d not found", in.RouteID)
	}

	var issues []apperr.Issue
	if rt.Distance > ac.Range {
		issues = append(issues, apperr.Issue{Field: "aircraftId", Message: fmt.Sprintf("range %d km is short of the %d km route", ac.Range, rt.Distance)})
	}
	seats := in.MaximumPassengers
	switch {
	case seats == 0:
		seats = ac.Capacity
	case seats < 0:
		issues = append(issues, apperr.Issue{Field: "maximumPassengers", Message: "must be positive"})
	case seats > ac.Capacity:
		issues = append(issues, apperr.Issue{Field: "maximumPassengers", Message: fmt.Sprintf("exceeds aircraft capacity of %d", ac.Capacity)})
	}
	if len(issues) > 0 {
		return models.Flight{}, apperr.Invalid("invalid flight", issues)
	}

	f := models.Flight{
		PlayerID:          playerID,
		RouteID:           rt.ID,
		AircraftID:        ac.ID,
		FlightNumber:      strings.ToUpper(strings.TrimSpace(in.FlightNumber)),
		DepartureDate:     in.DepartureDate,
		DepartureTime:     in.DepartureTime,
		MaximumPassengers: seats,
		Status:            models.FlightScheduled,
	}
	if f.FlightNumber == "" {
		f.FlightNumber = FlightNumber(e.airline, rt.ID)
	}
	if err := schedule(&f, in.ArrivalDate, in.ArrivalTime, rt.Distance, ac.CruisingSpeed); err != nil {
		return models.Flight{}, err
	}

	var est FlightEstimate
	e.withRand(func(r *rand.Rand) {
		est = estimateFlight(r, seats, rt.Demand, SettingsFor(p.Difficulty))
	})
	f.BookedPassengers = est.BookedPassengers
	f.Revenue = est.Revenue
	f.OperatingCost = est.OperatingCost

	number := f.FlightNumber
	if f, err = e.store.CreateFlight(ctx, f); err != nil {
		return models.Flight{}, storeErr(err, "flight", number)
	}
	e.record(ctx, p, events.FlightScheduled, "Scheduled %s %s-%s on %s %s (%d/%d booked)",
		f.FlightNumber, rt.OriginCode, rt.DestinationCode, f.DepartureDate, f.DepartureTime, f.BookedPassengers, f.MaximumPassengers)
	return f, nil
}

func (e *Engine) GetRoute(ctx context.Context, id int64) (models.Route, error) {
	rt, err := e.store.GetRoute(ctx, id)
	if err != nil {
		return models.Route{}, storeErr(err, "route", id)
	}
	return rt, nil
}

func (e *Engine) GetFlight(ctx context.Context, id int64) (models.Flight, error) {
	f, err := e.store.GetFlight(ctx, id)
	if err != nil {
		return models.Flight{}, storeErr(err, "flight", id)
	}
	return f, nil
}

func (e *Engine) ListFlights(ctx context.Context, playerID int64) ([]models.Flight, error) {
	if _, err := e.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	list, err := e.store.ListFlightsByPlayer(ctx, playerID)
	if err != nil {
		return nil, storeErr(err, "flights", playerID)
	}
	return list, nil
}

// UpcomingFlights lists open flights departing on or after the player's
// current date, earliest first.
func (e *Engine) UpcomingFlights(ctx context.Context, playerID int64) ([]models.Flight, error) {
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	list, err := e.store.ListUpcomingFlightsByPlayer(ctx, playerID, p.CurrentDate)
	if err != nil {
		return nil, storeErr(err, "flights", playerID)
	}
	return list, nil
}

// FlightUpdate reschedules or cancels a flight. Completion only happens when
// the day advances.
type FlightUpdate struct {
	Status        *models.FlightStatus
	DepartureDate *models.Date
	DepartureTime *string
	ArrivalDate   *models.Date
	ArrivalTime   *string
}

func (upd FlightUpdate) reschedules() bool {
	return upd.DepartureDate != nil || upd.DepartureTime != nil || upd.ArrivalDate != nil || upd.ArrivalTime != nil
}

func (e *Engine) UpdateFlight(ctx context.Context, id int64, upd FlightUpdate) (models.Flight, error) {
	f, err := e.GetFlight(ctx, id)
	if err != nil {
		return models.Flight{}, err
	}
	defer e.locks.lock(f.PlayerID)()
	if f, err = e.GetFlight(ctx, id); err != nil {
		return models.Flight{}, err
	}

	if upd.reschedules() {
		if f.Status != models.FlightScheduled {
			return models.Flight{}, apperr.Conflictf("flight %s is %s and can no longer be rescheduled", f.FlightNumber, f.Status)
		}
		if err := e.reschedule(ctx, &f, upd); err != nil {
			return models.Flight{}, err
		}
	}

	cancelled := false
	if upd.Status != nil && *upd.Status != f.Status {
		next := *upd.Status
		switch {
		case !f.Status.CanTransition(next):
			return models.Flight{}, apperr.Conflictf("flight %s cannot move from %s to %s", f.FlightNumber, f.Status, next)
		case next != models.FlightCancelled:
			return models.Flight{}, apperr.Invalid("invalid flight update", []apperr.Issue{{Field: "status", Message: "only cancelled may be set directly"}})
		}
		f.Status = next
		cancelled = true
	}

	if f, err = e.store.UpdateFlight(ctx, f); err != nil {
		return models.Flight{}, storeErr(err, "flight", id)
	}
	if cancelled {
		if p, err := e.GetPlayer(ctx, f.PlayerID); err == nil {
			e.record(ctx, p, events.FlightCancelled, "Cancelled %s on %s", f.FlightNumber, f.DepartureDate)
		}
	}
	return f, nil
}

func (e *Engine) reschedule(ctx context.Context, f *models.Flight, upd FlightUpdate) error {
	rt, err := e.GetRoute(ctx, f.RouteID)
	if err != nil {
		return err
	}
	ac, err := e.GetAircraft(ctx, f.AircraftID)
	if err != nil {
		return err
	}
	if upd.DepartureDate != nil {
		f.DepartureDate = *upd.DepartureDate
	}
	if upd.DepartureTime != nil {
		f.DepartureTime = *upd.DepartureTime
	}
	arrivalDate, arrivalTime := upd.ArrivalDate, ""
	if upd.ArrivalTime != nil {
		arrivalTime = *upd.ArrivalTime
	} else if upd.ArrivalDate != nil {
		arrivalTime = f.ArrivalTime
	}
	return schedule(f, arrivalDate, arrivalTime, rt.Distance, ac.CruisingSpeed)
}

// DayResult reports one day advance.
type DayResult struct {
	Player           models.Player `json:"player"`
	CompletedFlights int           `json:"completedFlights"`
	Revenue          models.Money  `json:"revenue"`
}

// AdvanceDay moves the player's calendar forward one day and completes every
// scheduled flight that departed before the new date, booking its frozen
// profit. A store failure part way leaves earlier flights completed.
func (e *Engine) AdvanceDay(ctx context.Context, playerID int64) (DayResult, error) {
	logger := slog.With("component", "engine", "operation", "advance_day", "player_id", playerID)

	defer e.locks.lock(playerID)()
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return DayResult{}, err
	}
	newDate := p.CurrentDate.AddDays(1)
	p.CurrentDate = newDate
	if p, err = e.store.UpdatePlayer(ctx, p); err != nil {
		return DayResult{}, storeErr(err, "player", playerID)
	}

	flights, err := e.store.ListFlightsByPlayer(ctx, playerID)
	if err != nil {
		return DayResult{}, storeErr(err, "flights", playerID)
	}

	result := DayResult{Revenue: models.MoneyFromInt(0)}
	for _, f := range flights {
		if f.Status != models.FlightScheduled || !f.DepartureDate.Before(newDate.Time) {
			continue
		}
		f.Status = models.FlightCompleted
		if _, err := e.store.UpdateFlight(ctx, f); err != nil {
			return DayResult{}, storeErr(err, "flight", f.ID)
		}
		profit := f.Profit()
		if _, err := e.store.CreateTransaction(ctx, models.Transaction{
			PlayerID:    playerID,
			Amount:      profit,
			Type:        models.TransactionRevenue,
			Description: fmt.Sprintf("Flight %s (%d passengers)", f.FlightNumber, f.BookedPassengers),
			Date:        newDate,
		}); err != nil {
			return DayResult{}, storeErr(err, "transaction", f.ID)
		}
		result.Revenue = result.Revenue.Plus(profit)
		result.CompletedFlights++
		e.record(ctx, p, events.FlightCompleted, "Flight %s completed with %d passengers, profit %s", f.FlightNumber, f.BookedPassengers, profit)
	}

	if !result.Revenue.IsZero() {
		p.Money = p.Money.Plus(result.Revenue)
		if p, err = e.store.UpdatePlayer(ctx, p); err != nil {
			return DayResult{}, storeErr(err, "player", playerID)
		}
	}
	result.Player = p
	logger.Info("Day advanced", "date", newDate.String(), "completed_flights", result.CompletedFlights, "revenue", result.Revenue.String())
	e.record(ctx, p, events.DayAdvanced, "Day advanced to %s: %d flights completed, %s booked", newDate, result.CompletedFlights, result.Revenue)
	return result, nil
}
