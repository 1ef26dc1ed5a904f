package game

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"skytycoon/internal/apperr"
	"skytycoon/internal/events"
	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

// CreateRoute opens a route from origin to destination for the player.
func (e *Engine) CreateRoute(ctx context.Context, playerID int64, origin, destination string) (models.Route, error) {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if origin == destination {
		return models.Route{}, apperr.Invalid("invalid route", []apperr.Issue{{Field: "destinationCode", Message: "must differ from originCode"}})
	}

	defer e.locks.lock(playerID)()
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return models.Route{}, err
	}
	_, err = e.store.GetRouteByOriginDestination(ctx, playerID, origin, destination)
	switch {
	case err == nil:
		return models.Route{}, apperr.Conflictf("route %s-%s already exists", origin, destination)
	case !errors.Is(err, store.ErrNotFound):
		return models.Route{}, storeErr(err, "route", origin+"-"+destination)
	}

	from, err := e.GetAirport(ctx, origin)
	if err != nil {
		return models.Route{}, err
	}
	to, err := e.GetAirport(ctx, destination)
	if err != nil {
		return models.Route{}, err
	}

	distance := airportDistance(from, to)
	rt, err := e.store.CreateRoute(ctx, models.Route{
		PlayerID:        p.ID,
		OriginCode:      origin,
		DestinationCode: destination,
		Distance:        distance,
		EstimatedTime:   int(math.Round(FlightDurationMinutes(float64(distance), DefaultCruiseSpeed))),
		Demand:          RouteDemand(from, to),
		Established:     p.CurrentDate,
	})
	if errors.Is(err, store.ErrConflict) {
		return models.Route{}, apperr.Conflictf("route %s-%s already exists", origin, destination)
	}
	if err != nil {
		return models.Route{}, storeErr(err, "route", origin+"-"+destination)
	}
	e.record(ctx, p, events.RouteOpened, "Opened %s-%s (%d km, demand %d%%)", origin, destination, rt.Distance, rt.Demand)
	return rt, nil
}

func (e *Engine) ListRoutes(ctx context.Context, playerID int64) ([]models.Route, error) {
	if _, err := e.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	list, err := e.store.ListRoutesByPlayer(ctx, playerID)
	if err != nil {
		return nil, storeErr(err, "routes", playerID)
	}
	return list, nil
}

type RouteAnalysisRequest struct {
	Origin      string
	Destination string
	// Models restricts the comparison; empty means the whole catalog.
	Models []string
	// PlayerID, when set, applies that player's difficulty.
	PlayerID int64
}

type RouteAnalysis struct {
	Origin      string                `json:"origin"`
	Destination string                `json:"destination"`
	Distance    int                   `json:"distance"`
	Demand      int                   `json:"demand"`
	Competition float64               `json:"competition"`
	Results     []RouteAnalysisResult `json:"results"`
}

// RouteAnalysisResult is the expected outcome of one flight by one model.
type RouteAnalysisResult struct {
	Model              string       `json:"model"`
	Valid              bool         `json:"valid"`
	Error              string       `json:"error,omitempty"`
	FlightMinutes      int          `json:"flightMinutes,omitempty"`
	DailyFrequency     int          `json:"dailyFrequency,omitempty"`
	ExpectedPassengers int          `json:"expectedPassengers,omitempty"`
	LoadFactor         float64      `json:"loadFactor,omitempty"`
	ExpectedRevenue    models.Money `json:"expectedRevenue"`
	ExpectedCost       models.Money `json:"expectedCost"`
	ExpectedProfit     models.Money `json:"expectedProfit"`
	DailyProfit        models.Money `json:"dailyProfit"`
	RoiScore           float64      `json:"roiScore,omitempty"`
}

// AnalyzeRoute compares aircraft models on a prospective route using the
// mean of every booking, fare and cost draw.
func (e *Engine) AnalyzeRoute(ctx context.Context, req RouteAnalysisRequest) (RouteAnalysis, error) {
	from, err := e.GetAirport(ctx, req.Origin)
	if err != nil {
		return RouteAnalysis{}, err
	}
	to, err := e.GetAirport(ctx, req.Destination)
	if err != nil {
		return RouteAnalysis{}, err
	}
	if from.Code == to.Code {
		return RouteAnalysis{}, apperr.Invalid("invalid route", []apperr.Issue{{Field: "destination", Message: "must differ from origin"}})
	}
	settings := SettingsFor(models.DifficultyNormal)
	if req.PlayerID != 0 {
		p, err := e.GetPlayer(ctx, req.PlayerID)
		if err != nil {
			return RouteAnalysis{}, err
		}
		settings = SettingsFor(p.Difficulty)
	}

	distance := airportDistance(from, to)
	demand := RouteDemand(from, to)
	out := RouteAnalysis{
		Origin:      from.Code,
		Destination: to.Code,
		Distance:    distance,
		Demand:      demand,
		Competition: Competition(from, to),
		Results:     []RouteAnalysisResult{},
	}

	candidates := e.catalog
	if len(req.Models) > 0 {
		candidates = nil
		for _, key := range req.Models {
			m, ok := e.model(key)
			if !ok {
				out.Results = append(out.Results, RouteAnalysisResult{Model: key, Error: "Unknown Type"})
				continue
			}
			candidates = append(candidates, m)
		}
	}

	for _, m := range candidates {
		if distance > m.Range {
			out.Results = append(out.Results, RouteAnalysisResult{Model: m.Key, Error: "Range Exceeded"})
			continue
		}
		minutes := FlightDurationMinutes(float64(distance), float64(m.CruisingSpeed))
		freq := int(math.Floor(24 * 60 / (minutes * 2)))
		if freq < 1 {
			freq = 1
		}
		est := expectedFlight(m.Capacity, demand, settings)
		profit := est.Revenue.Minus(est.OperatingCost)
		daily := models.NewMoney(profit.Mul(decimalFromInt(freq)))

		roi := 0.0
		if m.Price.IsPositive() {
			roi, _ = daily.Mul(decimalFromInt(365)).Div(m.Price.Decimal).Mul(decimalFromInt(100)).Float64()
		}
		out.Results = append(out.Results, RouteAnalysisResult{
			Model:              m.Key,
			Valid:              true,
			FlightMinutes:      int(math.Round(minutes)),
			DailyFrequency:     freq,
			ExpectedPassengers: est.BookedPassengers,
			LoadFactor:         float64(est.BookedPassengers) / float64(m.Capacity) * 100,
			ExpectedRevenue:    est.Revenue,
			ExpectedCost:       est.OperatingCost,
			ExpectedProfit:     profit,
			DailyProfit:        daily,
			RoiScore:           roi,
		})
	}

	sort.SliceStable(out.Results, func(i, j int) bool {
		a, b := out.Results[i], out.Results[j]
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.DailyProfit.GreaterThan(b.DailyProfit.Decimal)
	})
	return out, nil
}
