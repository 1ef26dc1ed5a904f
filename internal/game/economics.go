package game

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/shopspring/decimal"

	"skytycoon/internal/models"
)

const (
	// DefaultCruiseSpeed is used for route estimates and when an aircraft
	// reports no speed.
	DefaultCruiseSpeed = 850.0
	// GroundMinutes covers taxi, takeoff and landing on every flight.
	GroundMinutes = 30.0
	// MaintenanceIntervalDays is the gap between purchase and the first check.
	MaintenanceIntervalDays = 30

	minLoad, maxLoad    = 0.70, 0.95
	minFare, maxFare    = 150.0, 300.0
	minCost, maxCost    = 0.60, 0.80
	bookingRatioCeiling = 0.95
)

// DistanceKm is the great-circle distance between two points, rounded to the
// nearest kilometre.
func DistanceKm(lat1, lon1, lat2, lon2 float64) int {
	return int(math.Round(haversine(lat1, lon1, lat2, lon2)))
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func airportDistance(a, b models.Airport) int {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// FlightDurationMinutes is airborne time at the given cruise speed plus the
// ground allowance.
func FlightDurationMinutes(distanceKm, cruisingSpeedKmh float64) float64 {
	if cruisingSpeedKmh <= 0 {
		cruisingSpeedKmh = DefaultCruiseSpeed
	}
	return distanceKm/cruisingSpeedKmh*60 + GroundMinutes
}

// DifficultySettings scales the economy for a player.
type DifficultySettings struct {
	DemandMultiplier float64
	CostMultiplier   float64
	StartingMoney    models.Money
}

var difficulties = map[models.Difficulty]DifficultySettings{
	models.DifficultyEasy:   {DemandMultiplier: 1.2, CostMultiplier: 0.8, StartingMoney: models.MustMoney("15000000")},
	models.DifficultyNormal: {DemandMultiplier: 1.0, CostMultiplier: 1.0, StartingMoney: models.MustMoney("10000000")},
	models.DifficultyHard:   {DemandMultiplier: 0.8, CostMultiplier: 1.2, StartingMoney: models.MustMoney("7500000")},
}

// SettingsFor returns the settings for d; unknown values get normal.
func SettingsFor(d models.Difficulty) DifficultySettings {
	if s, ok := difficulties[d]; ok {
		return s
	}
	return difficulties[models.DifficultyNormal]
}

// FlightEstimate is the booking and money outcome frozen onto a flight.
type FlightEstimate struct {
	BookedPassengers int
	Revenue          models.Money
	OperatingCost    models.Money
}

// estimateFlight draws bookings, fare and cost for a flight with the given
// seat count on a route with demand percentage demand.
func estimateFlight(rng *rand.Rand, seats, demand int, s DifficultySettings) FlightEstimate {
	load := uniform(rng, minLoad, maxLoad)
	fare := uniform(rng, minFare, maxFare)
	costRatio := uniform(rng, minCost, maxCost)
	return settle(seats, demand, load, fare, costRatio, s)
}

// expectedFlight is estimateFlight evaluated at the midpoint of every draw.
func expectedFlight(seats, demand int, s DifficultySettings) FlightEstimate {
	return settle(seats, demand, (minLoad+maxLoad)/2, (minFare+maxFare)/2, (minCost+maxCost)/2, s)
}

func settle(seats, demand int, load, fare, costRatio float64, s DifficultySettings) FlightEstimate {
	ratio := load * float64(demand) / 100 * s.DemandMultiplier
	ratio = math.Max(0, math.Min(bookingRatioCeiling, ratio))
	booked := int(math.Floor(float64(seats) * ratio))

	revenue := decimal.NewFromInt(int64(booked)).Mul(decimal.NewFromFloat(fare)).Round(2)
	cost := revenue.Mul(decimal.NewFromFloat(costRatio * s.CostMultiplier)).Round(2)
	return FlightEstimate{
		BookedPassengers: booked,
		Revenue:          models.NewMoney(revenue),
		OperatingCost:    models.NewMoney(cost),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// FlightNumber derives a stable four digit number for a route and prefixes
// it with the airline code.
func FlightNumber(airlineCode string, routeID int64) string {
	var h int32
	for _, c := range strconv.FormatInt(routeID, 10) {
		h = h<<5 - h + c
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return airlineCode + strconv.FormatInt(n%9000+1000, 10)
}

var registrationPrefixes = map[string]string{
	"SYD": "VH-",
	"JFK": "N", "ATL": "N", "MIA": "N", "SFO": "N", "LAX": "N",
	"LHR": "G-", "MAN": "G-",
	"CDG": "F-", "ORY": "F-",
	"DXB": "A6-",
	"HND": "JA-",
	"SIN": "9V-",
	"FRA": "D-",
	"AMS": "PH-",
	"ICN": "HL-",
	"PEK": "B-", "PVG": "B-",
	"GRU": "PP-",
}

const registrationLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// Registration makes a tail number with the national prefix of the hub.
func Registration(rng *rand.Rand, hub string) string {
	prefix, ok := registrationPrefixes[hub]
	if !ok {
		prefix = "X-"
	}
	if prefix == "N" {
		return prefix + strconv.Itoa(1000+rng.Intn(9000))
	}
	b := []byte(prefix)
	for range 3 {
		b = append(b, registrationLetters[rng.Intn(len(registrationLetters))])
	}
	return string(b)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
