package models

import (
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

type Player struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Money        Money      `json:"money"`
	CurrentDate  Date       `json:"currentDate"`
	Hub          string     `json:"hub"`
	Difficulty   Difficulty `json:"difficulty"`
	LastLogin    time.Time  `json:"lastLogin"`
}

type AircraftStatus string

const (
	AircraftActive      AircraftStatus = "active"
	AircraftMaintenance AircraftStatus = "maintenance"
	AircraftEnRoute     AircraftStatus = "en-route"
)

type Aircraft struct {
	ID                int64          `json:"id"`
	PlayerID          int64          `json:"playerId"`
	Model             string         `json:"model"`
	Registration      string         `json:"registration"`
	Capacity          int            `json:"capacity"`
	Range             int            `json:"range"`
	CruisingSpeed     int            `json:"cruisingSpeed"`
	FuelEfficiency    float64        `json:"fuelEfficiency"`
	Status            AircraftStatus `json:"status"`
	PurchasePrice     Money          `json:"purchasePrice"`
	PurchaseDate      Date           `json:"purchaseDate"`
	MaintenanceDue    Date           `json:"maintenanceDue"`
	HasWifi           bool           `json:"hasWifi"`
	HasEntertainment  bool           `json:"hasEntertainment"`
	HasPremiumSeating bool           `json:"hasPremiumSeating"`
}

// AircraftModel is a purchasable catalog entry.
type AircraftModel struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Capacity       int     `json:"capacity"`
	Range          int     `json:"range"`
	CruisingSpeed  int     `json:"cruisingSpeed"`
	FuelEfficiency float64 `json:"fuelEfficiency"`
	Price          Money   `json:"price"`
	Description    string  `json:"description,omitempty"`
}

type Airport struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	Country      string  `json:"country"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	DemandRating int     `json:"demandRating"`
	LandingFee   Money   `json:"landingFee"`
}

type Route struct {
	ID              int64  `json:"id"`
	PlayerID        int64  `json:"playerId"`
	OriginCode      string `json:"originCode"`
	DestinationCode string `json:"destinationCode"`
	Distance        int    `json:"distance"`
	EstimatedTime   int    `json:"estimatedTime"`
	Demand          int    `json:"demand"`
	Established     Date   `json:"established"`
}

type FlightStatus string

const (
	FlightScheduled FlightStatus = "scheduled"
	FlightCompleted FlightStatus = "completed"
	FlightCancelled FlightStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s FlightStatus) Terminal() bool {
	return s == FlightCompleted || s == FlightCancelled
}

// CanTransition reports whether a flight may move from s to next.
// Status only moves forward; nothing returns to scheduled.
func (s FlightStatus) CanTransition(next FlightStatus) bool {
	if s == next {
		return true
	}
	return s == FlightScheduled && (next == FlightCompleted || next == FlightCancelled)
}

type Flight struct {
	ID                int64        `json:"id"`
	PlayerID          int64        `json:"playerId"`
	RouteID           int64        `json:"routeId"`
	AircraftID        int64        `json:"aircraftId"`
	FlightNumber      string       `json:"flightNumber"`
	DepartureDate     Date         `json:"departureDate"`
	DepartureTime     string       `json:"departureTime"`
	ArrivalDate       Date         `json:"arrivalDate"`
	ArrivalTime       string       `json:"arrivalTime"`
	BookedPassengers  int          `json:"bookedPassengers"`
	MaximumPassengers int          `json:"maximumPassengers"`
	Status            FlightStatus `json:"status"`
	Revenue           Money        `json:"revenue"`
	OperatingCost     Money        `json:"operatingCost"`
}

// Profit is the frozen revenue minus operating cost.
func (f Flight) Profit() Money {
	return f.Revenue.Minus(f.OperatingCost)
}

// DepartsAt combines the departure date and "HH:MM" time. A malformed time
// is treated as midnight.
func (f Flight) DepartsAt() time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(f.DepartureTime))
	if err != nil {
		return f.DepartureDate.Time
	}
	return f.DepartureDate.Time.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionRevenue  TransactionType = "revenue"
	TransactionExpense  TransactionType = "expense"
)

type Transaction struct {
	ID          int64           `json:"id"`
	PlayerID    int64           `json:"playerId"`
	Amount      Money           `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
}
