package game

import (
	"math"

	"skytycoon/internal/models"
)

const defaultRouteDemand = 50

// contested pairs carry extra competition in both directions.
var contested = map[string]bool{
	marketKey("JFK", "LHR"): true,
	marketKey("JFK", "CDG"): true,
	marketKey("LHR", "DXB"): true,
	marketKey("SIN", "LHR"): true,
	marketKey("HND", "SIN"): true,
}

func marketKey(a, b string) string {
	if a < b {
		return a + "-" + b
	}
	return b + "-" + a
}

// RouteDemand estimates passenger interest between two airports as a
// percentage in [5, 100]. Airports without a demand rating give 50.
func RouteDemand(origin, destination models.Airport) int {
	if origin.DemandRating <= 0 || destination.DemandRating <= 0 {
		return defaultRouteDemand
	}
	distance := airportDistance(origin, destination)

	base := float64(origin.DemandRating+destination.DemandRating) * 5
	multiplier := 1.0
	switch {
	case distance < 1000:
		multiplier = 1.2
	case distance > 8000:
		multiplier = 0.9
	}
	factor := 1 - Competition(origin, destination)/20

	demand := math.Max(5, math.Min(100, base*multiplier*factor))
	return int(math.Round(demand))
}

// Competition rates how contested a market is, from 1 to 10.
func Competition(origin, destination models.Airport) float64 {
	if origin.DemandRating <= 0 || destination.DemandRating <= 0 {
		return 5
	}
	c := float64(origin.DemandRating+destination.DemandRating) / 2
	if contested[marketKey(origin.Code, destination.Code)] {
		c += 2
	}
	if airportDistance(origin, destination) < 1000 {
		c++
	}
	return math.Max(1, math.Min(10, c))
}
