package game

import (
	"math/rand"
	"strings"
	"testing"

	"skytycoon/internal/models"
)

func TestDistanceSymmetryAndZero(t *testing.T) {
	points := [][2]float64{{40.6413, -73.7781}, {51.47, -0.4543}, {-33.9399, 151.1753}, {0, 0}, {89.9, 179.9}}
	for _, a := range points {
		if d := DistanceKm(a[0], a[1], a[0], a[1]); d != 0 {
			t.Fatalf("distance from %v to itself = %d", a, d)
		}
		for _, b := range points {
			ab := DistanceKm(a[0], a[1], b[0], b[1])
			ba := DistanceKm(b[0], b[1], a[0], a[1])
			if ab != ba {
				t.Fatalf("asymmetric distance %v/%v: %d vs %d", a, b, ab, ba)
			}
			if ab < 0 {
				t.Fatalf("negative distance %d", ab)
			}
		}
	}
	if d := DistanceKm(40.6413, -73.7781, 51.47, -0.4543); d != 5540 {
		t.Fatalf("JFK-LHR = %d km, want 5540", d)
	}
}

func TestFlightDuration(t *testing.T) {
	for _, speed := range []float64{100, 850, 900, 0, -5} {
		if got := FlightDurationMinutes(0, speed); got != GroundMinutes {
			t.Fatalf("duration(0, %v) = %v, want %v", speed, got, GroundMinutes)
		}
	}
	if FlightDurationMinutes(1000, 850) <= FlightDurationMinutes(900, 850) {
		t.Fatalf("duration must grow with distance")
	}
	if FlightDurationMinutes(1000, 900) >= FlightDurationMinutes(1000, 850) {
		t.Fatalf("duration must shrink with speed")
	}
	if got := FlightDurationMinutes(850, 850); got != 90 {
		t.Fatalf("one hour at cruise plus ground = %v", got)
	}
}

func TestEstimateFlightBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	normal := SettingsFor(models.DifficultyNormal)
	for i := 0; i < 500; i++ {
		demand := rng.Intn(101)
		est := estimateFlight(rng, 180, demand, normal)
		if est.BookedPassengers < 0 || est.BookedPassengers > 171 {
			t.Fatalf("booked %d outside [0, 171] for demand %d", est.BookedPassengers, demand)
		}
		booked := float64(est.BookedPassengers)
		revenue := est.Revenue.InexactFloat64()
		if revenue < booked*minFare-0.01 || revenue > booked*maxFare+0.01 {
			t.Fatalf("revenue %v outside fare bounds for %d passengers", revenue, est.BookedPassengers)
		}
		cost := est.OperatingCost.InexactFloat64()
		if cost < revenue*minCost-0.01 || cost > revenue*maxCost+0.01 {
			t.Fatalf("cost %v outside [0.6, 0.8] of revenue %v", cost, revenue)
		}
		if est.Revenue.Exponent() < -2 || est.OperatingCost.Exponent() < -2 {
			t.Fatalf("money not rounded to cents: %s %s", est.Revenue.Decimal, est.OperatingCost.Decimal)
		}
	}
}

func TestEstimateFlightCeiling(t *testing.T) {
	easy := SettingsFor(models.DifficultyEasy)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		if est := estimateFlight(rng, 100, 100, easy); est.BookedPassengers > 95 {
			t.Fatalf("booking ratio above 0.95: %d of 100", est.BookedPassengers)
		}
	}
	if est := estimateFlight(rng, 100, 0, easy); est.BookedPassengers != 0 || !est.Revenue.IsZero() {
		t.Fatalf("zero demand should book nobody, got %+v", est)
	}
}

func TestExpectedFlight(t *testing.T) {
	est := expectedFlight(180, 48, SettingsFor(models.DifficultyNormal))
	if est.BookedPassengers != 71 {
		t.Fatalf("expected 71 passengers, got %d", est.BookedPassengers)
	}
	if est.Revenue.String() != "15975.00" || est.OperatingCost.String() != "11182.50" {
		t.Fatalf("unexpected money %s / %s", est.Revenue, est.OperatingCost)
	}
}

func TestSettingsForUnknownDifficulty(t *testing.T) {
	if got := SettingsFor("impossible").StartingMoney.String(); got != "10000000.00" {
		t.Fatalf("unknown difficulty starting money = %s", got)
	}
	if got := SettingsFor(models.DifficultyHard).StartingMoney.String(); got != "7500000.00" {
		t.Fatalf("hard starting money = %s", got)
	}
}

func TestFlightNumber(t *testing.T) {
	cases := map[int64]string{1: "SK1049", 12: "SK2569"}
	for id, want := range cases {
		if got := FlightNumber("SK", id); got != want {
			t.Fatalf("FlightNumber(SK, %d) = %s, want %s", id, got, want)
		}
	}
	for id := int64(1); id < 5000; id += 37 {
		n := FlightNumber("", id)
		if len(n) != 4 || n < "1000" || n > "9999" {
			t.Fatalf("route %d produced %q", id, n)
		}
	}
}

func TestRegistration(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		us := Registration(rng, "JFK")
		if len(us) != 5 || us[0] != 'N' || us[1] < '1' {
			t.Fatalf("US registration %q", us)
		}
		uk := Registration(rng, "LHR")
		if !strings.HasPrefix(uk, "G-") || len(uk) != 5 || strings.ContainsAny(uk[2:], "IO") {
			t.Fatalf("UK registration %q", uk)
		}
	}
	if got := Registration(rng, "ZZZ"); !strings.HasPrefix(got, "X-") {
		t.Fatalf("unknown hub registration %q", got)
	}
	if got := Registration(rng, "SYD"); !strings.HasPrefix(got, "VH-") {
		t.Fatalf("Sydney registration %q", got)
	}
}

func TestRouteDemand(t *testing.T) {
	airports, err := DefaultAirports()
	if err != nil {
		t.Fatalf("default airports: %v", err)
	}
	by := make(map[string]models.Airport)
	for _, a := range airports {
		by[a.Code] = a
	}
	cases := []struct {
		from, to string
		want     int
	}{
		{"JFK", "LHR", 48},
		{"LHR", "JFK", 48},
		{"CDG", "ORY", 52},
		{"LHR", "MAN", 53},
		{"JFK", "LAX", 50},
	}
	for _, c := range cases {
		if got := RouteDemand(by[c.from], by[c.to]); got != c.want {
			t.Fatalf("demand %s-%s = %d, want %d", c.from, c.to, got, c.want)
		}
	}
	for _, a := range airports {
		for _, b := range airports {
			if a.Code == b.Code {
				continue
			}
			if d := RouteDemand(a, b); d < 5 || d > 100 {
				t.Fatalf("demand %s-%s = %d out of range", a.Code, b.Code, d)
			}
		}
	}
}
