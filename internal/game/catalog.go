package game

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

//go:embed data/airports.csv
var defaultAirportsCSV []byte

// DefaultCatalog lists the aircraft models for sale.
func DefaultCatalog() []models.AircraftModel {
	return []models.AircraftModel{
		{
			Key:            "A320neo",
			Name:           "Airbus A320neo",
			Type:           "Narrow-body",
			Capacity:       180,
			Range:          6500,
			CruisingSpeed:  870,
			FuelEfficiency: 2.4,
			Price:          models.MustMoney("101500000"),
			Description:    "Best-selling single-aisle jet with excellent fuel efficiency and passenger comfort.",
		},
		{
			Key:            "A330300",
			Name:           "Airbus A330-300",
			Type:           "Wide-body",
			Capacity:       295,
			Range:          11300,
			CruisingSpeed:  871,
			FuelEfficiency: 3.2,
			Price:          models.MustMoney("275400000"),
			Description:    "Wide-body twin with the range and capacity for long-haul international routes.",
		},
	}
}

// LoadCatalogJSON reads a JSON array of aircraft models from path.
func LoadCatalogJSON(path string) ([]models.AircraftModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []models.AircraftModel
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse aircraft catalog %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, errors.New("aircraft catalog is empty")
	}
	return list, nil
}

// DefaultAirports returns the built-in airport list.
func DefaultAirports() ([]models.Airport, error) {
	return LoadAirportsCSV(bytes.NewReader(defaultAirportsCSV))
}

// LoadAirportsCSV parses an airports CSV with a header row. Only code, name
// and coordinates are required; demand_rating and landing_fee may be blank.
func LoadAirportsCSV(r io.Reader) ([]models.Airport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	idx := func(name string) int {
		for i, h := range headers {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}
	codeIdx := idx("code")
	nameIdx := idx("name")
	cityIdx := idx("city")
	countryIdx := idx("country")
	latIdx := idx("latitude")
	lonIdx := idx("longitude")
	demandIdx := idx("demand_rating")
	feeIdx := idx("landing_fee")
	if codeIdx < 0 || nameIdx < 0 || latIdx < 0 || lonIdx < 0 {
		return nil, errors.New("airports csv needs code, name, latitude and longitude columns")
	}
	field := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var airports []models.Airport
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		code := strings.ToUpper(field(rec, codeIdx))
		if code == "" {
			continue
		}
		lat, err := strconv.ParseFloat(field(rec, latIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(field(rec, lonIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		ap := models.Airport{
			Code:      code,
			Name:      field(rec, nameIdx),
			City:      field(rec, cityIdx),
			Country:   field(rec, countryIdx),
			Latitude:  lat,
			Longitude: lon,
		}
		if v := field(rec, demandIdx); v != "" {
			if ap.DemandRating, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("line %d: demand_rating: %w", line, err)
			}
		}
		if v := field(rec, feeIdx); v != "" {
			if ap.LandingFee, err = models.ParseMoney(v); err != nil {
				return nil, fmt.Errorf("line %d: landing_fee: %w", line, err)
			}
		}
		airports = append(airports, ap)
	}
	return airports, nil
}

// SeedAirports inserts airports missing from st and returns how many were added.
func SeedAirports(ctx context.Context, st store.Store, airports []models.Airport) (int, error) {
	added := 0
	for _, ap := range airports {
		_, err := st.CreateAirport(ctx, ap)
		switch {
		case errors.Is(err, store.ErrConflict):
			continue
		case err != nil:
			return added, fmt.Errorf("seed airport %s: %w", ap.Code, err)
		}
		added++
	}
	slog.Info("Airports seeded", "component", "game", "added", added, "total", len(airports))
	return added, nil
}
