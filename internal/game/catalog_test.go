package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skytycoon/internal/store"
)

func TestDefaultAirports(t *testing.T) {
	airports, err := DefaultAirports()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(airports) != 19 {
		t.Fatalf("expected 19 airports, got %d", len(airports))
	}
	for _, a := range airports {
		if a.Code == "LHR" && (a.DemandRating != 10 || a.LandingFee.String() != "27000.00") {
			t.Fatalf("unexpected LHR %+v", a)
		}
		if a.Code == "LAX" && a.DemandRating != 0 {
			t.Fatalf("LAX should have no rating, got %d", a.DemandRating)
		}
	}
}

func TestLoadAirportsCSVErrors(t *testing.T) {
	if _, err := LoadAirportsCSV(strings.NewReader("code,name\nAAA,Alpha\n")); err == nil {
		t.Fatalf("expected error for missing coordinates")
	}
	if _, err := LoadAirportsCSV(strings.NewReader("code,name,latitude,longitude\nAAA,Alpha,north,0\n")); err == nil {
		t.Fatalf("expected error for malformed latitude")
	}
	list, err := LoadAirportsCSV(strings.NewReader("longitude,latitude,name,code\n10,0,Bravo,bbb\n"))
	if err != nil {
		t.Fatalf("reordered columns: %v", err)
	}
	if len(list) != 1 || list[0].Code != "BBB" || list[0].Longitude != 10 {
		t.Fatalf("unexpected airports %+v", list)
	}
}

func TestSeedAirportsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	airports, err := DefaultAirports()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	added, err := SeedAirports(ctx, st, airports)
	if err != nil || added != len(airports) {
		t.Fatalf("first seed added %d (%v)", added, err)
	}
	added, err = SeedAirports(ctx, st, airports)
	if err != nil || added != 0 {
		t.Fatalf("second seed added %d (%v)", added, err)
	}
}

func TestLoadCatalogJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"key":"B737","name":"Boeing 737-800","type":"Narrow-body","capacity":189,"range":5436,"cruisingSpeed":842,"fuelEfficiency":2.6,"price":"106000000"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	list, err := LoadCatalogJSON(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 1 || list[0].Capacity != 189 || list[0].Price.String() != "106000000.00" {
		t.Fatalf("unexpected catalog %+v", list)
	}
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCatalogJSON(path); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
