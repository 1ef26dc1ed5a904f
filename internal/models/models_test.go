package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlightStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to FlightStatus
		ok       bool
	}{
		{FlightScheduled, FlightCompleted, true},
		{FlightScheduled, FlightCancelled, true},
		{FlightScheduled, FlightScheduled, true},
		{FlightCompleted, FlightScheduled, false},
		{FlightCompleted, FlightCancelled, false},
		{FlightCancelled, FlightScheduled, false},
		{FlightCancelled, FlightCancelled, true},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Fatalf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
	if FlightScheduled.Terminal() || !FlightCompleted.Terminal() || !FlightCancelled.Terminal() {
		t.Fatalf("unexpected terminal classification")
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Money Money `json:"money"`
	}{MustMoney("10000000")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"money":"10000000.00"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"-101500000.00","b":27000.5}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.A.String() != "-101500000.00" || in.B.String() != "27000.50" {
		t.Fatalf("unexpected values %s %s", in.A, in.B)
	}
	if got := in.A.Plus(in.B).String(); got != "-101472999.50" {
		t.Fatalf("sum = %s", got)
	}
}

func TestMoneyWholeCents(t *testing.T) {
	for s, want := range map[string]bool{
		"12":        true,
		"12.5":      true,
		"-0.01":     true,
		"1.500":     true,
		"0.005":     false,
		"-99.999":   false,
		"101.00001": false,
	} {
		if got := MustMoney(s).WholeCents(); got != want {
			t.Errorf("WholeCents(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestDateJSONAndArithmetic(t *testing.T) {
	d := NewDate(2025, time.January, 31)
	if got := d.AddDays(1).String(); got != "2025-02-01" {
		t.Fatalf("AddDays = %s", got)
	}
	b, err := json.Marshal(d)
	if err != nil || string(b) != `"2025-01-31"` {
		t.Fatalf("marshal = %s (%v)", b, err)
	}
	var back Date
	if err := json.Unmarshal([]byte(`"2025-03-01"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Month() != time.March || back.Day() != 1 {
		t.Fatalf("unexpected date %s", back)
	}
	if err := json.Unmarshal([]byte(`"03/01/2025"`), &back); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan([]byte("2025-06-15")); err != nil || d.String() != "2025-06-15" {
		t.Fatalf("scan bytes: %s %v", d, err)
	}
	if err := d.Scan(time.Date(2025, 7, 4, 18, 30, 0, 0, time.UTC)); err != nil || d.String() != "2025-07-04" {
		t.Fatalf("scan time: %s %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}

func TestFlightDepartsAtAndProfit(t *testing.T) {
	f := Flight{
		DepartureDate: NewDate(2025, time.January, 2),
		DepartureTime: "14:45",
		Revenue:       MustMoney("27000.50"),
		OperatingCost: MustMoney("18000.25"),
	}
	want := time.Date(2025, time.January, 2, 14, 45, 0, 0, time.UTC)
	if !f.DepartsAt().Equal(want) {
		t.Fatalf("DepartsAt = %v, want %v", f.DepartsAt(), want)
	}
	if got := f.Profit().String(); got != "9000.25" {
		t.Fatalf("Profit = %s", got)
	}
	f.DepartureTime = "late"
	if !f.DepartsAt().Equal(f.DepartureDate.Time) {
		t.Fatalf("malformed time should fall back to midnight")
	}
}
