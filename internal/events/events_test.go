package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type recordingPublisher struct {
	got []Event
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.got = append(p.got, e)
	return p.err
}

func TestLogKeepsLastTwentyPerPlayer(t *testing.T) {
	log := NewLog(nil)
	for i := range 25 {
		log.Record(context.Background(), Event{PlayerID: 1, Kind: FlightCompleted, Message: fmt.Sprintf("flight %d", i)})
	}
	log.Record(context.Background(), Event{PlayerID: 2, Kind: DayAdvanced, Message: "other player"})

	recent := log.Recent(1)
	if len(recent) != maxEvents {
		t.Fatalf("expected %d events, got %d", maxEvents, len(recent))
	}
	if recent[0].Message != "flight 5" || recent[len(recent)-1].Message != "flight 24" {
		t.Fatalf("unexpected window %q .. %q", recent[0].Message, recent[len(recent)-1].Message)
	}
	if got := log.Recent(2); len(got) != 1 {
		t.Fatalf("player 2 events = %d", len(got))
	}
	if got := log.Recent(3); len(got) != 0 {
		t.Fatalf("unknown player should have no events, got %d", len(got))
	}
}

func TestLogForwardsAndSkipsEmpty(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	log := NewLog(pub)
	log.Record(context.Background(), Event{PlayerID: 1, Kind: DayAdvanced})
	log.Record(context.Background(), Event{PlayerID: 1, Kind: DayAdvanced, Message: "Day advanced to 2025-01-02"})

	if len(pub.got) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.got))
	}
	if len(log.Recent(1)) != 1 {
		t.Fatalf("publish failure must not drop the event from the log")
	}
}

func TestSubject(t *testing.T) {
	got := Subject("skytycoon.events", Event{PlayerID: 42, Kind: FlightCompleted})
	if got != "skytycoon.events.42.flight.completed" {
		t.Fatalf("subject = %q", got)
	}
}
