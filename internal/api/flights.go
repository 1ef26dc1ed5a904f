package api

import (
	"context"
	"net/http"

	"skytycoon/internal/game"
	"skytycoon/internal/models"
)

type scheduleFlightRequest struct {
	PlayerID          int64  `json:"playerId" validate:"required,gt=0"`
	RouteID           int64  `json:"routeId" validate:"required,gt=0"`
	AircraftID        int64  `json:"aircraftId" validate:"required,gt=0"`
	FlightNumber      string `json:"flightNumber" validate:"omitempty,max=10,alphanum"`
	DepartureDate     string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	DepartureTime     string `json:"departureTime" validate:"required,clock"`
	ArrivalDate       string `json:"arrivalDate" validate:"omitempty,datetime=2006-01-02"`
	ArrivalTime       string `json:"arrivalTime" validate:"omitempty,clock"`
	MaximumPassengers int    `json:"maximumPassengers" validate:"omitempty,gt=0"`
}

func (s *Server) handleScheduleFlight(w http.ResponseWriter, r *http.Request) {
	var req scheduleFlightRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.authorize(r, req.PlayerID); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.engine.ScheduleFlight(r.Context(), req.PlayerID, game.NewFlight{
		RouteID:           req.RouteID,
		AircraftID:        req.AircraftID,
		FlightNumber:      req.FlightNumber,
		DepartureDate:     date(req.DepartureDate),
		DepartureTime:     req.DepartureTime,
		ArrivalDate:       optionalDate(&req.ArrivalDate),
		ArrivalTime:       req.ArrivalTime,
		MaximumPassengers: req.MaximumPassengers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handlePlayerFlights(w http.ResponseWriter, r *http.Request) {
	s.listFlights(w, r, s.engine.ListFlights)
}

func (s *Server) handleUpcomingFlights(w http.ResponseWriter, r *http.Request) {
	s.listFlights(w, r, s.engine.UpcomingFlights)
}

func (s *Server) listFlights(w http.ResponseWriter, r *http.Request, list func(context.Context, int64) ([]models.Flight, error)) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	flights, err := list(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

type updateFlightRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	DepartureDate *string `json:"departureDate" validate:"omitempty,datetime=2006-01-02"`
	DepartureTime *string `json:"departureTime" validate:"omitempty,clock"`
	ArrivalDate   *string `json:"arrivalDate" validate:"omitempty,datetime=2006-01-02"`
	ArrivalTime   *string `json:"arrivalTime" validate:"omitempty,clock"`
}

func (s *Server) handleUpdateFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateFlightRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.engine.GetFlight(r.Context(), id)
	if err == nil {
		err = s.authorize(r, f.PlayerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	upd := game.FlightUpdate{
		DepartureDate: optionalDate(req.DepartureDate),
		DepartureTime: req.DepartureTime,
		ArrivalDate:   optionalDate(req.ArrivalDate),
		ArrivalTime:   req.ArrivalTime,
	}
	if req.Status != nil {
		status := models.FlightStatus(*req.Status)
		upd.Status = &status
	}
	f, err = s.engine.UpdateFlight(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
