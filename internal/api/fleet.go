package api

import (
	"net/http"

	"skytycoon/internal/game"
	"skytycoon/internal/models"
)

type purchaseAircraftRequest struct {
	PlayerID          int64   `json:"playerId" validate:"required,gt=0"`
	Model             string  `json:"model" validate:"required,max=40"`
	Registration      string  `json:"registration" validate:"omitempty,max=10"`
	Capacity          int     `json:"capacity" validate:"omitempty,gt=0"`
	Range             int     `json:"range" validate:"omitempty,gt=0"`
	CruisingSpeed     int     `json:"cruisingSpeed" validate:"omitempty,gt=0"`
	FuelEfficiency    float64 `json:"fuelEfficiency" validate:"omitempty,gt=0"`
	PurchasePrice     string  `json:"purchasePrice" validate:"omitempty,decimal"`
	HasWifi           bool    `json:"hasWifi"`
	HasEntertainment  bool    `json:"hasEntertainment"`
	HasPremiumSeating bool    `json:"hasPremiumSeating"`
}

func (s *Server) handlePurchaseAircraft(w http.ResponseWriter, r *http.Request) {
	var req purchaseAircraftRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.authorize(r, req.PlayerID); err != nil {
		writeError(w, r, err)
		return
	}
	spec := game.AircraftSpec{
		Model:             req.Model,
		Registration:      req.Registration,
		Capacity:          req.Capacity,
		Range:             req.Range,
		CruisingSpeed:     req.CruisingSpeed,
		FuelEfficiency:    req.FuelEfficiency,
		HasWifi:           req.HasWifi,
		HasEntertainment:  req.HasEntertainment,
		HasPremiumSeating: req.HasPremiumSeating,
	}
	if req.PurchasePrice != "" {
		price := money(req.PurchasePrice)
		spec.PurchasePrice = &price
	}
	ac, err := s.engine.PurchaseAircraft(r.Context(), req.PlayerID, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ac)
}

func (s *Server) handlePlayerAircraft(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.engine.ListAircraft(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type updateAircraftRequest struct {
	Status            *string `json:"status" validate:"omitempty,oneof=active maintenance en-route"`
	HasWifi           *bool   `json:"hasWifi"`
	HasEntertainment  *bool   `json:"hasEntertainment"`
	HasPremiumSeating *bool   `json:"hasPremiumSeating"`
}

func (s *Server) handleUpdateAircraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateAircraftRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ac, err := s.engine.GetAircraft(r.Context(), id)
	if err == nil {
		err = s.authorize(r, ac.PlayerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	upd := game.AircraftUpdate{
		HasWifi:           req.HasWifi,
		HasEntertainment:  req.HasEntertainment,
		HasPremiumSeating: req.HasPremiumSeating,
	}
	if req.Status != nil {
		status := models.AircraftStatus(*req.Status)
		upd.Status = &status
	}
	ac, err = s.engine.UpdateAircraft(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

func (s *Server) handleAircraftModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Catalog())
}
