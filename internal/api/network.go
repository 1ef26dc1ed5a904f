package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skytycoon/internal/game"
)

func (s *Server) handleAirports(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListAirports(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	ap, err := s.engine.GetAirport(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ap)
}

type createRouteRequest struct {
	PlayerID        int64  `json:"playerId" validate:"required,gt=0"`
	OriginCode      string `json:"originCode" validate:"required,len=3,alpha"`
	DestinationCode string `json:"destinationCode" validate:"required,len=3,alpha"`
}

func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.authorize(r, req.PlayerID); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.engine.CreateRoute(r.Context(), req.PlayerID, req.OriginCode, req.DestinationCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (s *Server) handlePlayerRoutes(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.engine.ListRoutes(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type routeAnalysisRequest struct {
	Origin      string   `json:"origin" validate:"required,len=3,alpha"`
	Destination string   `json:"destination" validate:"required,len=3,alpha"`
	Models      []string `json:"models" validate:"omitempty,dive,required"`
	PlayerID    int64    `json:"playerId" validate:"omitempty,gt=0"`
}

func (s *Server) handleRouteAnalysis(w http.ResponseWriter, r *http.Request) {
	var req routeAnalysisRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	analysis, err := s.engine.AnalyzeRoute(r.Context(), game.RouteAnalysisRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Models:      req.Models,
		PlayerID:    req.PlayerID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
