package api

import (
	"net/http"
	"strconv"

	"skytycoon/internal/apperr"
	"skytycoon/internal/game"
	"skytycoon/internal/models"
	"skytycoon/internal/report"
)

type postTransactionRequest struct {
	PlayerID    int64  `json:"playerId" validate:"required,gt=0"`
	Amount      string `json:"amount" validate:"required,decimal"`
	Type        string `json:"type" validate:"required,oneof=purchase revenue expense"`
	Description string `json:"description" validate:"max=200"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.authorize(r, req.PlayerID); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.engine.PostTransaction(r.Context(), req.PlayerID, game.NewTransaction{
		Amount:      money(req.Amount),
		Type:        models.TransactionType(req.Type),
		Description: req.Description,
		Date:        optionalDate(&req.Date),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handlePlayerTransactions(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.engine.ListTransactions(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	statement, err := s.engine.Statement(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, name, err := report.Render(statement)
	if err != nil {
		writeError(w, r, apperr.WrapInternal("failed to render statement", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
