package api

import (
	"net/http"
	"time"

	"skytycoon/internal/game"
	"skytycoon/internal/models"
)

type createPlayerRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=32"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Hub        string `json:"hub" validate:"omitempty,len=3,alpha"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy normal hard"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.CreatePlayer(r.Context(), game.NewPlayer{
		Username:   req.Username,
		Password:   req.Password,
		Hub:        req.Hub,
		Difficulty: models.Difficulty(req.Difficulty),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type sessionRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	Player    models.Player `json:"player"`
}

// handleCreateSession logs a player in. A token is only issued when
// authentication is enabled.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := sessionResponse{Player: p}
	if s.tokens != nil {
		token, expires, err := s.tokens.Issue(p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Token = token
		resp.ExpiresAt = &expires
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = s.authorize(r, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.GetPlayer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updatePlayerRequest struct {
	Hub *string `json:"hub" validate:"omitempty,len=3,alpha"`
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = s.authorize(r, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updatePlayerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.UpdatePlayer(r.Context(), id, game.PlayerUpdate{Hub: req.Hub})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
