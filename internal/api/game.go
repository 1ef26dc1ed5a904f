package api

import "net/http"

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.engine.AdvanceDay(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.SaveGame(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":  true,
		"player": p,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerId")
	if err == nil {
		err = s.authorize(r, playerID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.engine.RecentEvents(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
