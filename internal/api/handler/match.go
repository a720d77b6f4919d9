package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamladder/internal/api/request"
	"github.com/mcoot/teamladder/internal/api/response"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/match"
)

// MatchHandler handles match recording and history
type MatchHandler struct {
	matchService *match.Service
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *match.Service) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// Record handles POST /api/v1/matches
func (h *MatchHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordMatchRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var winner *model.TeamID
	if req.WinnerID != nil {
		id := model.TeamID(*req.WinnerID)
		winner = &id
	}

	m, err := h.matchService.RecordMatch(r.Context(), match.Request{
		Team1ID:       model.TeamID(req.Team1ID),
		Team2ID:       model.TeamID(req.Team2ID),
		WinnerID:      winner,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(m))
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	m, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// List handles GET /api/v1/matches?team_id=
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var team *model.TeamID
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		id := model.TeamID(raw)
		team = &id
	}

	matches, err := h.matchService.ListMatches(r.Context(), team)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchListFromModel(matches))
}
