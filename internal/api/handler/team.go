package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/mcoot/teamladder/internal/api/request"
	"github.com/mcoot/teamladder/internal/api/response"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/services/balance"
	"github.com/mcoot/teamladder/internal/services/team"
)

// TeamHandler handles team management and balanced drafting
type TeamHandler struct {
	teamService    *team.Service
	balanceService *balance.Service
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *team.Service, balanceService *balance.Service) *TeamHandler {
	return &TeamHandler{
		teamService:    teamService,
		balanceService: balanceService,
	}
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTeamRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	ids := lo.Map(req.PlayerIDs, func(id string, _ int) model.PlayerID { return model.PlayerID(id) })
	t, err := h.teamService.CreateTeam(r.Context(), req.Name, ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TeamFromModel(t))
}

// Get handles GET /api/v1/teams/{id}
// The response includes the loaded member records.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.TeamID(mux.Vars(r)["id"])

	t, err := h.teamService.GetTeam(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	members, err := h.teamService.Members(r.Context(), t)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamWithMembers(t, members))
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamListFromModel(teams))
}

// Rename handles PATCH /api/v1/teams/{id}
func (h *TeamHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := model.TeamID(mux.Vars(r)["id"])

	var req request.RenameTeamRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	t, err := h.teamService.RenameTeam(r.Context(), id, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamFromModel(t))
}

// AddMember handles POST /api/v1/teams/{id}/members
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id := model.TeamID(mux.Vars(r)["id"])

	var req request.AddMemberRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	t, err := h.teamService.JoinTeam(r.Context(), id, model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamFromModel(t))
}

// RemoveMember handles DELETE /api/v1/teams/{id}/members/{player_id}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	t, err := h.teamService.LeaveTeam(r.Context(), model.TeamID(vars["id"]), model.PlayerID(vars["player_id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamFromModel(t))
}

// Generate handles POST /api/v1/teams/generate
func (h *TeamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateTeamsRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	size := h.teamService.TeamSize()
	if req.TeamSize != nil {
		size = *req.TeamSize
	}

	teamA, teamB, err := h.balanceService.GenerateTeams(r.Context(), size)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GeneratedTeams{
		TeamA: response.TeamFromModel(teamA),
		TeamB: response.TeamFromModel(teamB),
	})
}
