package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamladder/internal/api/handler"
	"github.com/mcoot/teamladder/internal/api/middleware"
	"github.com/mcoot/teamladder/internal/api/response"
	"github.com/mcoot/teamladder/internal/services/balance"
	"github.com/mcoot/teamladder/internal/services/match"
	"github.com/mcoot/teamladder/internal/services/player"
	"github.com/mcoot/teamladder/internal/services/team"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	PlayerService  *player.Service
	TeamService    *team.Service
	MatchService   *match.Service
	BalanceService *balance.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)
	teamHandler := handler.NewTeamHandler(cfg.TeamService, cfg.BalanceService)
	matchHandler := handler.NewMatchHandler(cfg.MatchService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Player routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)

	// Team routes; /teams/generate is registered before /teams/{id}
	api.HandleFunc("/teams", teamHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/teams/generate", teamHandler.Generate).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}", teamHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}", teamHandler.Rename).Methods(http.MethodPatch)
	api.HandleFunc("/teams/{id}/members", teamHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}/members/{player_id}", teamHandler.RemoveMember).Methods(http.MethodDelete)

	// Match routes
	api.HandleFunc("/matches", matchHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
