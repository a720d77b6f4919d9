package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/teamladder/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeTeamNotFound        = "TEAM_NOT_FOUND"
	CodeMatchNotFound       = "MATCH_NOT_FOUND"
	CodeNicknameTaken       = "NICKNAME_TAKEN"
	CodeTeamNameTaken       = "TEAM_NAME_TAKEN"
	CodePlayerAlreadyInTeam = "PLAYER_ALREADY_IN_TEAM"
	CodePlayerNotInTeam     = "PLAYER_NOT_IN_TEAM"
	CodeTeamFull            = "TEAM_FULL"
	CodeInvalidPlayerCount  = "INVALID_PLAYER_COUNT"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeSameTeam            = "SAME_TEAM"
	CodeInvalidWinner       = "INVALID_WINNER"
	CodeTeamSizeMismatch    = "TEAM_SIZE_MISMATCH"
	CodeEmptyTeam           = "EMPTY_TEAM"
	CodeInvalidTeamSize     = "INVALID_TEAM_SIZE"
	CodeNotEnoughPlayers    = "NOT_ENOUGH_PLAYERS"
	CodeConflict            = "CONFLICT"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError.
// Store failures are checked before not-found errors so that a missing
// record discovered mid-operation is reported as a store problem.
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Store errors
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Record was modified concurrently, retry the request"}}
	case errors.Is(err, model.ErrStore):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Storage is unavailable, retry the request"}}

	// Lookups
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrTeamNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTeamNotFound, err.Error()}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}

	// Players and rosters
	case errors.Is(err, model.ErrNicknameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "nickname is required"}}
	case errors.Is(err, model.ErrNicknameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNicknameTaken, "Nickname is already taken"}}
	case errors.Is(err, model.ErrTeamNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "name is required"}}
	case errors.Is(err, model.ErrTeamNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeTeamNameTaken, "Team name is already taken"}}
	case errors.Is(err, model.ErrPlayerAlreadyInTeam):
		return &httpError{http.StatusConflict, APIError{CodePlayerAlreadyInTeam, "Player is already in a team"}}
	case errors.Is(err, model.ErrPlayerNotInTeam):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotInTeam, "Player is not in this team"}}
	case errors.Is(err, model.ErrTeamFull):
		return &httpError{http.StatusConflict, APIError{CodeTeamFull, "Team is full"}}
	case errors.Is(err, model.ErrInvalidPlayerCount):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerCount, "Wrong number of distinct players for a team"}}

	// Match validation
	case errors.Is(err, model.ErrInvalidDuration):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDuration, "Match duration must be at least one hour"}}
	case errors.Is(err, model.ErrSameTeam):
		return &httpError{http.StatusBadRequest, APIError{CodeSameTeam, "A team cannot play against itself"}}
	case errors.Is(err, model.ErrInvalidWinner):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidWinner, "Winner must be one of the competing teams"}}
	case errors.Is(err, model.ErrTeamSizeMismatch):
		return &httpError{http.StatusConflict, APIError{CodeTeamSizeMismatch, err.Error()}}
	case errors.Is(err, model.ErrEmptyTeam):
		return &httpError{http.StatusConflict, APIError{CodeEmptyTeam, "Team has no players"}}

	// Balancing
	case errors.Is(err, model.ErrInvalidTeamSize):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTeamSize, "Team size must be greater than zero"}}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &httpError{http.StatusConflict, APIError{CodeNotEnoughPlayers, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
