package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNicknameRequired    = errors.New("nickname is required")
	ErrNicknameTaken       = errors.New("nickname is already taken")
	ErrPlayerAlreadyInTeam = errors.New("player is already in a team")
	ErrPlayerNotInTeam     = errors.New("player is not in this team")

	// Team errors
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameTaken      = errors.New("team name is already taken")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrInvalidPlayerCount = errors.New("invalid number of players for a team")
	ErrTeamFull           = errors.New("team is full")

	// Match errors
	ErrMatchNotFound    = errors.New("match not found")
	ErrInvalidDuration  = errors.New("match duration must be at least one hour")
	ErrSameTeam         = errors.New("a team cannot play against itself")
	ErrInvalidWinner    = errors.New("winner must be one of the competing teams")
	ErrTeamSizeMismatch = errors.New("teams must have the same non-zero number of players")
	ErrEmptyTeam        = errors.New("team has no players")

	// Balancing errors
	ErrInvalidTeamSize  = errors.New("team size must be greater than zero")
	ErrNotEnoughPlayers = errors.New("not enough unassigned players")

	// Storage errors
	ErrConflict = errors.New("record was modified concurrently")
	ErrStore    = errors.New("store operation failed")
)

// TeamSide identifies which side of a match a team was submitted as
type TeamSide int

const (
	Team1 TeamSide = 1
	Team2 TeamSide = 2
)

// TeamNotFoundError names which side of a match could not be resolved
type TeamNotFoundError struct {
	Which  TeamSide
	TeamID TeamID
}

func (e *TeamNotFoundError) Error() string {
	return fmt.Sprintf("team %d (%s) not found", e.Which, e.TeamID)
}

func (e *TeamNotFoundError) Unwrap() error {
	return ErrTeamNotFound
}

// TeamSizeMismatchError reports the two roster sizes that could not be matched
type TeamSizeMismatchError struct {
	Team1Size int
	Team2Size int
}

func (e *TeamSizeMismatchError) Error() string {
	return fmt.Sprintf("%s: team 1 has %d, team 2 has %d", ErrTeamSizeMismatch, e.Team1Size, e.Team2Size)
}

func (e *TeamSizeMismatchError) Unwrap() error {
	return ErrTeamSizeMismatch
}

// NotEnoughPlayersError reports how many unassigned players were required vs. available
type NotEnoughPlayersError struct {
	Needed int
	Found  int
}

func (e *NotEnoughPlayersError) Error() string {
	return fmt.Sprintf("%s: need %d, found %d", ErrNotEnoughPlayers, e.Needed, e.Found)
}

func (e *NotEnoughPlayersError) Unwrap() error {
	return ErrNotEnoughPlayers
}

// StoreError wraps a failure from a storage collaborator.
// It matches both ErrStore and its cause with errors.Is.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Cause}
}

// WrapStoreError wraps err in a StoreError unless it is nil or already one.
// A store rejecting a taken name is not a store failure and passes through.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNicknameTaken) || errors.Is(err, ErrTeamNameTaken) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Cause: err}
}

// WrapLookupError is WrapStoreError for reads: notFound passes through
// unwrapped since a missing record is an expected result
func WrapLookupError(op string, err error, notFound error) error {
	if errors.Is(err, notFound) {
		return err
	}
	return WrapStoreError(op, err)
}

// IsRetryable reports whether the caller may retry the failed operation.
// Only store failures qualify; validation errors never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStore)
}
