package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("record: %w", &TeamNotFoundError{Which: Team2, TeamID: "t-2"})

	assert.ErrorIs(t, err, ErrTeamNotFound)

	var tnf *TeamNotFoundError
	assert.True(t, errors.As(err, &tnf))
	assert.Equal(t, Team2, tnf.Which)
	assert.Contains(t, err.Error(), "team 2 (t-2)")
}

func TestNotEnoughPlayersErrorReportsCounts(t *testing.T) {
	err := &NotEnoughPlayersError{Needed: 10, Found: 7}

	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Contains(t, err.Error(), "need 10, found 7")
}

func TestStoreErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapStoreError("commit", cause)

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
}

func TestWrapStoreErrorDoesNotDoubleWrap(t *testing.T) {
	first := WrapStoreError("get", ErrConflict)
	second := WrapStoreError("commit", first)

	assert.Same(t, first, second)
	assert.ErrorIs(t, second, ErrConflict)
}

func TestWrapStoreErrorNil(t *testing.T) {
	assert.NoError(t, WrapStoreError("get", nil))
}

func TestValidationErrorsAreNotRetryable(t *testing.T) {
	assert.False(t, IsRetryable(ErrInvalidDuration))
	assert.False(t, IsRetryable(&TeamSizeMismatchError{Team1Size: 5, Team2Size: 4}))
}

func TestWrapLookupErrorPassesNotFoundThrough(t *testing.T) {
	assert.Same(t, ErrPlayerNotFound, WrapLookupError("get player", ErrPlayerNotFound, ErrPlayerNotFound))

	err := WrapLookupError("get player", errors.New("timeout"), ErrPlayerNotFound)
	assert.ErrorIs(t, err, ErrStore)
}

func TestWrapStoreErrorPassesNameRejectionsThrough(t *testing.T) {
	assert.Same(t, ErrNicknameTaken, WrapStoreError("create player", ErrNicknameTaken))

	err := WrapStoreError("rename team", fmt.Errorf("commit: %w", ErrTeamNameTaken))
	assert.ErrorIs(t, err, ErrTeamNameTaken)
	assert.NotErrorIs(t, err, ErrStore)
	assert.False(t, IsRetryable(err))
}
