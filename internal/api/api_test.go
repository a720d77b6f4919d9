package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamladder/internal/api"
	"github.com/mcoot/teamladder/internal/api/apierr"
	"github.com/mcoot/teamladder/internal/api/response"
	"github.com/mcoot/teamladder/internal/factory"
	"github.com/mcoot/teamladder/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app     *factory.TestApp
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp(factory.LadderConfig{TeamSize: 2, BaselineRating: 1000})
	s.handler = api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		PlayerService:  s.app.PlayerService,
		TeamService:    s.app.TeamService,
		MatchService:   s.app.MatchService,
		BalanceService: s.app.BalanceService,
	})
}

func (s *APISuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *APISuite) decode(rr *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func (s *APISuite) errorCode(rr *httptest.ResponseRecorder) string {
	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	return resp.Error.Code
}

func (s *APISuite) createPlayer(nickname string) response.Player {
	rr := s.request(http.MethodPost, "/api/v1/players", map[string]string{"nickname": nickname})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var p response.Player
	s.decode(rr, &p)
	return p
}

func (s *APISuite) createTeam(name string, playerIDs ...string) response.Team {
	rr := s.request(http.MethodPost, "/api/v1/teams", map[string]any{"name": name, "player_ids": playerIDs})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var t response.Team
	s.decode(rr, &t)
	return t
}

func (s *APISuite) TestHealthCheck() {
	rr := s.request(http.MethodGet, "/api/v1/health", nil)

	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestCreateAndGetPlayer() {
	created := s.createPlayer("Alice")
	s.Equal("Alice", created.Nickname)
	s.Equal(1000.0, created.Rating)
	s.Equal(50, created.KFactor)
	s.Nil(created.TeamID)

	rr := s.request(http.MethodGet, "/api/v1/players/"+created.ID, nil)
	s.Equal(http.StatusOK, rr.Code)

	var fetched response.Player
	s.decode(rr, &fetched)
	s.Equal(created.ID, fetched.ID)
}

func (s *APISuite) TestCreatePlayerValidation() {
	rr := s.request(http.MethodPost, "/api/v1/players", map[string]string{})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidRequest, s.errorCode(rr))

	s.createPlayer("Alice")
	rr = s.request(http.MethodPost, "/api/v1/players", map[string]string{"nickname": "Alice"})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeNicknameTaken, s.errorCode(rr))
}

func (s *APISuite) TestGetUnknownPlayer() {
	rr := s.request(http.MethodGet, "/api/v1/players/nope", nil)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodePlayerNotFound, s.errorCode(rr))
}

func (s *APISuite) TestListPlayersEmpty() {
	rr := s.request(http.MethodGet, "/api/v1/players", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"players":[]}`, rr.Body.String())
}

func (s *APISuite) TestTeamLifecycle() {
	a := s.createPlayer("Alice")
	b := s.createPlayer("Bob")
	c := s.createPlayer("Carol")

	team := s.createTeam("Red", a.ID, b.ID)
	s.Equal([]string{a.ID, b.ID}, team.PlayerIDs)

	// Full team rejects a third member
	rr := s.request(http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]string{"player_id": c.ID})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeTeamFull, s.errorCode(rr))

	rr = s.request(http.MethodDelete, "/api/v1/teams/"+team.ID+"/members/"+b.ID, nil)
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.request(http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]string{"player_id": c.ID})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.request(http.MethodPatch, "/api/v1/teams/"+team.ID, map[string]string{"name": "Crimson"})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.request(http.MethodGet, "/api/v1/teams/"+team.ID, nil)
	s.Require().Equal(http.StatusOK, rr.Code)

	var fetched response.Team
	s.decode(rr, &fetched)
	s.Equal("Crimson", fetched.Name)
	s.Equal([]string{a.ID, c.ID}, fetched.PlayerIDs)
	s.Require().Len(fetched.Members, 2)
	s.Equal("Carol", fetched.Members[1].Nickname)
}

func (s *APISuite) TestRemoveNonMember() {
	a := s.createPlayer("Alice")
	b := s.createPlayer("Bob")
	c := s.createPlayer("Carol")
	team := s.createTeam("Red", a.ID, b.ID)

	rr := s.request(http.MethodDelete, "/api/v1/teams/"+team.ID+"/members/"+c.ID, nil)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodePlayerNotInTeam, s.errorCode(rr))
}

func (s *APISuite) TestGenerateTeams() {
	for i := range 4 {
		s.createPlayer(fmt.Sprintf("player%d", i))
	}

	rr := s.request(http.MethodPost, "/api/v1/teams/generate", nil)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var generated response.GeneratedTeams
	s.decode(rr, &generated)
	s.Len(generated.TeamA.PlayerIDs, 2)
	s.Len(generated.TeamB.PlayerIDs, 2)
	s.NotEqual(generated.TeamA.Name, generated.TeamB.Name)

	// Everyone is now assigned
	rr = s.request(http.MethodPost, "/api/v1/teams/generate", map[string]int{"team_size": 1})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeNotEnoughPlayers, s.errorCode(rr))
}

func (s *APISuite) TestGenerateTeamsInvalidSize() {
	rr := s.request(http.MethodPost, "/api/v1/teams/generate", map[string]int{"team_size": 0})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidTeamSize, s.errorCode(rr))
}

func (s *APISuite) TestGenerateTeamsHugeSize() {
	for i := range 3 {
		s.createPlayer(fmt.Sprintf("player%d", i))
	}

	rr := s.request(http.MethodPost, "/api/v1/teams/generate", map[string]int{"team_size": math.MaxInt/2 + 1})
	s.Equal(http.StatusConflict, rr.Code, rr.Body.String())
	s.Equal(apierr.CodeNotEnoughPlayers, s.errorCode(rr))
}

func (s *APISuite) TestRecordMatchAndLeaderboard() {
	a := s.createPlayer("Alice")
	b := s.createPlayer("Bob")
	c := s.createPlayer("Carol")
	d := s.createPlayer("Dave")
	red := s.createTeam("Red", a.ID, b.ID)
	blue := s.createTeam("Blue", c.ID, d.ID)

	rr := s.request(http.MethodPost, "/api/v1/matches", map[string]any{
		"team1_id":       red.ID,
		"team2_id":       blue.ID,
		"winner_id":      red.ID,
		"duration_hours": 2,
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var recorded response.Match
	s.decode(rr, &recorded)
	s.False(recorded.Draw)
	s.Require().Len(recorded.RatingChanges, 4)
	for _, rc := range recorded.RatingChanges {
		if rc.TeamID == red.ID {
			s.InDelta(25.0, rc.Delta, 1e-9)
			s.Equal("win", rc.Outcome)
		} else {
			s.InDelta(-25.0, rc.Delta, 1e-9)
			s.Equal("loss", rc.Outcome)
		}
	}

	rr = s.request(http.MethodGet, "/api/v1/matches/"+recorded.ID, nil)
	s.Equal(http.StatusOK, rr.Code)

	rr = s.request(http.MethodGet, "/api/v1/matches?team_id="+blue.ID, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var list response.MatchList
	s.decode(rr, &list)
	s.Len(list.Matches, 1)

	rr = s.request(http.MethodGet, "/api/v1/leaderboard?limit=2", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var board response.PlayerList
	s.decode(rr, &board)
	s.Require().Len(board.Players, 2)
	s.ElementsMatch([]string{a.ID, b.ID}, []string{board.Players[0].ID, board.Players[1].ID})
	s.InDelta(1025.0, board.Players[0].Rating, 1e-9)
	s.Equal(2, board.Players[0].HoursPlayed)
}

func (s *APISuite) TestRecordMatchRejectsInvalidRequests() {
	a := s.createPlayer("Alice")
	b := s.createPlayer("Bob")
	red := s.createTeam("Red", a.ID, b.ID)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "missing team",
			body:   map[string]any{"team1_id": red.ID},
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidRequest,
		},
		{
			name:   "negative duration",
			body:   map[string]any{"team1_id": red.ID, "team2_id": "other", "duration_hours": -1},
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidDuration,
		},
		{
			name:   "same team",
			body:   map[string]any{"team1_id": red.ID, "team2_id": red.ID, "duration_hours": 1},
			status: http.StatusBadRequest,
			code:   apierr.CodeSameTeam,
		},
		{
			name:   "unknown team",
			body:   map[string]any{"team1_id": red.ID, "team2_id": "ghost", "duration_hours": 1},
			status: http.StatusNotFound,
			code:   apierr.CodeTeamNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := s.request(http.MethodPost, "/api/v1/matches", tt.body)
			s.Equal(tt.status, rr.Code, rr.Body.String())
			s.Equal(tt.code, s.errorCode(rr))
		})
	}

	rr := s.request(http.MethodGet, "/api/v1/matches", nil)
	s.JSONEq(`{"matches":[]}`, rr.Body.String())
}

func (s *APISuite) TestLeaderboardRejectsBadLimit() {
	rr := s.request(http.MethodGet, "/api/v1/leaderboard?limit=abc", nil)
	s.Equal(http.StatusBadRequest, rr.Code)
}
