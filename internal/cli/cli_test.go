package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamladder/internal/api"
	"github.com/mcoot/teamladder/internal/api/apierr"
	"github.com/mcoot/teamladder/internal/api/response"
	"github.com/mcoot/teamladder/internal/factory"
	"github.com/mcoot/teamladder/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp(factory.LadderConfig{TeamSize: 2, BaselineRating: 1000})
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		PlayerService:  s.app.PlayerService,
		TeamService:    s.app.TeamService,
		MatchService:   s.app.MatchService,
		BalanceService: s.app.BalanceService,
	}))
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// run executes the CLI against the test server and returns stdout
func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := cmd.ExecuteContext(s.T().Context())
	return out.String(), err
}

func (s *CLISuite) runJSON(v any, args ...string) {
	out, err := s.run(append(args, "--output", "json")...)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal([]byte(out), v), out)
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Equal("Status: ok\n", out)
}

func (s *CLISuite) TestPlayerCreateAndGet() {
	var created response.Player
	s.runJSON(&created, "player", "create", "Alice")
	s.Equal("Alice", created.Nickname)

	out, err := s.run("player", "get", created.ID)
	s.Require().NoError(err)
	s.Contains(out, "Player: Alice ("+created.ID+")")
	s.Contains(out, "Rating: 1000.0")
}

func (s *CLISuite) TestAPIErrorsAreReturned() {
	_, err := s.run("player", "get", "ghost")

	var apiErr *APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(404, apiErr.Status)
	s.Equal(apierr.CodePlayerNotFound, apiErr.Code)
}

func (s *CLISuite) TestGenerateRecordAndLeaderboard() {
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		_, err := s.run("player", "create", name)
		s.Require().NoError(err)
	}

	var generated response.GeneratedTeams
	s.runJSON(&generated, "team", "generate")
	s.Len(generated.TeamA.PlayerIDs, 2)

	out, err := s.run("team", "rename", generated.TeamA.ID, "Red")
	s.Require().NoError(err)
	s.Contains(out, "Team: Red")

	var recorded response.Match
	s.runJSON(&recorded, "match", "record", generated.TeamA.ID, generated.TeamB.ID, "--winner", generated.TeamA.ID, "--hours", "3")
	s.Len(recorded.RatingChanges, 4)

	out, err = s.run("match", "list", "--team", generated.TeamB.ID)
	s.Require().NoError(err)
	s.Contains(out, recorded.ID)

	var board response.PlayerList
	s.runJSON(&board, "player", "leaderboard", "--limit", "1")
	s.Require().Len(board.Players, 1)
	s.Greater(board.Players[0].Rating, 1000.0)
}

func (s *CLISuite) TestTeamMembership() {
	var a, b, c response.Player
	s.runJSON(&a, "player", "create", "Alice")
	s.runJSON(&b, "player", "create", "Bob")
	s.runJSON(&c, "player", "create", "Carol")

	var team response.Team
	s.runJSON(&team, "team", "create", "Red", a.ID, b.ID)

	_, err := s.run("team", "leave", team.ID, b.ID)
	s.Require().NoError(err)

	s.runJSON(&team, "team", "join", team.ID, c.ID)
	s.Equal([]string{a.ID, c.ID}, team.PlayerIDs)

	out, err := s.run("team", "get", team.ID)
	s.Require().NoError(err)
	s.Contains(out, "Carol")
}

func (s *CLISuite) TestMatchRecordNeedsExactlyOneResult() {
	_, err := s.run("match", "record", "t1", "t2", "--hours", "1")
	s.EqualError(err, "exactly one of --winner or --draw is required")

	_, err = s.run("match", "record", "t1", "t2", "--hours", "1", "--draw", "--winner", "t1")
	s.Error(err)
}

func (s *CLISuite) TestRejectsUnknownOutputFormat() {
	_, err := s.run("health", "--output", "yaml")
	s.Error(err)
}
