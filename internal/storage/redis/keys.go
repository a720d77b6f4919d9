package redis

import (
	"fmt"

	"github.com/mcoot/teamladder/internal/model"
)

// keys builds every Redis key under a configurable prefix
type keys struct {
	prefix string
}

// player returns the Redis key for a Player
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// team returns the Redis key for a Team
func (k keys) team(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", k.prefix, id)
}

// match returns the Redis key for a Match
func (k keys) match(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", k.prefix, id)
}

// playerIndex is the SET of all player ids
func (k keys) playerIndex() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// teamIndex is the SET of all team ids
func (k keys) teamIndex() string {
	return fmt.Sprintf("%s:idx:teams", k.prefix)
}

// matchIndex is the SET of all match ids
func (k keys) matchIndex() string {
	return fmt.Sprintf("%s:idx:matches", k.prefix)
}

// nickname maps a player nickname to the id of the player holding it
func (k keys) nickname(name string) string {
	return fmt.Sprintf("%s:name:player:%s", k.prefix, name)
}

// teamName maps a team name to the id of the team holding it
func (k keys) teamName(name string) string {
	return fmt.Sprintf("%s:name:team:%s", k.prefix, name)
}
