package core

import "github.com/klei1984/max-sub005/engine/pathfind"

// Player represents a team seat
type Player struct {
	Team     pathfind.TeamID
	Name     string
	Kind     pathfind.TeamType
	Color    uint32 // RGBA
	Defeated bool
}

// PlayerManager manages all players in a game
type PlayerManager struct {
	Players []*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{}
}

func (pm *PlayerManager) AddPlayer(p *Player) {
	pm.Players = append(pm.Players, p)
}

func (pm *PlayerManager) GetPlayer(team pathfind.TeamID) *Player {
	for _, p := range pm.Players {
		if p.Team == team {
			return p
		}
	}
	return nil
}

// TeamType returns who controls a team, TeamNone for unknown teams
func (pm *PlayerManager) TeamType(team pathfind.TeamID) pathfind.TeamType {
	if p := pm.GetPlayer(team); p != nil && !p.Defeated {
		return p.Kind
	}
	return pathfind.TeamNone
}

// Teams returns the teams still in play
func (pm *PlayerManager) Teams() []pathfind.TeamID {
	var teams []pathfind.TeamID
	for _, p := range pm.Players {
		if !p.Defeated {
			teams = append(teams, p.Team)
		}
	}
	return teams
}
