// Package gamemap holds the static map definitions consumed at game start:
// per-team spawn points, base locations, and tower placements.
package gamemap

import "errors"

var ErrUnknownMap = errors.New("unknown map")

type Pos struct {
	X float64
	Y float64
}

type TowerDetail struct {
	Position Pos
	Damage   float64
	Health   float64
}

type TeamDetails struct {
	Spawns []Pos
	Base   Pos
	Towers []TowerDetail
}

type MapDetails struct {
	Name   string
	Width  float64
	Height float64

	MinNumTeams int
	MaxNumTeams int

	MinPlayersPerTeam int
	MaxPlayersPerTeam int

	TeamDetails []TeamDetails
}

// SupportsSetup reports whether the map can host a game with the requested
// team layout.
func (m *MapDetails) SupportsSetup(numTeams, maxPlayersPerTeam int) bool {
	if numTeams < m.MinNumTeams || numTeams > m.MaxNumTeams {
		return false
	}
	if maxPlayersPerTeam < m.MinPlayersPerTeam || maxPlayersPerTeam > m.MaxPlayersPerTeam {
		return false
	}
	return numTeams <= len(m.TeamDetails)
}

var registry = map[string]*MapDetails{
	"test": &testMap,
}

// Lookup resolves a map by the name clients send in createGame.
func Lookup(name string) (*MapDetails, error) {
	m, ok := registry[name]
	if !ok {
		return nil, ErrUnknownMap
	}
	return m, nil
}
