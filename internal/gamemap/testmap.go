package gamemap

var testMap = MapDetails{
	Name:   "Test Map",
	Width:  800,
	Height: 400,

	MinNumTeams: 2,
	MaxNumTeams: 4,

	MinPlayersPerTeam: 1,
	MaxPlayersPerTeam: 4,

	TeamDetails: []TeamDetails{
		{
			Spawns: []Pos{
				{X: 30, Y: 70},
				{X: 70, Y: 70},
				{X: 110, Y: 70},
				{X: 150, Y: 70},
			},
			Towers: []TowerDetail{
				{Position: Pos{X: 250, Y: 150}, Damage: 1, Health: 100},
			},
			Base: Pos{X: 30, Y: 30},
		},
		{
			Spawns: []Pos{
				{X: 670, Y: 70},
				{X: 710, Y: 70},
				{X: 740, Y: 70},
				{X: 770, Y: 70},
			},
			Towers: []TowerDetail{
				{Position: Pos{X: 550, Y: 150}, Damage: 1, Health: 100},
			},
			Base: Pos{X: 770, Y: 30},
		},
		{
			Spawns: []Pos{
				{X: 30, Y: 330},
				{X: 70, Y: 330},
				{X: 110, Y: 330},
				{X: 150, Y: 330},
			},
			Towers: []TowerDetail{
				{Position: Pos{X: 250, Y: 250}, Damage: 1, Health: 100},
			},
			Base: Pos{X: 30, Y: 370},
		},
		{
			Spawns: []Pos{
				{X: 670, Y: 330},
				{X: 710, Y: 330},
				{X: 740, Y: 330},
				{X: 770, Y: 330},
			},
			Towers: []TowerDetail{
				{Position: Pos{X: 550, Y: 250}, Damage: 1, Health: 100},
			},
			Base: Pos{X: 770, Y: 370},
		},
	},
}
