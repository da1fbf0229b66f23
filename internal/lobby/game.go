package lobby

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arena/internal/contract"
	"arena/internal/gamemap"
	"arena/internal/sim"
)

const (
	projectileSpeed = 240.0

	towerRange             = 150.0
	towerFireRate          = 1.0
	towerHeadRotationSpeed = 2.0
)

// creepStats is the server-side balance table, indexed by the creep a player
// selected in the game lobby.
type creepStats struct {
	health            float64
	damage            float64
	armor             float64
	attackRange       float64
	fireRate          float64
	moveSpeed         float64
	baseRotationSpeed float64
	headRotationSpeed float64
}

var creepStatTable = [contract.NumCreeps]creepStats{
	// brawler
	{health: 120, damage: 10, armor: 2, attackRange: 110, fireRate: 1.0, moveSpeed: 50, baseRotationSpeed: 3, headRotationSpeed: 5},
	// lancer
	{health: 80, damage: 16, armor: 0, attackRange: 150, fireRate: 0.6, moveSpeed: 45, baseRotationSpeed: 3, headRotationSpeed: 4},
	// scout
	{health: 70, damage: 7, armor: 0, attackRange: 90, fireRate: 1.5, moveSpeed: 70, baseRotationSpeed: 4, headRotationSpeed: 6},
}

// Game is a running match: one creep entity per player taken from the game
// lobby (ghosts included), the map's towers, and the projectiles in flight.
// Its state is mutated only from the lobby loop; the timer goroutine just
// posts tick and broadcast messages into the inbox.
type Game struct {
	lobby *Lobby
	id    string
	log   *zap.Logger

	mapDetails  *gamemap.MapDetails
	players     []*Player
	world       *sim.Table
	towers      []sim.EntityID
	projectiles []*sim.Projectile

	finished bool
	done     chan struct{}
}

func newGame(l *Lobby, gl *GameLobby, id string) *Game {
	g := &Game{
		lobby:      l,
		id:         id,
		log:        l.log.With(zap.String("game", id)),
		mapDetails: gl.mapDetails,
		world:      sim.NewTable(),
		done:       make(chan struct{}),
	}
	for team := 0; team < gl.numTeams; team++ {
		for _, detail := range gl.mapDetails.TeamDetails[team].Towers {
			tower := &sim.Entity{
				Position:          sim.Vec{X: detail.Position.X, Y: detail.Position.Y},
				HeadRotationSpeed: towerHeadRotationSpeed,
				Range:             towerRange,
				FireRate:          towerFireRate,
				Team:              contract.Team(team),
				Health:            detail.Health,
				MaxHealth:         detail.Health,
				Damage:            detail.Damage,
				Alive:             true,
			}
			g.towers = append(g.towers, g.world.Add(tower))
		}
	}
	spawned := make([]int, gl.numTeams)
	for _, p := range gl.players {
		state := p.GameLobbyState
		team := int(state.Team)
		spawns := gl.mapDetails.TeamDetails[team].Spawns
		spawn := spawns[spawned[team]%len(spawns)]
		spawned[team]++
		stats := creepStatTable[state.Creep]
		creep := &sim.Entity{
			Position:          sim.Vec{X: spawn.X, Y: spawn.Y},
			BaseRotationSpeed: stats.baseRotationSpeed,
			HeadRotationSpeed: stats.headRotationSpeed,
			Range:             stats.attackRange,
			FireRate:          stats.fireRate,
			Team:              state.Team,
			MoveSpeed:         stats.moveSpeed,
			Health:            stats.health,
			MaxHealth:         stats.health,
			Damage:            stats.damage,
			Armor:             stats.armor,
			Alive:             true,
			SpawnPoint:        sim.Vec{X: spawn.X, Y: spawn.Y},
		}
		p.Location = LocationGame
		p.LocationID = id
		p.Entity = g.world.Add(creep)
		g.players = append(g.players, p)
	}
	return g
}

// startLoops runs the physics and broadcast timers. Fires are delivered as
// inbox messages so a tick can never interleave with an event handler.
func (g *Game) startLoops(tickRate, sendRate float64) {
	inbox := g.lobby.inbox
	go func() {
		tick := time.NewTicker(time.Duration(float64(time.Second) / tickRate))
		defer tick.Stop()
		send := time.NewTicker(time.Duration(float64(time.Second) / sendRate))
		defer send.Stop()
		dt := 1 / tickRate
		for {
			select {
			case <-g.done:
				return
			case <-tick.C:
				select {
				case inbox <- gameTick{gameID: g.id, dt: dt}:
				case <-g.done:
					return
				}
			case <-send.C:
				select {
				case inbox <- gameBroadcast{gameID: g.id}:
				case <-g.done:
					return
				}
			}
		}
	}()
}

func (g *Game) stopLoops() {
	select {
	case <-g.done:
	default:
		close(g.done)
	}
}

// onClickTarget records a clicked ground position as the entity's movement
// goal. An existing entity target survives; the priority table in the sim
// package resolves the composite behavior.
func (g *Game) onClickTarget(p *Player, data contract.ClickTargetData) {
	e, ok := g.world.GetAlive(p.Entity)
	if !ok {
		return
	}
	e.TargetPosition = sim.Vec{X: data.X, Y: data.Y}
	e.HasTargetPosition = true
	e.MoveTowardsEntity = false
}

// handleDisconnect ghosts the player: the creep stays in the world and keeps
// simulating, the roster entry loses its connection, and the caller purges
// the session.
func (g *Game) handleDisconnect(p *Player) {
	for i, cur := range g.players {
		if cur == p {
			ghost := *p
			ghost.Conn = nil
			ghost.Disconnected = true
			g.players[i] = &ghost
			g.log.Info("player ghosted in game", zap.String("username", p.Username))
			return
		}
	}
}

// tick advances the world one frame. Phase order is fixed: targeting sees
// last tick's positions, turning precedes firing so shots leave an aligned
// head, and movement runs last so this tick's rotations gate this tick's
// translation.
func (g *Game) tick(dt float64) {
	if g.finished {
		return
	}
	g.acquireTargets()
	g.turnAndFire(dt)
	g.advanceProjectiles(dt)
	g.moveEntities(dt)
	g.checkGameOver()
}

// acquireTargets picks the nearest in-range opposing creep for any combatant
// without a target, first-seen winning distance ties. A held target that the
// entity is not chasing is dropped once it leaves range or dies.
func (g *Game) acquireTargets() {
	g.world.ForEach(func(e *sim.Entity) {
		if !e.Alive || e.FireRate <= 0 {
			return
		}
		if e.TargetEntity != sim.NoEntity {
			t, ok := g.world.GetAlive(e.TargetEntity)
			switch {
			case !ok:
				e.TargetEntity = sim.NoEntity
				e.MoveTowardsEntity = false
			case !e.MoveTowardsEntity && e.Position.DistSq(t.Position) > e.Range*e.Range:
				e.TargetEntity = sim.NoEntity
			}
		}
		if e.TargetEntity != sim.NoEntity {
			return
		}
		best := sim.NoEntity
		var bestDistSq float64
		for _, p := range g.players {
			c, ok := g.world.GetAlive(p.Entity)
			if !ok || c.ID == e.ID || c.Team == e.Team {
				continue
			}
			d := e.Position.DistSq(c.Position)
			if d <= e.Range*e.Range && (best == sim.NoEntity || d < bestDistSq) {
				best = c.ID
				bestDistSq = d
			}
		}
		if best != sim.NoEntity {
			e.TargetEntity = best
			e.MoveTowardsEntity = false
		}
	})
}

// targetPosOf resolves an entity's target handle to a position, or nil.
func (g *Game) targetPosOf(e *sim.Entity) *sim.Vec {
	t, ok := g.world.GetAlive(e.TargetEntity)
	if !ok {
		return nil
	}
	pos := t.Position
	return &pos
}

func (g *Game) turnAndFire(dt float64) {
	g.world.ForEach(func(e *sim.Entity) {
		if !e.Alive {
			return
		}
		targetPos := g.targetPosOf(e)
		if targetPos != nil || e.HasTargetPosition {
			e.TurnTowardsTarget(dt, targetPos)
		}
		e.TickCooldowns(dt)
		if e.ShouldFire(targetPos) {
			e.FireCooldown = 1 / e.FireRate
			g.projectiles = append(g.projectiles, &sim.Projectile{
				ID:       uuid.NewString(),
				Position: e.Position,
				Rotation: e.HeadRotation,
				Owner:    e.ID,
				Target:   e.TargetEntity,
				Speed:    projectileSpeed,
				Damage:   e.Damage,
				Team:     e.Team,
			})
		}
	})
}

// advanceProjectiles moves every shot toward its target's current position
// and resolves impacts. A shot whose target died in flight is dropped
// without effect.
func (g *Game) advanceProjectiles(dt float64) {
	live := g.projectiles[:0]
	for _, pr := range g.projectiles {
		t, ok := g.world.GetAlive(pr.Target)
		if !ok {
			continue
		}
		if pr.Tick(dt, t.Position) {
			t.TakeDamage(pr.Damage)
			if t.Health == 0 {
				t.Alive = false
				g.log.Info("entity destroyed", zap.Int("entity", int(t.ID)), zap.Int("team", int(t.Team)))
			}
			continue
		}
		live = append(live, pr)
	}
	g.projectiles = live
}

func (g *Game) moveEntities(dt float64) {
	g.world.ForEach(func(e *sim.Entity) {
		if !e.Alive || e.MoveSpeed <= 0 {
			return
		}
		e.MoveTowardsTarget(dt, g.targetPosOf(e))
	})
}

// checkGameOver ends the match once at most one team still has a living
// creep. Mutual destruction reports no winner.
func (g *Game) checkGameOver() {
	alive := make(map[contract.Team]bool)
	for _, p := range g.players {
		if e, ok := g.world.GetAlive(p.Entity); ok {
			alive[e.Team] = true
		}
	}
	if len(alive) > 1 {
		return
	}
	winner := contract.Team(-1)
	for team := range alive {
		winner = team
	}
	g.finished = true
	g.lobby.finishGame(g, winner)
}

func (g *Game) getState() contract.GameUpdateData {
	state := contract.GameUpdateData{
		Towers:      make([]contract.TowerState, 0, len(g.towers)),
		Minis:       []contract.CreepState{},
		Creeps:      make([]contract.CreepState, 0, len(g.players)),
		Projectiles: make([]contract.ProjectileState, 0, len(g.projectiles)),
		Walls:       []contract.Position{},
	}
	for _, id := range g.towers {
		t, ok := g.world.Get(id)
		if !ok {
			continue
		}
		state.Towers = append(state.Towers, contract.TowerState{
			Position: contract.Position{X: t.Position.X, Y: t.Position.Y},
			Rotation: t.HeadRotation,
			Team:     t.Team,
			Health:   t.Health,
		})
	}
	for _, p := range g.players {
		e, ok := g.world.Get(p.Entity)
		if !ok {
			continue
		}
		state.Creeps = append(state.Creeps, contract.CreepState{
			ID:           p.Username,
			Username:     p.Username,
			Position:     contract.Position{X: e.Position.X, Y: e.Position.Y},
			BodyRotation: e.BaseRotation,
			HeadRotation: e.HeadRotation,
			Team:         e.Team,
			Health:       e.Health,
			MaxHealth:    e.MaxHealth,
		})
	}
	for _, pr := range g.projectiles {
		state.Projectiles = append(state.Projectiles, contract.ProjectileState{
			Position: contract.Position{X: pr.Position.X, Y: pr.Position.Y},
			Rotation: pr.Rotation,
			Team:     pr.Team,
		})
	}
	return state
}

func (g *Game) broadcast(event string, data any) {
	for _, p := range g.players {
		p.send(event, data)
	}
}

func (g *Game) broadcastState() {
	g.broadcast(contract.GameUpdate, g.getState())
}
