// Package sim is the per-tick combat simulation: entity kinematics,
// projectile flight, and the table of stable entity handles a game mutates
// each frame. It knows nothing about rooms or transport.
package sim

import (
	"math"

	"arena/internal/contract"
)

const (
	// MoveThreshold is the body misalignment (radians) tolerated before an
	// entity starts walking. The entity finishes turning, then moves.
	MoveThreshold = 0.01
	// ShootThreshold is the head misalignment (radians) tolerated before an
	// entity may fire.
	ShootThreshold = 0.01
	// StopMoveThreshold is the squared distance at which an entity counts as
	// having arrived and stops walking.
	StopMoveThreshold = 1.0
)

// EntityID is a stable handle into a game's entity table. Zero is never
// assigned and means "no entity".
type EntityID int

const NoEntity EntityID = 0

// Entity is a simulated physical unit: a player's creep or a tower. The body
// and head rotate independently; the body gates movement, the head gates
// fire. Target references are handles, resolved against the owning table by
// the caller, so a dead target invalidates cleanly instead of dangling.
type Entity struct {
	ID       EntityID
	Position Vec

	BaseRotation      float64 // radians, [0, 2π)
	BaseRotationSpeed float64 // radians per second
	HeadRotation      float64
	HeadRotationSpeed float64

	Range        float64
	FireRate     float64 // shots per second
	FireCooldown float64 // seconds until the next shot is allowed
	Team         contract.Team
	Footprint    float64
	MoveSpeed    float64

	Health    float64
	MaxHealth float64
	Damage    float64
	Armor     float64 // carried but not applied to damage resolution

	Alive      bool
	SpawnPoint Vec

	HasTargetPosition bool
	TargetPosition    Vec
	TargetEntity      EntityID
	MoveTowardsEntity bool
}

// TakeDamage clamps health at zero. Death detection is the caller's job.
func (e *Entity) TakeDamage(damage float64) {
	e.Health = math.Max(e.Health-damage, 0)
}

// TickCooldowns advances the fire cooldown, floored at zero.
func (e *Entity) TickCooldowns(dt float64) {
	if e.FireCooldown > 0 {
		e.FireCooldown -= dt
		if e.FireCooldown < 0 {
			e.FireCooldown = 0
		}
	}
}

// ShouldFire reports whether the entity may shoot its target this tick:
// cooldown elapsed, target within range, and head pointing at it.
// targetPos is the resolved position of TargetEntity, nil when it has none.
func (e *Entity) ShouldFire(targetPos *Vec) bool {
	if targetPos == nil || e.FireCooldown != 0 {
		return false
	}
	if e.Position.DistSq(*targetPos) > e.Range*e.Range {
		return false
	}
	return ArcDist(Bearing(e.Position, *targetPos), e.HeadRotation) < ShootThreshold
}

// TurnTowardsTarget rotates the body and head toward their respective goals:
//
//	target entity only      -> body and head toward the entity
//	entity and position     -> body toward the position, head toward the entity
//	target position only    -> body and head toward the position
//	no target               -> unchanged
//
// Each part advances along the shorter arc by at most its rotation speed
// times dt.
func (e *Entity) TurnTowardsTarget(dt float64, targetPos *Vec) {
	baseTurn := e.BaseRotationSpeed * dt
	headTurn := e.HeadRotationSpeed * dt

	switch {
	case targetPos != nil && e.HasTargetPosition:
		positionAngle := Bearing(e.Position, e.TargetPosition)
		entityAngle := Bearing(e.Position, *targetPos)
		e.BaseRotation = StepRotation(positionAngle, e.BaseRotation, baseTurn)
		e.HeadRotation = StepRotation(entityAngle, e.HeadRotation, headTurn)
	case targetPos != nil:
		entityAngle := Bearing(e.Position, *targetPos)
		e.BaseRotation = StepRotation(entityAngle, e.BaseRotation, baseTurn)
		e.HeadRotation = StepRotation(entityAngle, e.HeadRotation, headTurn)
	case e.HasTargetPosition:
		positionAngle := Bearing(e.Position, e.TargetPosition)
		e.BaseRotation = StepRotation(positionAngle, e.BaseRotation, baseTurn)
		e.HeadRotation = StepRotation(positionAngle, e.HeadRotation, headTurn)
	}
}

// MoveTowardsTarget walks the body toward its movement goal: the target
// entity's position when MoveTowardsEntity is set, otherwise the clicked
// target position. Movement is suppressed when already close enough, and
// until the body has finished turning toward the goal.
func (e *Entity) MoveTowardsTarget(dt float64, targetPos *Vec) {
	var goal Vec
	switch {
	case e.MoveTowardsEntity && targetPos != nil:
		goal = *targetPos
	case e.HasTargetPosition:
		goal = e.TargetPosition
	default:
		return
	}
	if e.Position.DistSq(goal) <= StopMoveThreshold {
		return
	}
	if ArcDist(Bearing(e.Position, goal), e.BaseRotation) < MoveThreshold {
		e.Position.X += math.Cos(e.BaseRotation) * dt * e.MoveSpeed
		e.Position.Y -= math.Sin(e.BaseRotation) * dt * e.MoveSpeed
	}
}
