package sim

import (
	"math"

	"arena/internal/contract"
)

// Projectile is a shot in flight, bound to a target entity by handle. It
// homes on the target's current position each tick.
type Projectile struct {
	ID       string
	Position Vec
	Rotation float64
	Owner    EntityID
	Target   EntityID
	Speed    float64
	Damage   float64
	Team     contract.Team
}

// Tick advances toward targetPos and reports impact. The shot hits when the
// remaining distance fits inside this frame's travel; it then snaps exactly
// onto the target so damage resolves at the point of contact.
func (p *Projectile) Tick(dt float64, targetPos Vec) bool {
	dx := targetPos.X - p.Position.X
	dy := p.Position.Y - targetPos.Y
	travel := p.Speed * dt
	if math.Sqrt(dx*dx+dy*dy) <= travel {
		p.Position = targetPos
		return true
	}
	angle := math.Atan2(dy, dx)
	if angle < 0 {
		angle += twoPi
	}
	p.Rotation = angle
	p.Position.X += math.Cos(angle) * travel
	p.Position.Y -= math.Sin(angle) * travel
	return false
}
