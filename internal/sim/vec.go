package sim

// Vec is a position or displacement in world coordinates. The world uses the
// screen convention: y grows downward.
type Vec struct {
	X float64
	Y float64
}

// DistSq returns the squared distance to another point. Range and movement
// checks compare squared distances to avoid the sqrt.
func (v Vec) DistSq(o Vec) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	return dx*dx + dy*dy
}
