package sim

import (
	"math"

	"go.uber.org/zap"
)

const twoPi = 2 * math.Pi

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// Bearing returns the angle from one point toward another, in [0, 2π).
// The y component is inverted because world y grows downward while angles
// follow the usual math convention.
func Bearing(from, to Vec) float64 {
	a := math.Atan2(from.Y-to.Y, to.X-from.X)
	if a < 0 {
		a += twoPi
	}
	return a
}

// ArcDist returns the shortest angular distance between two angles in
// [0, 2π), accounting for the wrap through zero.
func ArcDist(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = twoPi - d
	}
	return d
}

// StepRotation advances current toward target along the shorter of the two
// arcs, by at most maxTurn. When the remaining arc fits inside the turn
// budget the result snaps exactly onto target, so repeated steps converge
// without overshoot. Both angles must already be in [0, 2π).
func StepRotation(target, current, maxTurn float64) float64 {
	next := -1.0
	if target > current {
		diff := target - current
		if diff <= math.Pi {
			// counter-clockwise
			if diff <= maxTurn {
				next = target
			} else {
				next = current + maxTurn
			}
		} else {
			// clockwise, wrapping through zero
			if twoPi-diff <= maxTurn {
				next = target
			} else {
				next = current - maxTurn
				if next < 0 {
					next += twoPi
				}
			}
		}
	} else {
		diff := current - target
		if diff <= math.Pi {
			// clockwise
			if diff <= maxTurn {
				next = target
			} else {
				next = current - maxTurn
			}
		} else {
			// counter-clockwise, wrapping through 2π
			if twoPi-diff <= maxTurn {
				next = target
			} else {
				next = current + maxTurn
				if next >= twoPi {
					next -= twoPi
				}
			}
		}
	}
	if next < 0 || next >= twoPi {
		// Indicates a logic defect, not a recoverable condition; degrade
		// instead of poisoning the tick.
		zap.L().Warn("rotation step left [0, 2π)",
			zap.Float64("target", target),
			zap.Float64("current", current),
			zap.Float64("result", next))
		next = NormalizeAngle(next)
	}
	return next
}
