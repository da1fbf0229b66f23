package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectile_AdvancesTowardTarget(t *testing.T) {
	p := &Projectile{Position: Vec{X: 0, Y: 0}, Speed: 10}
	target := Vec{X: 100, Y: 0}

	hit := p.Tick(1, target)
	require.False(t, hit)
	require.InDelta(t, 10, p.Position.X, 1e-9)
	require.InDelta(t, 0, p.Position.Y, 1e-9)
	require.InDelta(t, 0, p.Rotation, 1e-9)
}

func TestProjectile_HomesOnMovedTarget(t *testing.T) {
	p := &Projectile{Position: Vec{X: 0, Y: 0}, Speed: 10}

	// Target now straight down the screen; bearing is 3π/2.
	hit := p.Tick(1, Vec{X: 0, Y: 100})
	require.False(t, hit)
	require.InDelta(t, 3*math.Pi/2, p.Rotation, 1e-9)
	require.InDelta(t, 0, p.Position.X, 1e-9)
	require.InDelta(t, 10, p.Position.Y, 1e-9)
}

func TestProjectile_SnapsOntoTargetWithinFrameTravel(t *testing.T) {
	p := &Projectile{Position: Vec{X: 0, Y: 0}, Speed: 10}
	target := Vec{X: 3, Y: 4} // distance 5, travel 10

	hit := p.Tick(1, target)
	require.True(t, hit)
	require.Equal(t, target, p.Position)
}

func TestTable_HandlesResolveAndInvalidate(t *testing.T) {
	tbl := NewTable()
	a := &Entity{Alive: true}
	b := &Entity{Alive: true}
	idA := tbl.Add(a)
	idB := tbl.Add(b)
	require.NotEqual(t, NoEntity, idA)
	require.NotEqual(t, idA, idB)

	got, ok := tbl.Get(idA)
	require.True(t, ok)
	require.Same(t, a, got)

	_, ok = tbl.Get(NoEntity)
	require.False(t, ok)

	b.Alive = false
	_, ok = tbl.GetAlive(idB)
	require.False(t, ok)

	var order []EntityID
	tbl.ForEach(func(e *Entity) { order = append(order, e.ID) })
	require.Equal(t, []EntityID{idA, idB}, order)
}
