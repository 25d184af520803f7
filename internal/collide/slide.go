package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/world"
)

const (
	maxSubstep = 0.45
	skin       = 1e-3
	overlapEps = 1e-4
)

// Box is an upright collider whose position is the center of its bottom face.
type Box struct {
	HalfWidth float32
	Height    float32
}

// Blocked reports which axes were stopped by geometry during a move.
type Blocked struct {
	X bool
	Y bool
	Z bool
}

func (b Blocked) Any() bool {
	return b.X || b.Y || b.Z
}

// Mover resolves a displacement against solid geometry.
type Mover interface {
	MoveAndSlide(box Box, pos, delta mgl32.Vec3) (mgl32.Vec3, Blocked)
}

// MoveAndSlide applies delta one axis at a time (Y, then X, then Z), clamping
// each axis at the first solid voxel so the remaining axes slide along it.
// Long moves are split into substeps so no voxel can be tunnelled through.
func (v *Voxels) MoveAndSlide(box Box, pos, delta mgl32.Vec3) (mgl32.Vec3, Blocked) {
	var blocked Blocked
	longest := math.Max(math.Abs(float64(delta.X())), math.Max(math.Abs(float64(delta.Y())), math.Abs(float64(delta.Z()))))
	if longest == 0 {
		return pos, blocked
	}
	steps := int(math.Ceil(longest / maxSubstep))
	part := delta.Mul(1 / float32(steps))

	for i := 0; i < steps; i++ {
		for _, axis := range [...]int{1, 0, 2} {
			if part[axis] == 0 || blockedOn(blocked, axis) {
				continue
			}
			applied, hit := v.moveAxis(box, pos, axis, part[axis])
			pos[axis] += applied
			if hit {
				setBlocked(&blocked, axis)
			}
		}
	}
	return pos, blocked
}

func (v *Voxels) moveAxis(box Box, pos mgl32.Vec3, axis int, amount float32) (float32, bool) {
	lo, hi := bounds(box, pos)

	var cross [2]int
	n := 0
	for i := 0; i < 3; i++ {
		if i != axis {
			cross[n] = i
			n++
		}
	}
	aMin := floor(lo[cross[0]] + overlapEps)
	aMax := floor(hi[cross[0]] - overlapEps)
	bMin := floor(lo[cross[1]] + overlapEps)
	bMax := floor(hi[cross[1]] - overlapEps)

	layerSolid := func(layer int) bool {
		for a := aMin; a <= aMax; a++ {
			for b := bMin; b <= bMax; b++ {
				var c [3]int
				c[axis] = layer
				c[cross[0]] = a
				c[cross[1]] = b
				if v.grid.Solid(world.BlockCoord{X: c[0], Y: c[1], Z: c[2]}) {
					return true
				}
			}
		}
		return false
	}

	if amount > 0 {
		first := floor(hi[axis]-overlapEps) + 1
		last := floor(hi[axis] + amount - overlapEps)
		for layer := first; layer <= last; layer++ {
			if layerSolid(layer) {
				applied := float32(layer) - skin - hi[axis]
				if applied < 0 {
					applied = 0
				}
				return applied, true
			}
		}
		return amount, false
	}

	first := floor(lo[axis]+overlapEps) - 1
	last := floor(lo[axis] + amount + overlapEps)
	for layer := first; layer >= last; layer-- {
		if layerSolid(layer) {
			applied := float32(layer+1) + skin - lo[axis]
			if applied > 0 {
				applied = 0
			}
			return applied, true
		}
	}
	return amount, false
}

func bounds(box Box, pos mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	lo := mgl32.Vec3{pos.X() - box.HalfWidth, pos.Y(), pos.Z() - box.HalfWidth}
	hi := mgl32.Vec3{pos.X() + box.HalfWidth, pos.Y() + box.Height, pos.Z() + box.HalfWidth}
	return lo, hi
}

// Overlaps reports whether the box at pos intersects any solid voxel.
func (v *Voxels) Overlaps(box Box, pos mgl32.Vec3) bool {
	lo, hi := bounds(box, pos)
	for x := floor(lo.X() + overlapEps); x <= floor(hi.X()-overlapEps); x++ {
		for y := floor(lo.Y() + overlapEps); y <= floor(hi.Y()-overlapEps); y++ {
			for z := floor(lo.Z() + overlapEps); z <= floor(hi.Z()-overlapEps); z++ {
				if v.grid.Solid(world.BlockCoord{X: x, Y: y, Z: z}) {
					return true
				}
			}
		}
	}
	return false
}

func floor(value float32) int {
	return int(math.Floor(float64(value)))
}

func blockedOn(b Blocked, axis int) bool {
	switch axis {
	case 0:
		return b.X
	case 1:
		return b.Y
	default:
		return b.Z
	}
}

func setBlocked(b *Blocked, axis int) {
	switch axis {
	case 0:
		b.X = true
	case 1:
		b.Y = true
	default:
		b.Z = true
	}
}
