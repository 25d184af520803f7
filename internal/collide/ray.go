package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/world"
)

// BreakEpsilon is how far behind the hit surface the targeted voxel is sampled.
const BreakEpsilon = 0.01

// Grid answers whether a cell blocks movement and rays.
type Grid interface {
	Solid(b world.BlockCoord) bool
}

// Hit describes the first solid voxel met by a ray. Normal is zero when the
// ray starts inside a solid voxel.
type Hit struct {
	Hit      bool
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Block    world.BlockCoord
	Distance float32
}

// Prober casts rays against solid geometry.
type Prober interface {
	Ray(origin, dir mgl32.Vec3, maxDist float32) Hit
}

// BreakTarget returns the voxel just inside the hit surface.
func BreakTarget(h Hit) world.BlockCoord {
	return world.BlockAt(h.Point.Sub(h.Normal.Mul(BreakEpsilon)))
}

// Voxels implements Prober and Mover directly over a block grid.
type Voxels struct {
	grid Grid
}

func NewVoxels(grid Grid) *Voxels {
	return &Voxels{grid: grid}
}

// Ray walks the grid cell by cell along dir until a solid voxel is entered
// or maxDist is exceeded.
func (v *Voxels) Ray(origin, dir mgl32.Vec3, maxDist float32) Hit {
	if maxDist <= 0 || dir.LenSqr() == 0 {
		return Hit{}
	}
	d := dir.Normalize()
	cell := world.BlockAt(origin)
	if v.grid.Solid(cell) {
		return Hit{Hit: true, Point: origin, Block: cell}
	}

	pos := [3]int{cell.X, cell.Y, cell.Z}
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		o := float64(origin[i])
		di := float64(d[i])
		switch {
		case di > 0:
			step[i] = 1
			tMax[i] = (float64(pos[i]+1) - o) / di
			tDelta[i] = 1 / di
		case di < 0:
			step[i] = -1
			tMax[i] = (float64(pos[i]) - o) / di
			tDelta[i] = -1 / di
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	limit := float64(maxDist)
	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t := tMax[axis]
		if t > limit {
			return Hit{}
		}
		pos[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		next := world.BlockCoord{X: pos[0], Y: pos[1], Z: pos[2]}
		if !v.grid.Solid(next) {
			continue
		}
		var normal mgl32.Vec3
		normal[axis] = float32(-step[axis])
		return Hit{
			Hit:      true,
			Point:    origin.Add(d.Mul(float32(t))),
			Normal:   normal,
			Block:    next,
			Distance: float32(t),
		}
	}
}
