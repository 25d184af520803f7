package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PadBlock is the type written beneath the player after every carve.
const PadBlock = Road

// CarveSummary describes the outcome of a spherical carve.
type CarveSummary struct {
	Cleared int
	Pad     []BlockCoord
	Chunks  []ChunkCoord
}

// Carver removes spheres of blocks from a store while keeping the footing
// beneath a protected position intact.
type Carver struct {
	store *Store
}

func NewCarver(store *Store) *Carver {
	return &Carver{store: store}
}

// PadCells returns the 3x3 cells one layer below the feet position.
func PadCells(feet mgl32.Vec3) []BlockCoord {
	base := BlockAt(feet)
	y := base.Y - 1
	cells := make([]BlockCoord, 0, 9)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			cells = append(cells, BlockCoord{X: base.X + dx, Y: y, Z: base.Z + dz})
		}
	}
	return cells
}

// Carve clears every cell whose center lies within radius of center, skips
// the pad under feet, then writes the pad as PadBlock. Each touched chunk is
// marked dirty once along with the neighbors its edited boundary cells face.
func (c *Carver) Carve(center mgl32.Vec3, radius float32, feet mgl32.Vec3) CarveSummary {
	pad := PadCells(feet)
	protected := make(map[BlockCoord]struct{}, len(pad))
	for _, cell := range pad {
		protected[cell] = struct{}{}
	}

	batch := c.store.newBatch()
	summary := CarveSummary{Pad: pad}

	if radius > 0 {
		r2 := radius * radius
		radiusCeil := int(math.Ceil(float64(radius)))
		origin := BlockAt(center)
		for y := origin.Y - radiusCeil; y <= origin.Y+radiusCeil; y++ {
			for z := origin.Z - radiusCeil; z <= origin.Z+radiusCeil; z++ {
				for x := origin.X - radiusCeil; x <= origin.X+radiusCeil; x++ {
					cell := BlockCoord{X: x, Y: y, Z: z}
					if cell.Center().Sub(center).LenSqr() > r2 {
						continue
					}
					if _, ok := protected[cell]; ok {
						continue
					}
					if batch.set(cell, Air) {
						summary.Cleared++
					}
				}
			}
		}
	}

	for _, cell := range pad {
		batch.set(cell, PadBlock)
	}

	summary.Chunks = batch.commit()
	return summary
}
