package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkSize is the edge length of every chunk in blocks.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkCoord identifies a chunk in chunk space.
type ChunkCoord struct {
	X int
	Y int
	Z int
}

// BlockCoord describes a block position in world block space.
type BlockCoord struct {
	X int
	Y int
	Z int
}

// LocalCoord is a block position relative to the owning chunk's origin, 0..ChunkSize-1 per axis.
type LocalCoord struct {
	X int
	Y int
	Z int
}

// ChunkOf returns the chunk index containing world coordinate w along one axis.
func ChunkOf(w int) int {
	return floorDiv(w, ChunkSize)
}

// LocalOf returns w's offset inside its chunk along one axis.
func LocalOf(w int) int {
	return w - floorDiv(w, ChunkSize)*ChunkSize
}

// Locate splits a world block coordinate into its chunk and local parts.
func Locate(b BlockCoord) (ChunkCoord, LocalCoord) {
	return ChunkCoord{X: ChunkOf(b.X), Y: ChunkOf(b.Y), Z: ChunkOf(b.Z)},
		LocalCoord{X: LocalOf(b.X), Y: LocalOf(b.Y), Z: LocalOf(b.Z)}
}

// Origin returns the world coordinate of the chunk's local (0,0,0) cell.
func (c ChunkCoord) Origin() BlockCoord {
	return BlockCoord{X: c.X * ChunkSize, Y: c.Y * ChunkSize, Z: c.Z * ChunkSize}
}

// Global converts a local coordinate of this chunk into world space.
func (c ChunkCoord) Global(l LocalCoord) BlockCoord {
	o := c.Origin()
	return BlockCoord{X: o.X + l.X, Y: o.Y + l.Y, Z: o.Z + l.Z}
}

// Neighbor returns the chunk sharing the given face with c.
func (c ChunkCoord) Neighbor(f Face) ChunkCoord {
	d := f.Offset()
	return ChunkCoord{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// Add offsets a block coordinate.
func (b BlockCoord) Add(o BlockCoord) BlockCoord {
	return BlockCoord{X: b.X + o.X, Y: b.Y + o.Y, Z: b.Z + o.Z}
}

// Center returns the world-space center of the block cell.
func (b BlockCoord) Center() mgl32.Vec3 {
	return mgl32.Vec3{float32(b.X) + 0.5, float32(b.Y) + 0.5, float32(b.Z) + 0.5}
}

// BlockAt returns the cell containing a world-space point.
func BlockAt(p mgl32.Vec3) BlockCoord {
	return BlockCoord{
		X: int(math.Floor(float64(p.X()))),
		Y: int(math.Floor(float64(p.Y()))),
		Z: int(math.Floor(float64(p.Z()))),
	}
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}
