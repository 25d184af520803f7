package world

import "github.com/go-gl/mathgl/mgl32"

// Face names one of the six axis-aligned directions of a cube.
type Face uint8

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Faces lists every face in a fixed order.
var Faces = [...]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

var faceOffsets = [...]BlockCoord{
	PosX: {X: 1},
	NegX: {X: -1},
	PosY: {Y: 1},
	NegY: {Y: -1},
	PosZ: {Z: 1},
	NegZ: {Z: -1},
}

var faceNames = [...]string{
	PosX: "+x",
	NegX: "-x",
	PosY: "+y",
	NegY: "-y",
	PosZ: "+z",
	NegZ: "-z",
}

// Offset returns the unit step toward the face.
func (f Face) Offset() BlockCoord {
	return faceOffsets[f]
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	o := faceOffsets[f]
	return mgl32.Vec3{float32(o.X), float32(o.Y), float32(o.Z)}
}

func (f Face) String() string {
	if int(f) >= len(faceNames) {
		return "?"
	}
	return faceNames[f]
}

func (f Face) bit() uint8 {
	return 1 << f
}

// boundaryMask reports which chunk faces a local cell touches.
func boundaryMask(l LocalCoord) uint8 {
	var mask uint8
	mask |= axisMask(l.X, PosX, NegX)
	mask |= axisMask(l.Y, PosY, NegY)
	mask |= axisMask(l.Z, PosZ, NegZ)
	return mask
}

func axisMask(local int, pos, neg Face) uint8 {
	var mask uint8
	if local == 0 {
		mask |= neg.bit()
	}
	if local == ChunkSize-1 {
		mask |= pos.bit()
	}
	return mask
}
