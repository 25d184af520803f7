package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/world"
)

const (
	verticesPerFace = 4
	indicesPerFace  = 6
)

// Source is the read side of the block store needed for meshing.
type Source interface {
	Chunk(coord world.ChunkCoord) (*world.Chunk, bool)
	Block(x, y, z int) world.BlockType
}

type faceBasis struct {
	origin mgl32.Vec3
	u      mgl32.Vec3
	v      mgl32.Vec3
}

// Corners are origin, origin+u, origin+u+v, origin+v with u x v pointing
// along the face normal, so (0,1,2) and (0,2,3) wind counter-clockwise when
// viewed from outside the cube.
var faceBases = [...]faceBasis{
	world.PosX: {origin: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{0, 0, 1}},
	world.NegX: {origin: mgl32.Vec3{0, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	world.PosY: {origin: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{1, 0, 0}},
	world.NegY: {origin: mgl32.Vec3{0, 0, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	world.PosZ: {origin: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	world.NegZ: {origin: mgl32.Vec3{0, 0, 0}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{1, 0, 0}},
}

var faceShade = [...]float32{
	world.PosX: 0.8,
	world.NegX: 0.8,
	world.PosY: 1.0,
	world.NegY: 0.5,
	world.PosZ: 0.7,
	world.NegZ: 0.7,
}

// ShadeFactor returns the fixed brightness multiplier applied to a face's color.
func ShadeFactor(face world.Face) float32 {
	return faceShade[face]
}

// Builder converts chunk contents into face-culled geometry. It keeps a
// scratch buffer between builds and is not safe for concurrent use.
type Builder struct {
	scratch Geometry
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build emits one quad for every solid voxel face whose neighbor is Air.
// Neighbors are resolved through src.Block so faces on the chunk boundary
// see the adjacent chunk's contents.
func (b *Builder) Build(src Source, coord world.ChunkCoord) *Geometry {
	g := &b.scratch
	g.reset()

	chunk, ok := src.Chunk(coord)
	if !ok || chunk.Empty() {
		return g.clone()
	}

	chunk.ForEachBlock(func(cell world.BlockCoord, t world.BlockType) bool {
		base := mgl32.Vec3{float32(cell.X), float32(cell.Y), float32(cell.Z)}
		color := t.Color()
		for _, face := range world.Faces {
			n := cell.Add(face.Offset())
			if src.Block(n.X, n.Y, n.Z).Solid() {
				continue
			}
			g.appendFace(base, face, color)
		}
		return true
	})

	return g.clone()
}

func (g *Geometry) appendFace(base mgl32.Vec3, face world.Face, color mgl32.Vec4) {
	basis := faceBases[face]
	normal := face.Normal()
	shade := faceShade[face]
	first := uint32(len(g.Positions) / 3)

	o := base.Add(basis.origin)
	corners := [verticesPerFace]mgl32.Vec3{
		o,
		o.Add(basis.u),
		o.Add(basis.u).Add(basis.v),
		o.Add(basis.v),
	}
	for _, p := range corners {
		g.Positions = append(g.Positions, p.X(), p.Y(), p.Z())
		g.Normals = append(g.Normals, normal.X(), normal.Y(), normal.Z())
		g.Colors = append(g.Colors, color.X()*shade, color.Y()*shade, color.Z()*shade, color.W())
	}
	g.Indices = append(g.Indices,
		first, first+1, first+2,
		first, first+2, first+3,
	)
}
