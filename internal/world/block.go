package world

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockType enumerates the materials a cell can hold. The zero value is Air.
type BlockType uint8

const (
	Air BlockType = iota
	Road
	Sidewalk
	Building
	Window
	Roof
	Crate

	blockTypeCount
)

// BlockAppearance captures the visual styling for a block type.
type BlockAppearance struct {
	Name  string
	Color string
}

// DefaultAppearances enumerates the built-in block visuals, indexed by BlockType.
var DefaultAppearances = [blockTypeCount]BlockAppearance{
	Air:      {Name: "air", Color: "#000000"},
	Road:     {Name: "road", Color: "#3b3d42"},
	Sidewalk: {Name: "sidewalk", Color: "#a6a29a"},
	Building: {Name: "building", Color: "#b87a5a"},
	Window:   {Name: "window", Color: "#7fb4d9"},
	Roof:     {Name: "roof", Color: "#5c4b44"},
	Crate:    {Name: "crate", Color: "#c99a4b"},
}

var palette = buildPalette()

func buildPalette() [blockTypeCount]mgl32.Vec4 {
	var out [blockTypeCount]mgl32.Vec4
	for i, appearance := range DefaultAppearances {
		r, g, b, ok := parseHexColor(appearance.Color)
		if !ok {
			panic(fmt.Sprintf("world: invalid palette color %q", appearance.Color))
		}
		out[i] = mgl32.Vec4{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
	}
	out[Air][3] = 0
	return out
}

// Solid reports whether the type occupies its cell for meshing and collision.
func (t BlockType) Solid() bool {
	return t != Air
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	return t < blockTypeCount
}

// Color returns the palette RGBA color of the type. Unknown types render magenta.
func (t BlockType) Color() mgl32.Vec4 {
	if !t.Valid() {
		return mgl32.Vec4{1, 0, 1, 1}
	}
	return palette[t]
}

func (t BlockType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("BlockType(%d)", uint8(t))
	}
	return DefaultAppearances[t].Name
}

// ParseBlockType resolves a block name as used in configuration files.
func ParseBlockType(name string) (BlockType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for i, appearance := range DefaultAppearances {
		if appearance.Name == trimmed {
			return BlockType(i), nil
		}
	}
	return Air, fmt.Errorf("unknown block type %q", name)
}

func parseHexColor(value string) (uint8, uint8, uint8, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return 0, 0, 0, false
	}
	var out [3]uint8
	for i := range out {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, false
		}
		out[i] = uint8(v)
	}
	return out[0], out[1], out[2], true
}
