package game

import (
	"fmt"

	"cityblast/internal/config"
	"cityblast/internal/world"
)

// Arena is the starting city block: a ground slab at y=0 plus filled boxes.
type Arena struct {
	HalfExtent int
	Ground     world.BlockType
	Boxes      []ArenaBox
}

type ArenaBox struct {
	Min, Max world.BlockCoord
	Block    world.BlockType
}

func ArenaFromConfig(cfg config.ArenaConfig) (Arena, error) {
	ground, err := world.ParseBlockType(cfg.Ground)
	if err != nil {
		return Arena{}, fmt.Errorf("arena ground: %w", err)
	}
	arena := Arena{HalfExtent: cfg.HalfExtent, Ground: ground}
	for i, b := range cfg.Boxes {
		block, err := world.ParseBlockType(b.Block)
		if err != nil {
			return Arena{}, fmt.Errorf("arena box %d: %w", i, err)
		}
		arena.Boxes = append(arena.Boxes, ArenaBox{
			Min:   world.BlockCoord{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
			Max:   world.BlockCoord{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
			Block: block,
		})
	}
	return arena, nil
}

// Build writes the arena into store and returns the number of cells changed.
// Boxes are applied in order after the slab, so later boxes win.
func (a Arena) Build(store *world.Store) int {
	changed := 0
	if a.HalfExtent > 0 {
		changed += store.Fill(
			world.BlockCoord{X: -a.HalfExtent, Y: 0, Z: -a.HalfExtent},
			world.BlockCoord{X: a.HalfExtent, Y: 0, Z: a.HalfExtent},
			a.Ground,
		)
	}
	for _, box := range a.Boxes {
		changed += store.Fill(box.Min, box.Max, box.Block)
	}
	return changed
}

// Bounds covers the slab and every box.
func (a Arena) Bounds() world.PreviewRegion {
	region := world.PreviewRegion{
		Min: world.BlockCoord{X: -a.HalfExtent, Y: 0, Z: -a.HalfExtent},
		Max: world.BlockCoord{X: a.HalfExtent, Y: 0, Z: a.HalfExtent},
	}
	for _, box := range a.Boxes {
		region.Min = world.BlockCoord{X: min(region.Min.X, box.Min.X), Y: min(region.Min.Y, box.Min.Y), Z: min(region.Min.Z, box.Min.Z)}
		region.Max = world.BlockCoord{X: max(region.Max.X, box.Max.X), Y: max(region.Max.Y, box.Max.Y), Z: max(region.Max.Z, box.Max.Z)}
	}
	return region
}
