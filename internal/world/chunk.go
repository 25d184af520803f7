package world

// Chunk stores a dense cube of blocks and its remesh flag.
type Chunk struct {
	Key    ChunkCoord
	blocks [chunkVolume]BlockType
	solid  int
	dirty  bool
}

func newChunk(key ChunkCoord) *Chunk {
	return &Chunk{Key: key}
}

func chunkIndex(localX, localY, localZ int) int {
	return localX + ChunkSize*(localY+ChunkSize*localZ)
}

func inChunk(localX, localY, localZ int) bool {
	return localX >= 0 && localY >= 0 && localZ >= 0 &&
		localX < ChunkSize && localY < ChunkSize && localZ < ChunkSize
}

// LocalBlock returns the block at a local coordinate. Out of range lookups report ok=false.
func (c *Chunk) LocalBlock(localX, localY, localZ int) (BlockType, bool) {
	if !inChunk(localX, localY, localZ) {
		return Air, false
	}
	return c.blocks[chunkIndex(localX, localY, localZ)], true
}

// setLocal writes a cell and reports whether its contents changed.
func (c *Chunk) setLocal(localX, localY, localZ int, t BlockType) bool {
	if !inChunk(localX, localY, localZ) {
		return false
	}
	idx := chunkIndex(localX, localY, localZ)
	prev := c.blocks[idx]
	if prev == t {
		return false
	}
	if prev.Solid() {
		c.solid--
	}
	if t.Solid() {
		c.solid++
	}
	c.blocks[idx] = t
	return true
}

// ForEachBlock iterates over solid blocks in index order, invoking fn with global coordinates.
func (c *Chunk) ForEachBlock(fn func(global BlockCoord, t BlockType) bool) {
	if c.solid == 0 {
		return
	}
	origin := c.Key.Origin()
	for idx, t := range c.blocks {
		if !t.Solid() {
			continue
		}
		global := BlockCoord{
			X: origin.X + idx%ChunkSize,
			Y: origin.Y + (idx/ChunkSize)%ChunkSize,
			Z: origin.Z + idx/(ChunkSize*ChunkSize),
		}
		if !fn(global, t) {
			return
		}
	}
}

// Dirty reports whether the chunk's geometry is stale.
func (c *Chunk) Dirty() bool {
	return c.dirty
}

// SolidCount returns the number of non-air cells.
func (c *Chunk) SolidCount() int {
	return c.solid
}

func (c *Chunk) Empty() bool {
	return c.solid == 0
}
