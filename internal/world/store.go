package world

import "sort"

// DirtyListener is notified whenever the store marks a live chunk dirty.
type DirtyListener interface {
	ChunkDirty(coord ChunkCoord)
}

// Store owns the sparse chunk map. Chunks are created on the first write that
// stores a solid block and are never removed.
type Store struct {
	chunks   map[ChunkCoord]*Chunk
	listener DirtyListener
}

func NewStore() *Store {
	return &Store{chunks: make(map[ChunkCoord]*Chunk)}
}

// SetDirtyListener installs the listener that receives dirty notifications.
func (s *Store) SetDirtyListener(listener DirtyListener) {
	s.listener = listener
}

// Block returns the block at a world coordinate, Air if its chunk does not exist.
func (s *Store) Block(x, y, z int) BlockType {
	return s.BlockAt(BlockCoord{X: x, Y: y, Z: z})
}

func (s *Store) BlockAt(b BlockCoord) BlockType {
	coord, local := Locate(b)
	chunk, ok := s.chunks[coord]
	if !ok {
		return Air
	}
	t, _ := chunk.LocalBlock(local.X, local.Y, local.Z)
	return t
}

// Solid reports whether the cell at b holds a non-air block.
func (s *Store) Solid(b BlockCoord) bool {
	return s.BlockAt(b).Solid()
}

// SetBlock writes a block and marks its chunk dirty together with every face
// neighbor whose boundary the cell touches. It reports whether the cell changed.
func (s *Store) SetBlock(x, y, z int, t BlockType) bool {
	coord, mask, changed := s.write(BlockCoord{X: x, Y: y, Z: z}, t)
	if !changed {
		return false
	}
	s.markEdited(coord, mask)
	return true
}

func (s *Store) write(b BlockCoord, t BlockType) (ChunkCoord, uint8, bool) {
	coord, local := Locate(b)
	if !t.Valid() {
		return coord, 0, false
	}
	chunk, ok := s.chunks[coord]
	if !ok {
		if !t.Solid() {
			return coord, 0, false
		}
		chunk = newChunk(coord)
		s.chunks[coord] = chunk
	}
	if !chunk.setLocal(local.X, local.Y, local.Z, t) {
		return coord, 0, false
	}
	return coord, boundaryMask(local), true
}

// markEdited marks coord and the neighbors selected by mask, returning the
// chunks that were actually marked.
func (s *Store) markEdited(coord ChunkCoord, mask uint8) []ChunkCoord {
	marked := make([]ChunkCoord, 0, 2)
	if s.MarkDirty(coord) {
		marked = append(marked, coord)
	}
	for _, face := range Faces {
		if mask&face.bit() == 0 {
			continue
		}
		neighbor := coord.Neighbor(face)
		if s.MarkDirty(neighbor) {
			marked = append(marked, neighbor)
		}
	}
	return marked
}

// MarkDirty flags a chunk for remeshing. Absent chunks are ignored.
func (s *Store) MarkDirty(coord ChunkCoord) bool {
	chunk, ok := s.chunks[coord]
	if !ok {
		return false
	}
	chunk.dirty = true
	if s.listener != nil {
		s.listener.ChunkDirty(coord)
	}
	return true
}

// ClearDirty resets the dirty flag and reports whether it was set.
func (s *Store) ClearDirty(coord ChunkCoord) bool {
	chunk, ok := s.chunks[coord]
	if !ok || !chunk.dirty {
		return false
	}
	chunk.dirty = false
	return true
}

func (s *Store) Chunk(coord ChunkCoord) (*Chunk, bool) {
	chunk, ok := s.chunks[coord]
	return chunk, ok
}

func (s *Store) Len() int {
	return len(s.chunks)
}

// Coords returns the live chunk coordinates in ascending Y, Z, X order.
func (s *Store) Coords() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(s.chunks))
	for coord := range s.chunks {
		out = append(out, coord)
	}
	sortChunkCoords(out)
	return out
}

// Fill writes t into every cell of the inclusive box and returns the number of changed cells.
func (s *Store) Fill(min, max BlockCoord, t BlockType) int {
	if min.X > max.X {
		min.X, max.X = max.X, min.X
	}
	if min.Y > max.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	if min.Z > max.Z {
		min.Z, max.Z = max.Z, min.Z
	}
	changed := 0
	for y := min.Y; y <= max.Y; y++ {
		for z := min.Z; z <= max.Z; z++ {
			for x := min.X; x <= max.X; x++ {
				if s.SetBlock(x, y, z, t) {
					changed++
				}
			}
		}
	}
	return changed
}

func sortChunkCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
}

// editBatch applies many writes and defers dirty marking until commit, so that
// each touched chunk is marked once.
type editBatch struct {
	store *Store
	masks map[ChunkCoord]uint8
	order []ChunkCoord
}

func (s *Store) newBatch() *editBatch {
	return &editBatch{store: s, masks: make(map[ChunkCoord]uint8)}
}

func (b *editBatch) set(coord BlockCoord, t BlockType) bool {
	chunk, mask, changed := b.store.write(coord, t)
	if !changed {
		return false
	}
	existing, seen := b.masks[chunk]
	if !seen {
		b.order = append(b.order, chunk)
	}
	b.masks[chunk] = existing | mask
	return true
}

// commit marks every changed chunk and the neighbors its edits touched. It
// returns the distinct chunks marked, sorted.
func (b *editBatch) commit() []ChunkCoord {
	marked := make(map[ChunkCoord]struct{})
	for _, coord := range b.order {
		b.store.markEditedOnce(coord, b.masks[coord], marked)
	}
	out := make([]ChunkCoord, 0, len(marked))
	for coord := range marked {
		out = append(out, coord)
	}
	sortChunkCoords(out)
	b.masks = make(map[ChunkCoord]uint8)
	b.order = nil
	return out
}

func (s *Store) markEditedOnce(coord ChunkCoord, mask uint8, seen map[ChunkCoord]struct{}) {
	try := func(c ChunkCoord) {
		if _, ok := seen[c]; ok {
			return
		}
		if s.MarkDirty(c) {
			seen[c] = struct{}{}
		}
	}
	try(coord)
	for _, face := range Faces {
		if mask&face.bit() != 0 {
			try(coord.Neighbor(face))
		}
	}
}
