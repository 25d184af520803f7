package remesh

import (
	"cityblast/internal/mesh"
	"cityblast/internal/world"
)

// Store is the chunk store view the scheduler rebuilds from.
type Store interface {
	mesh.Source
	ClearDirty(coord world.ChunkCoord) bool
	SetDirtyListener(listener world.DirtyListener)
	Coords() []world.ChunkCoord
}

// Sink receives every rebuilt geometry, typically a renderer upload.
type Sink interface {
	UploadChunk(coord world.ChunkCoord, geometry *mesh.Geometry)
}

// DrainReport summarises one drain call.
type DrainReport struct {
	Rebuilt   int
	Skipped   int
	Remaining int
}

// Scheduler is a FIFO of chunks awaiting a rebuild. A chunk appears in the
// queue at most once; marking it dirty again while queued is a no-op.
type Scheduler struct {
	store    Store
	sink     Sink
	builder  *mesh.Builder
	metrics  *Metrics
	queued   map[world.ChunkCoord]struct{}
	queue    []world.ChunkCoord
	geometry map[world.ChunkCoord]*mesh.Geometry
}

// New wires a scheduler to store as its dirty listener. Chunks that are
// already dirty are queued in store order. sink and metrics may be nil.
func New(store Store, sink Sink, metrics *Metrics) *Scheduler {
	s := &Scheduler{
		store:    store,
		sink:     sink,
		builder:  mesh.NewBuilder(),
		metrics:  metrics,
		queued:   make(map[world.ChunkCoord]struct{}),
		geometry: make(map[world.ChunkCoord]*mesh.Geometry),
	}
	store.SetDirtyListener(s)
	for _, coord := range store.Coords() {
		if chunk, ok := store.Chunk(coord); ok && chunk.Dirty() {
			s.Enqueue(coord)
		}
	}
	return s
}

// ChunkDirty implements world.DirtyListener.
func (s *Scheduler) ChunkDirty(coord world.ChunkCoord) {
	s.Enqueue(coord)
}

// Enqueue adds coord to the back of the queue unless it is already waiting.
func (s *Scheduler) Enqueue(coord world.ChunkCoord) bool {
	if _, exists := s.queued[coord]; exists {
		return false
	}
	s.queued[coord] = struct{}{}
	s.queue = append(s.queue, coord)
	s.metrics.observeEnqueue()
	s.metrics.observeDepth(len(s.queue))
	return true
}

func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Queued reports whether coord is waiting for a rebuild.
func (s *Scheduler) Queued(coord world.ChunkCoord) bool {
	_, ok := s.queued[coord]
	return ok
}

// Drain rebuilds at most k dirty chunks. Entries whose chunk is no longer
// dirty are dropped without consuming the budget. k <= 0 does nothing.
func (s *Scheduler) Drain(k int) DrainReport {
	var report DrainReport
	for report.Rebuilt < k {
		if !s.step(&report) {
			break
		}
	}
	report.Remaining = len(s.queue)
	s.metrics.observeDepth(report.Remaining)
	return report
}

// DrainAll rebuilds until the queue is empty, including chunks re-queued by
// the sink while draining.
func (s *Scheduler) DrainAll() DrainReport {
	var report DrainReport
	for s.step(&report) {
	}
	s.metrics.observeDepth(0)
	return report
}

func (s *Scheduler) step(report *DrainReport) bool {
	coord, ok := s.pop()
	if !ok {
		return false
	}
	// Clearing first lets an edit made during the rebuild re-queue the chunk.
	if !s.store.ClearDirty(coord) {
		report.Skipped++
		s.metrics.observeSkip()
		return true
	}
	s.rebuild(coord)
	report.Rebuilt++
	return true
}

func (s *Scheduler) pop() (world.ChunkCoord, bool) {
	for len(s.queue) > 0 {
		coord := s.queue[0]
		s.queue = s.queue[1:]
		if _, ok := s.queued[coord]; !ok {
			continue
		}
		delete(s.queued, coord)
		return coord, true
	}
	return world.ChunkCoord{}, false
}

func (s *Scheduler) rebuild(coord world.ChunkCoord) {
	geometry := s.builder.Build(s.store, coord)
	s.geometry[coord] = geometry
	s.metrics.observeRebuild(geometry.FaceCount())
	if s.sink != nil {
		s.sink.UploadChunk(coord, geometry)
	}
}

// Geometry returns the most recent geometry built for coord.
func (s *Scheduler) Geometry(coord world.ChunkCoord) (*mesh.Geometry, bool) {
	g, ok := s.geometry[coord]
	return g, ok
}
