package ai

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityblast/internal/collide"
	"cityblast/internal/world"
)

const tick = 100 * time.Millisecond

type carveCall struct {
	center mgl32.Vec3
	radius float32
	feet   mgl32.Vec3
}

type stubCarver struct {
	calls []carveCall
}

func (s *stubCarver) Carve(center mgl32.Vec3, radius float32, feet mgl32.Vec3) world.CarveSummary {
	s.calls = append(s.calls, carveCall{center: center, radius: radius, feet: feet})
	return world.CarveSummary{Cleared: 7, Chunks: []world.ChunkCoord{{}}}
}

// planeMover applies horizontal motion and keeps the agent on its plane.
type planeMover struct {
	frozen bool
}

func (p planeMover) MoveAndSlide(_ collide.Box, pos, delta mgl32.Vec3) (mgl32.Vec3, collide.Blocked) {
	if p.frozen {
		return pos, collide.Blocked{Y: true}
	}
	return mgl32.Vec3{pos.X() + delta.X(), pos.Y(), pos.Z() + delta.Z()}, collide.Blocked{Y: true}
}

type solidGrid map[world.BlockCoord]bool

func (g solidGrid) Solid(b world.BlockCoord) bool {
	return g[b]
}

func newTestController(t *testing.T, cfg Config, spawn mgl32.Vec3, mover collide.Mover, grid collide.Grid) (*Controller, *stubCarver, *bytes.Buffer) {
	t.Helper()
	carver := &stubCarver{}
	var logs bytes.Buffer
	c := NewController(cfg, spawn, carver, mover, grid, rand.New(rand.NewSource(7)), log.New(&logs, "", 0))
	return c, carver, &logs
}

func TestWanderSwitchesToChaseInRange(t *testing.T) {
	c, _, _ := newTestController(t, DefaultConfig(), mgl32.Vec3{0, 1, 0}, planeMover{frozen: true}, nil)

	c.Tick(tick, 0, mgl32.Vec3{20, 1, 0})
	_, wandering := c.Agent().Mode.(Wander)
	assert.True(t, wandering)

	c.Tick(tick, tick, mgl32.Vec3{11, 1, 0})
	_, chasing := c.Agent().Mode.(Chase)
	assert.True(t, chasing)
}

func TestChaseMovesTowardPlayer(t *testing.T) {
	cfg := DefaultConfig()
	c, _, _ := newTestController(t, cfg, mgl32.Vec3{0, 1, 0}, planeMover{}, nil)

	c.Tick(tick, 0, mgl32.Vec3{0, 1, 10})

	pos := c.Agent().Position
	assert.InDelta(t, cfg.ChaseSpeed*0.1, pos.Z(), 1e-5)
	assert.InDelta(t, 0, pos.X(), 1e-5)
}

func TestChaseDoesNotOvershoot(t *testing.T) {
	c, _, _ := newTestController(t, DefaultConfig(), mgl32.Vec3{0, 1, 0}, planeMover{}, nil)

	c.Tick(tick, 0, mgl32.Vec3{0.1, 1, 0})

	assert.InDelta(t, 0.1, c.Agent().Position.X(), 1e-5)
}

func TestFuseRisesInsideAndDecaysOutsideExplodeRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuseThreshold = 100
	c, carver, _ := newTestController(t, cfg, mgl32.Vec3{0, 1, 0}, planeMover{frozen: true}, nil)
	near := mgl32.Vec3{1, 1, 0}
	mid := mgl32.Vec3{6, 1, 0}

	now := time.Duration(0)
	prev := float32(0)
	for i := 0; i < 5; i++ {
		c.Tick(tick, now, near)
		now += tick
		fuse := c.Agent().Fuse()
		require.Greater(t, fuse, prev)
		prev = fuse
	}
	assert.InDelta(t, 0.5, prev, 1e-5)

	for i := 0; i < 3; i++ {
		c.Tick(tick, now, mid)
		now += tick
		fuse := c.Agent().Fuse()
		require.Less(t, fuse, prev)
		prev = fuse
	}
	assert.InDelta(t, 0.5-3*0.1*cfg.DecayRate, prev, 1e-5)

	for i := 0; i < 50; i++ {
		c.Tick(tick, now, mid)
		now += tick
		require.GreaterOrEqual(t, c.Agent().Fuse(), float32(0))
	}
	assert.Zero(t, c.Agent().Fuse())
	_, chasing := c.Agent().Mode.(Chase)
	assert.True(t, chasing)
	assert.Empty(t, carver.calls)
}

func TestLeavingChaseDecaysResidualFuse(t *testing.T) {
	cfg := DefaultConfig()
	c, _, _ := newTestController(t, cfg, mgl32.Vec3{0, 1, 0}, planeMover{frozen: true}, nil)

	c.Tick(tick, 0, mgl32.Vec3{1, 1, 0})
	c.Tick(tick, tick, mgl32.Vec3{1, 1, 0})
	require.InDelta(t, 0.2, c.Agent().Fuse(), 1e-5)

	c.Tick(tick, 2*tick, mgl32.Vec3{30, 1, 0})
	m, ok := c.Agent().Mode.(Wander)
	require.True(t, ok)
	assert.InDelta(t, 0.2-0.1*cfg.DecayRate, m.ResidualFuse, 1e-5)

	c.Tick(tick, 3*tick, mgl32.Vec3{30, 1, 0})
	assert.InDelta(t, 0.2-0.2*cfg.DecayRate, c.Agent().Fuse(), 1e-5)

	// The residual seeds the next chase, then grows again.
	c.Tick(tick, 4*tick, mgl32.Vec3{1, 1, 0})
	assert.InDelta(t, 0.2-0.2*cfg.DecayRate+0.1, c.Agent().Fuse(), 1e-5)
}

func TestDetonationCarvesAndRespawns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuseThreshold = 0.25
	c, carver, logs := newTestController(t, cfg, mgl32.Vec3{0.5, 1, 0.5}, planeMover{frozen: true}, solidGrid{})
	feet := mgl32.Vec3{1.5, 1, 0.5}

	results := []TickResult{
		c.Tick(tick, 0, feet),
		c.Tick(tick, tick, feet),
		c.Tick(tick, 2*tick, feet),
	}

	assert.False(t, results[0].Detonated)
	assert.False(t, results[1].Detonated)
	require.True(t, results[2].Detonated)
	assert.Equal(t, 7, results[2].Carve.Cleared)

	require.Len(t, carver.calls, 1)
	assert.Equal(t, mgl32.Vec3{0.5, 1, 0.5}, carver.calls[0].center)
	assert.Equal(t, cfg.BlastRadius, carver.calls[0].radius)
	assert.Equal(t, feet, carver.calls[0].feet)

	agent := c.Agent()
	m, ok := agent.Mode.(Wander)
	require.True(t, ok)
	assert.Zero(t, m.ResidualFuse)
	assert.Greater(t, m.NextDecision, 2*tick)
	assert.GreaterOrEqual(t, planarDistance(agent.Position, feet), cfg.MinRespawnDistance)
	for _, corridor := range cfg.Corridors {
		assert.GreaterOrEqual(t, corridor.Distance(agent.Position), cfg.CorridorClearance)
	}
	assert.Contains(t, logs.String(), "detonated")
}

func TestRespawnFallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuseThreshold = 0.05
	cfg.Corridors = []Corridor{{Axis: CorridorX, Coord: 0, HalfWidth: 1000}}
	c, _, logs := newTestController(t, cfg, mgl32.Vec3{0, 1, 0}, planeMover{frozen: true}, nil)

	result := c.Tick(tick, 0, mgl32.Vec3{1, 1, 0})

	require.True(t, result.Detonated)
	assert.True(t, result.Fallback)
	assert.Equal(t, cfg.DefaultSpawn, c.Agent().Position)
	assert.Contains(t, logs.String(), "using default")
}

func TestRespawnRejectsBlockedCells(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Corridors = nil
	cfg.MinRespawnDistance = 0
	cfg.RespawnMin = mgl32.Vec2{5, 5}
	cfg.RespawnMax = mgl32.Vec2{5.5, 5.5}
	grid := solidGrid{{X: 5, Y: 2, Z: 5}: true}
	c, _, _ := newTestController(t, cfg, mgl32.Vec3{}, planeMover{}, grid)

	_, ok := c.findRespawn(mgl32.Vec3{})
	assert.False(t, ok, "head cell is solid")

	delete(grid, world.BlockCoord{X: 5, Y: 2, Z: 5})
	pos, ok := c.findRespawn(mgl32.Vec3{})
	assert.True(t, ok)
	assert.Equal(t, cfg.RespawnHeight, pos.Y())
}

func TestWanderPicksHeadingsOnSchedule(t *testing.T) {
	cfg := DefaultConfig()
	c, _, _ := newTestController(t, cfg, mgl32.Vec3{}, planeMover{}, nil)
	far := mgl32.Vec3{500, 0, 500}

	c.Tick(tick, 0, far)
	first, ok := c.Agent().Mode.(Wander)
	require.True(t, ok)
	assert.GreaterOrEqual(t, first.NextDecision, cfg.WanderMin)
	assert.LessOrEqual(t, first.NextDecision, cfg.WanderMax)
	assert.GreaterOrEqual(t, first.Heading, float32(0))
	assert.Less(t, first.Heading, float32(2*math.Pi))

	c.Tick(tick, first.NextDecision-time.Millisecond, far)
	held := c.Agent().Mode.(Wander)
	assert.Equal(t, first.Heading, held.Heading)
	assert.Equal(t, first.NextDecision, held.NextDecision)

	c.Tick(tick, first.NextDecision, far)
	next := c.Agent().Mode.(Wander)
	assert.Greater(t, next.NextDecision, first.NextDecision)

	assert.NotEqual(t, mgl32.Vec3{}, c.Agent().Position)
}

func TestSeededControllersAgree(t *testing.T) {
	a := NewController(DefaultConfig(), mgl32.Vec3{}, &stubCarver{}, planeMover{}, nil, rand.New(rand.NewSource(3)), nil)
	b := NewController(DefaultConfig(), mgl32.Vec3{}, &stubCarver{}, planeMover{}, nil, rand.New(rand.NewSource(3)), nil)
	assert.Equal(t, a.Agent().ID, b.Agent().ID)
	assert.NotEmpty(t, a.Agent().ID)

	for i := 0; i < 20; i++ {
		now := time.Duration(i) * time.Second
		a.Tick(tick, now, mgl32.Vec3{300, 0, 0})
		b.Tick(tick, now, mgl32.Vec3{300, 0, 0})
	}
	assert.Equal(t, a.Agent().Position, b.Agent().Position)
}

func TestCorridorDistance(t *testing.T) {
	c := Corridor{Axis: CorridorZ, Coord: 10, HalfWidth: 2}
	assert.Zero(t, c.Distance(mgl32.Vec3{99, 0, 11}))
	assert.InDelta(t, 3, c.Distance(mgl32.Vec3{0, 0, 5}), 1e-6)
}
