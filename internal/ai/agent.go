package ai

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/collide"
)

// Mode is the agent's current behavior. Exactly one of Wander or Chase.
type Mode interface {
	isMode()
}

// Wander roams along Heading until NextDecision. ResidualFuse is what is
// left of a chase fuse; it keeps decaying and seeds the next chase.
type Wander struct {
	Heading      float32
	NextDecision time.Duration
	ResidualFuse float32
}

// Chase pursues the player while Fuse builds up during close contact.
type Chase struct {
	Fuse float32
}

func (Wander) isMode() {}
func (Chase) isMode()  {}

// Agent is the persistent state of the autonomous agent.
type Agent struct {
	ID       string
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Mode     Mode
}

// Fuse returns the active or residual fuse value.
func (a Agent) Fuse() float32 {
	switch m := a.Mode.(type) {
	case Chase:
		return m.Fuse
	case Wander:
		return m.ResidualFuse
	}
	return 0
}

// CorridorAxis selects which coordinate a corridor holds constant.
type CorridorAxis string

const (
	CorridorX CorridorAxis = "x"
	CorridorZ CorridorAxis = "z"
)

// Corridor is a straight traffic lane centered on Axis = Coord.
type Corridor struct {
	Axis      CorridorAxis
	Coord     float32
	HalfWidth float32
}

// Distance returns the planar distance from p to the corridor's edge, zero inside.
func (c Corridor) Distance(p mgl32.Vec3) float32 {
	var offset float32
	switch c.Axis {
	case CorridorZ:
		offset = p.Z() - c.Coord
	default:
		offset = p.X() - c.Coord
	}
	d := float32(math.Abs(float64(offset))) - c.HalfWidth
	if d < 0 {
		return 0
	}
	return d
}

// Config tunes the agent. Distances are planar, in blocks; speeds in blocks
// per second; DecayRate scales fuse loss relative to gain and must be below 1.
type Config struct {
	ChaseRange         float32
	ExplodeRange       float32
	WanderSpeed        float32
	ChaseSpeed         float32
	FuseThreshold      float32
	DecayRate          float32
	BlastRadius        float32
	WanderMin          time.Duration
	WanderMax          time.Duration
	MaxRespawnAttempts int
	Corridors          []Corridor
	CorridorClearance  float32
	MinRespawnDistance float32
	RespawnMin         mgl32.Vec2
	RespawnMax         mgl32.Vec2
	RespawnHeight      float32
	DefaultSpawn       mgl32.Vec3
	Gravity            float32
	Box                collide.Box
}

func DefaultConfig() Config {
	return Config{
		ChaseRange:         12,
		ExplodeRange:       2.5,
		WanderSpeed:        1.5,
		ChaseSpeed:         3.5,
		FuseThreshold:      1.5,
		DecayRate:          0.5,
		BlastRadius:        4,
		WanderMin:          2 * time.Second,
		WanderMax:          5 * time.Second,
		MaxRespawnAttempts: 16,
		Corridors: []Corridor{
			{Axis: CorridorX, Coord: 0, HalfWidth: 3},
			{Axis: CorridorZ, Coord: 0, HalfWidth: 3},
		},
		CorridorClearance:  2,
		MinRespawnDistance: 16,
		RespawnMin:         mgl32.Vec2{-40, -40},
		RespawnMax:         mgl32.Vec2{40, 40},
		RespawnHeight:      1,
		DefaultSpawn:       mgl32.Vec3{20.5, 1, 20.5},
		Gravity:            -24,
		Box:                collide.Box{HalfWidth: 0.35, Height: 1.6},
	}
}

func planarDistance(a, b mgl32.Vec3) float32 {
	return mgl32.Vec2{a.X() - b.X(), a.Z() - b.Z()}.Len()
}

func decayFuse(fuse, seconds, rate float32) float32 {
	fuse -= seconds * rate
	if fuse < 0 {
		return 0
	}
	return fuse
}

func headingVector(heading float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(math.Sin(float64(heading))), 0, float32(math.Cos(float64(heading)))}
}
