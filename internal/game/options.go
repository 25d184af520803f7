package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/ai"
	"cityblast/internal/collide"
	"cityblast/internal/config"
	"cityblast/internal/motion"
)

// Options are the resolved session tunables.
type Options struct {
	DrainPerTick  int
	Agent         ai.Config
	Motion        motion.Params
	BreakInterval time.Duration
	Reach         float32
	EyeHeight     float32
	PlayerSpawn   mgl32.Vec3
	AgentSpawn    mgl32.Vec3
	Seed          int64
}

func DefaultOptions() Options {
	return Options{
		DrainPerTick:  4,
		Agent:         ai.DefaultConfig(),
		Motion:        motion.DefaultParams(),
		BreakInterval: 250 * time.Millisecond,
		Reach:         5,
		EyeHeight:     1.6,
		PlayerSpawn:   mgl32.Vec3{0.5, 1, -10.5},
		AgentSpawn:    mgl32.Vec3{-20.5, 1, -20.5},
		Seed:          1337,
	}
}

// OptionsFromConfig converts a validated configuration into session options.
func OptionsFromConfig(cfg *config.Config) Options {
	a := cfg.Agent
	corridors := make([]ai.Corridor, 0, len(a.Corridors))
	for _, c := range a.Corridors {
		corridors = append(corridors, ai.Corridor{Axis: ai.CorridorAxis(c.Axis), Coord: c.Coord, HalfWidth: c.HalfWidth})
	}
	m := cfg.Motion
	return Options{
		DrainPerTick: cfg.Remesh.DrainPerTick,
		Agent: ai.Config{
			ChaseRange:         a.ChaseRange,
			ExplodeRange:       a.ExplodeRange,
			WanderSpeed:        a.WanderSpeed,
			ChaseSpeed:         a.ChaseSpeed,
			FuseThreshold:      a.FuseThreshold,
			DecayRate:          a.DecayRate,
			BlastRadius:        a.BlastRadius,
			WanderMin:          a.WanderMin.Duration(),
			WanderMax:          a.WanderMax.Duration(),
			MaxRespawnAttempts: a.MaxRespawnAttempts,
			Corridors:          corridors,
			CorridorClearance:  a.CorridorClearance,
			MinRespawnDistance: a.MinRespawnDistance,
			RespawnMin:         mgl32.Vec2{a.RespawnMin.X, a.RespawnMin.Z},
			RespawnMax:         mgl32.Vec2{a.RespawnMax.X, a.RespawnMax.Z},
			RespawnHeight:      a.RespawnHeight,
			DefaultSpawn:       vec3(a.DefaultSpawn),
			Gravity:            m.Gravity,
			Box:                collide.Box{HalfWidth: a.HalfWidth, Height: a.Height},
		},
		Motion: motion.Params{
			MaxSpeed:        m.MaxSpeed,
			Acceleration:    m.Acceleration,
			Friction:        m.Friction,
			Gravity:         m.Gravity,
			JumpSpeed:       m.JumpSpeed,
			CoyoteTime:      m.CoyoteTime.Duration(),
			ProbeLift:       m.ProbeLift,
			ProbeDepth:      m.ProbeDepth,
			RestingVelocity: m.RestingVelocity,
			DeadZone:        cfg.Input.DeadZone,
			LookSpeed:       m.LookSpeed,
			Box:             collide.Box{HalfWidth: m.HalfWidth, Height: m.Height},
		},
		BreakInterval: cfg.Input.BreakInterval.Duration(),
		Reach:         cfg.Input.Reach,
		EyeHeight:     cfg.Input.EyeHeight,
		PlayerSpawn:   vec3(cfg.Arena.PlayerSpawn),
		AgentSpawn:    vec3(cfg.Arena.AgentSpawn),
		Seed:          cfg.World.Seed,
	}
}

func vec3(v config.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}
