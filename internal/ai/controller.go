package ai

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"cityblast/internal/collide"
	"cityblast/internal/world"
)

// Carver is the destruction primitive triggered by a detonation.
type Carver interface {
	Carve(center mgl32.Vec3, radius float32, feet mgl32.Vec3) world.CarveSummary
}

// TickResult reports what happened on one controller tick.
type TickResult struct {
	Detonated bool
	Carve     world.CarveSummary
	// Fallback is set when no respawn candidate passed and DefaultSpawn was used.
	Fallback bool
}

// Controller drives a single agent through wander, chase and detonation.
type Controller struct {
	cfg    Config
	agent  Agent
	carver Carver
	mover  collide.Mover
	grid   collide.Grid
	rng    *rand.Rand
	logger *log.Logger
}

// NewController places the agent at spawn in Wander mode. rng drives every
// random choice, including the agent ID, so a fixed seed replays exactly.
func NewController(cfg Config, spawn mgl32.Vec3, carver Carver, mover collide.Mover, grid collide.Grid, rng *rand.Rand, logger *log.Logger) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.Default()
	}
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.New()
	}
	c := &Controller{
		cfg:    cfg,
		carver: carver,
		mover:  mover,
		grid:   grid,
		rng:    rng,
		logger: logger,
	}
	c.agent = Agent{
		ID:       id.String(),
		Position: spawn,
		Mode:     Wander{Heading: c.randomHeading()},
	}
	return c
}

// Agent returns a copy of the agent state.
func (c *Controller) Agent() Agent {
	return c.agent
}

// Tick advances the agent by dt at sim time now toward or away from the
// player standing at feet.
func (c *Controller) Tick(dt, now time.Duration, feet mgl32.Vec3) TickResult {
	seconds := float32(dt.Seconds())
	dist := planarDistance(c.agent.Position, feet)

	switch m := c.agent.Mode.(type) {
	case Chase:
		if dist >= c.cfg.ChaseRange {
			next := Wander{
				Heading:      c.randomHeading(),
				NextDecision: now + c.wanderInterval(),
				ResidualFuse: decayFuse(m.Fuse, seconds, c.cfg.DecayRate),
			}
			c.wander(next, now, seconds)
			return TickResult{}
		}
		return c.chase(m, dist, now, seconds, feet)
	case Wander:
		if dist < c.cfg.ChaseRange {
			return c.chase(Chase{Fuse: m.ResidualFuse}, dist, now, seconds, feet)
		}
		m.ResidualFuse = decayFuse(m.ResidualFuse, seconds, c.cfg.DecayRate)
		if now >= m.NextDecision {
			m.Heading = c.randomHeading()
			m.NextDecision = now + c.wanderInterval()
		}
		c.wander(m, now, seconds)
		return TickResult{}
	default:
		c.agent.Mode = Wander{Heading: c.randomHeading(), NextDecision: now}
		return TickResult{}
	}
}

func (c *Controller) wander(m Wander, now time.Duration, seconds float32) {
	blocked := c.move(headingVector(m.Heading).Mul(c.cfg.WanderSpeed), seconds)
	if blocked.X || blocked.Z {
		// Pick a new heading next tick instead of pushing into the wall.
		m.NextDecision = now
	}
	c.agent.Mode = m
}

func (c *Controller) chase(m Chase, dist float32, now time.Duration, seconds float32, feet mgl32.Vec3) TickResult {
	var dir mgl32.Vec3
	if dist > 0 {
		dir = mgl32.Vec3{feet.X() - c.agent.Position.X(), 0, feet.Z() - c.agent.Position.Z()}.Mul(1 / dist)
	}
	speed := c.cfg.ChaseSpeed
	if seconds > 0 && speed*seconds > dist {
		// Stop on the player rather than overshooting.
		speed = dist / seconds
	}
	c.move(dir.Mul(speed), seconds)

	if dist < c.cfg.ExplodeRange {
		m.Fuse += seconds
	} else {
		m.Fuse = decayFuse(m.Fuse, seconds, c.cfg.DecayRate)
	}
	if m.Fuse >= c.cfg.FuseThreshold {
		return c.detonate(now, feet)
	}
	c.agent.Mode = m
	return TickResult{}
}

func (c *Controller) move(horizontal mgl32.Vec3, seconds float32) collide.Blocked {
	v := mgl32.Vec3{horizontal.X(), c.agent.Velocity.Y() + c.cfg.Gravity*seconds, horizontal.Z()}
	pos, blocked := c.mover.MoveAndSlide(c.cfg.Box, c.agent.Position, v.Mul(seconds))
	if blocked.Y {
		v[1] = 0
	}
	c.agent.Position = pos
	c.agent.Velocity = v
	return blocked
}

func (c *Controller) detonate(now time.Duration, feet mgl32.Vec3) TickResult {
	at := c.agent.Position
	summary := c.carver.Carve(at, c.cfg.BlastRadius, feet)

	spawn, ok := c.findRespawn(feet)
	if !ok {
		c.logger.Printf("agent %s: no clear respawn in %d attempts, using default %v", c.agent.ID, c.cfg.MaxRespawnAttempts, c.cfg.DefaultSpawn)
		spawn = c.cfg.DefaultSpawn
	}
	c.logger.Printf("agent %s detonated at %.1f,%.1f,%.1f: cleared %d blocks in %d chunks", c.agent.ID, at.X(), at.Y(), at.Z(), summary.Cleared, len(summary.Chunks))

	c.agent.Position = spawn
	c.agent.Velocity = mgl32.Vec3{}
	c.agent.Mode = Wander{Heading: c.randomHeading(), NextDecision: now + c.wanderInterval()}
	return TickResult{Detonated: true, Carve: summary, Fallback: !ok}
}

// findRespawn samples the respawn rectangle for a spot clear of the
// corridors, far enough from the player and with room for the agent's body.
func (c *Controller) findRespawn(feet mgl32.Vec3) (mgl32.Vec3, bool) {
	lo, hi := c.cfg.RespawnMin, c.cfg.RespawnMax
	for i := 0; i < c.cfg.MaxRespawnAttempts; i++ {
		candidate := mgl32.Vec3{
			lo.X() + c.rng.Float32()*(hi.X()-lo.X()),
			c.cfg.RespawnHeight,
			lo.Y() + c.rng.Float32()*(hi.Y()-lo.Y()),
		}
		if c.acceptRespawn(candidate, feet) {
			return candidate, true
		}
	}
	return mgl32.Vec3{}, false
}

func (c *Controller) acceptRespawn(candidate, feet mgl32.Vec3) bool {
	for _, corridor := range c.cfg.Corridors {
		if corridor.Distance(candidate) < c.cfg.CorridorClearance {
			return false
		}
	}
	if planarDistance(candidate, feet) < c.cfg.MinRespawnDistance {
		return false
	}
	if c.grid == nil {
		return true
	}
	base := world.BlockAt(candidate)
	height := int(math.Ceil(float64(c.cfg.Box.Height)))
	for dy := 0; dy < height; dy++ {
		if c.grid.Solid(world.BlockCoord{X: base.X, Y: base.Y + dy, Z: base.Z}) {
			return false
		}
	}
	return true
}

func (c *Controller) randomHeading() float32 {
	return c.rng.Float32() * 2 * math.Pi
}

func (c *Controller) wanderInterval() time.Duration {
	lo, hi := c.cfg.WanderMin, c.cfg.WanderMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(c.rng.Int63n(int64(hi-lo)+1))
}
