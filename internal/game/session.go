package game

import (
	"log"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/ai"
	"cityblast/internal/collide"
	"cityblast/internal/input"
	"cityblast/internal/mesh"
	"cityblast/internal/motion"
	"cityblast/internal/remesh"
	"cityblast/internal/world"
)

// Renderer receives rebuilt chunk geometry.
type Renderer interface {
	UploadChunk(coord world.ChunkCoord, geometry *mesh.Geometry)
}

// TickReport summarises one simulation frame.
type TickReport struct {
	Now     time.Duration
	Delta   time.Duration
	Agent   ai.TickResult
	Blocked collide.Blocked
	Broke   bool
	Broken  world.BlockCoord
	Remesh  remesh.DrainReport
}

// Session owns the world and every system that mutates it. All methods run
// on the caller's goroutine.
type Session struct {
	opts      Options
	store     *world.Store
	voxels    *collide.Voxels
	scheduler *remesh.Scheduler
	solver    *motion.Solver
	player    motion.State
	agent     *ai.Controller
	input     input.Source
	breaker   input.Repeater
	metrics   *Metrics
	logger    *log.Logger
	now       time.Duration
}

// NewSession wires a session over store. renderer, metrics and logger may be nil.
func NewSession(opts Options, store *world.Store, src input.Source, renderer Renderer, metrics *Metrics, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	if src == nil {
		src = input.NewScript()
	}
	voxels := collide.NewVoxels(store)
	s := &Session{
		opts:      opts,
		store:     store,
		voxels:    voxels,
		scheduler: remesh.New(store, renderer, metrics.remesh()),
		solver:    motion.NewSolver(opts.Motion, voxels, voxels),
		player:    motion.NewState(opts.PlayerSpawn),
		input:     src,
		breaker:   input.Repeater{Interval: opts.BreakInterval},
		metrics:   metrics,
		logger:    logger,
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	s.agent = ai.NewController(opts.Agent, opts.AgentSpawn, world.NewCarver(store), voxels, store, rng, logger)
	return s
}

// Prime rebuilds every pending chunk so the first frame shows the whole world.
func (s *Session) Prime() remesh.DrainReport {
	report := s.scheduler.DrainAll()
	s.logger.Printf("primed %d chunks (%d skipped)", report.Rebuilt, report.Skipped)
	return report
}

// Tick advances the session by dt: input, agent, player body, break action,
// then a bounded remesh drain.
func (s *Session) Tick(dt time.Duration) TickReport {
	s.now += dt
	report := TickReport{Now: s.now, Delta: dt}

	frame := s.input.Next()
	if frame.Jump {
		s.player.JumpPending = true
	}

	report.Agent = s.agent.Tick(dt, s.now, s.player.Position)
	if report.Agent.Detonated {
		s.logger.Printf("blast cleared %d blocks across %d chunks", report.Agent.Carve.Cleared, len(report.Agent.Carve.Chunks))
	}

	report.Blocked = s.solver.Step(&s.player, frame.Move, frame.Look, dt, s.now)

	if s.breaker.Update(frame.Break, s.now) {
		if target, ok := s.breakTarget(); ok {
			report.Broke = s.store.SetBlock(target.X, target.Y, target.Z, world.Air)
			report.Broken = target
		}
	}

	report.Remesh = s.scheduler.Drain(s.opts.DrainPerTick)
	s.metrics.observeTick(report)
	return report
}

func (s *Session) breakTarget() (world.BlockCoord, bool) {
	eye := s.Eye()
	hit := s.voxels.Ray(eye, s.player.LookDirection(), s.opts.Reach)
	if !hit.Hit {
		return world.BlockCoord{}, false
	}
	return collide.BreakTarget(hit), true
}

// Eye is the camera position above the player's feet.
func (s *Session) Eye() mgl32.Vec3 {
	return s.player.Position.Add(mgl32.Vec3{0, s.opts.EyeHeight, 0})
}

func (s *Session) Player() motion.State {
	return s.player
}

func (s *Session) Agent() ai.Agent {
	return s.agent.Agent()
}

func (s *Session) Store() *world.Store {
	return s.store
}

func (s *Session) Scheduler() *remesh.Scheduler {
	return s.scheduler
}

// Now is the accumulated simulation clock.
func (s *Session) Now() time.Duration {
	return s.now
}
