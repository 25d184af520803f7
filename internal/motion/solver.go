package motion

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"cityblast/internal/collide"
	"cityblast/internal/input"
)

// never marks a LastGrounded that can not satisfy the coyote window.
const never = time.Duration(math.MinInt64 / 2)

var maxPitch = mgl32.DegToRad(89)

// Params tunes the player body. Speeds are in blocks per second, Gravity is
// negative.
type Params struct {
	MaxSpeed        float32
	Acceleration    float32
	Friction        float32
	Gravity         float32
	JumpSpeed       float32
	CoyoteTime      time.Duration
	ProbeLift       float32
	ProbeDepth      float32
	RestingVelocity float32
	DeadZone        float32
	LookSpeed       float32
	Box             collide.Box
}

func DefaultParams() Params {
	return Params{
		MaxSpeed:        6,
		Acceleration:    12,
		Friction:        20,
		Gravity:         -24,
		JumpSpeed:       8.5,
		CoyoteTime:      120 * time.Millisecond,
		ProbeLift:       0.05,
		ProbeDepth:      0.15,
		RestingVelocity: -1,
		DeadZone:        0.15,
		LookSpeed:       2.5,
		Box:             collide.Box{HalfWidth: 0.3, Height: 1.8},
	}
}

// State is the player's persistent motion state.
type State struct {
	Position     mgl32.Vec3
	Velocity     mgl32.Vec3
	Yaw          float32
	Pitch        float32
	Grounded     bool
	LastGrounded time.Duration
	JumpPending  bool
}

func NewState(feet mgl32.Vec3) State {
	return State{Position: feet, LastGrounded: never}
}

// Basis returns the horizontal forward and right vectors for a yaw angle.
func Basis(yaw float32) (mgl32.Vec3, mgl32.Vec3) {
	s, c := float32(math.Sin(float64(yaw))), float32(math.Cos(float64(yaw)))
	return mgl32.Vec3{s, 0, c}, mgl32.Vec3{c, 0, -s}
}

// LookDirection is the unit view vector for the current yaw and pitch.
func (st *State) LookDirection() mgl32.Vec3 {
	forward, _ := Basis(st.Yaw)
	cp := float32(math.Cos(float64(st.Pitch)))
	sp := float32(math.Sin(float64(st.Pitch)))
	return mgl32.Vec3{forward.X() * cp, sp, forward.Z() * cp}
}

// Solver integrates player motion against voxel geometry.
type Solver struct {
	params Params
	probe  collide.Prober
	mover  collide.Mover
}

func NewSolver(params Params, probe collide.Prober, mover collide.Mover) *Solver {
	return &Solver{params: params, probe: probe, mover: mover}
}

func (s *Solver) Params() Params {
	return s.params
}

// Step advances st by dt at sim time now. move and look are raw stick
// vectors; the dead zone is applied here.
func (s *Solver) Step(st *State, move, look mgl32.Vec2, dt, now time.Duration) collide.Blocked {
	p := s.params
	seconds := float32(dt.Seconds())

	grounded := s.grounded(st.Position)
	if grounded {
		st.LastGrounded = now
	}

	lookIn := input.DeadZone(look, p.DeadZone)
	st.Yaw += lookIn.X() * p.LookSpeed * seconds
	st.Pitch = mgl32.Clamp(st.Pitch+lookIn.Y()*p.LookSpeed*seconds, -maxPitch, maxPitch)

	moveIn := input.DeadZone(move, p.DeadZone)
	forward, right := Basis(st.Yaw)
	wish := right.Mul(moveIn.X()).Add(forward.Mul(moveIn.Y()))
	if l := wish.Len(); l > 1 {
		wish = wish.Mul(1 / l)
	}

	horizontal := mgl32.Vec2{st.Velocity.X(), st.Velocity.Z()}
	if wish.LenSqr() > 0 {
		target := mgl32.Vec2{wish.X() * p.MaxSpeed, wish.Z() * p.MaxSpeed}
		blend := 1 - float32(math.Exp(float64(-p.Acceleration*seconds)))
		horizontal = horizontal.Add(target.Sub(horizontal).Mul(blend))
	} else if speed := horizontal.Len(); speed > 0 {
		reduced := speed - p.Friction*seconds
		if reduced < 0 {
			reduced = 0
		}
		horizontal = horizontal.Mul(reduced / speed)
	}
	vy := st.Velocity.Y() + p.Gravity*seconds

	if st.JumpPending {
		st.JumpPending = false
		if grounded || now-st.LastGrounded <= p.CoyoteTime {
			vy = p.JumpSpeed
			grounded = false
			st.LastGrounded = never
		}
	}

	st.Velocity = mgl32.Vec3{horizontal.X(), vy, horizontal.Y()}
	descending := vy < 0

	pos, blocked := s.mover.MoveAndSlide(p.Box, st.Position, st.Velocity.Mul(seconds))
	st.Position = pos
	if blocked.X {
		st.Velocity[0] = 0
	}
	if blocked.Y {
		st.Velocity[1] = 0
	}
	if blocked.Z {
		st.Velocity[2] = 0
	}
	if grounded && descending {
		st.Velocity[1] = p.RestingVelocity
	}
	st.Grounded = grounded
	return blocked
}

// grounded casts short rays down from the center and inset corners of the feet.
func (s *Solver) grounded(feet mgl32.Vec3) bool {
	p := s.params
	inset := p.Box.HalfWidth * 0.9
	length := p.ProbeLift + p.ProbeDepth
	down := mgl32.Vec3{0, -1, 0}
	offsets := [...]mgl32.Vec2{{0, 0}, {inset, inset}, {inset, -inset}, {-inset, inset}, {-inset, -inset}}
	for _, o := range offsets {
		origin := mgl32.Vec3{feet.X() + o.X(), feet.Y() + p.ProbeLift, feet.Z() + o.Y()}
		if s.probe.Ray(origin, down, length).Hit {
			return true
		}
	}
	return false
}
