package motion

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityblast/internal/collide"
	"cityblast/internal/world"
)

const frame = 16 * time.Millisecond

type recordingMover struct {
	deltas []mgl32.Vec3
	block  collide.Blocked
}

func (r *recordingMover) MoveAndSlide(_ collide.Box, pos, delta mgl32.Vec3) (mgl32.Vec3, collide.Blocked) {
	r.deltas = append(r.deltas, delta)
	return pos.Add(delta), r.block
}

type airProbe struct{}

func (airProbe) Ray(mgl32.Vec3, mgl32.Vec3, float32) collide.Hit {
	return collide.Hit{}
}

func flatGround() *collide.Voxels {
	s := world.NewStore()
	s.Fill(world.BlockCoord{X: -8, Y: 0, Z: -8}, world.BlockCoord{X: 8, Y: 0, Z: 8}, world.Road)
	return collide.NewVoxels(s)
}

func airSolver(mover collide.Mover) *Solver {
	return NewSolver(DefaultParams(), airProbe{}, mover)
}

func TestBasis(t *testing.T) {
	forward, right := Basis(0)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, forward)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, right)

	forward, right = Basis(math.Pi / 2)
	assert.InDelta(t, 1, forward.X(), 1e-6)
	assert.InDelta(t, 0, forward.Z(), 1e-6)
	assert.InDelta(t, -1, right.Z(), 1e-6)
}

func TestStandingOnGroundRests(t *testing.T) {
	v := flatGround()
	s := NewSolver(DefaultParams(), v, v)
	st := NewState(mgl32.Vec3{0.5, 1, 0.5})

	blocked := s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, time.Second)

	assert.True(t, st.Grounded)
	assert.True(t, blocked.Y)
	assert.Equal(t, time.Second, st.LastGrounded)
	assert.Equal(t, DefaultParams().RestingVelocity, st.Velocity.Y())
	assert.InDelta(t, 1, st.Position.Y(), 0.01)
}

func TestFrictionNeverOvershoots(t *testing.T) {
	s := airSolver(&recordingMover{})
	st := NewState(mgl32.Vec3{})
	st.Velocity = mgl32.Vec3{1, 0, -0.5}

	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, 100*time.Millisecond, 0)

	assert.Zero(t, st.Velocity.X())
	assert.Zero(t, st.Velocity.Z())

	st.Velocity = mgl32.Vec3{10, 0, 0}
	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, 100*time.Millisecond, 0)
	assert.InDelta(t, 8, st.Velocity.X(), 1e-4)
}

func TestAccelerationApproachesMaxSpeed(t *testing.T) {
	s := airSolver(&recordingMover{})
	st := NewState(mgl32.Vec3{})
	max := DefaultParams().MaxSpeed

	s.Step(&st, mgl32.Vec2{0, 1}, mgl32.Vec2{}, frame, 0)
	first := st.Velocity.Z()
	want := max * (1 - float32(math.Exp(-12*frame.Seconds())))
	assert.InDelta(t, want, first, 1e-4)

	for i := 0; i < 200; i++ {
		s.Step(&st, mgl32.Vec2{0, 1}, mgl32.Vec2{}, frame, 0)
		require.LessOrEqual(t, st.Velocity.Z(), max)
	}
	assert.InDelta(t, max, st.Velocity.Z(), 1e-3)
	assert.InDelta(t, 0, st.Velocity.X(), 1e-6)
}

func TestDeadZoneSuppressesDrift(t *testing.T) {
	s := airSolver(&recordingMover{})
	st := NewState(mgl32.Vec3{})

	s.Step(&st, mgl32.Vec2{0.05, 0.1}, mgl32.Vec2{0.1, 0}, frame, 0)

	assert.Zero(t, st.Velocity.X())
	assert.Zero(t, st.Velocity.Z())
	assert.Zero(t, st.Yaw)
}

func TestJumpFromGround(t *testing.T) {
	v := flatGround()
	s := NewSolver(DefaultParams(), v, v)
	st := NewState(mgl32.Vec3{0.5, 1, 0.5})
	st.JumpPending = true

	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, time.Second)

	assert.False(t, st.JumpPending)
	assert.False(t, st.Grounded)
	assert.Equal(t, DefaultParams().JumpSpeed, st.Velocity.Y())
	assert.Greater(t, st.Position.Y(), float32(1))
}

func TestJumpConsumedWhenNotHonored(t *testing.T) {
	s := airSolver(&recordingMover{})
	st := NewState(mgl32.Vec3{0, 10, 0})
	st.JumpPending = true

	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, time.Second)

	assert.False(t, st.JumpPending)
	assert.Less(t, st.Velocity.Y(), float32(0))
}

func TestCoyoteWindow(t *testing.T) {
	cases := []struct {
		name     string
		airborne time.Duration
		honored  bool
	}{
		{name: "inside window", airborne: 100 * time.Millisecond, honored: true},
		{name: "at edge", airborne: 120 * time.Millisecond, honored: true},
		{name: "expired", airborne: 130 * time.Millisecond, honored: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := airSolver(&recordingMover{})
			now := 5 * time.Second
			st := NewState(mgl32.Vec3{0, 10, 0})
			st.LastGrounded = now - tc.airborne
			st.JumpPending = true

			s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, now)

			assert.Equal(t, tc.honored, st.Velocity.Y() == DefaultParams().JumpSpeed)
		})
	}
}

func TestCoyoteCannotRetrigger(t *testing.T) {
	s := airSolver(&recordingMover{})
	now := time.Second
	st := NewState(mgl32.Vec3{0, 10, 0})
	st.LastGrounded = now - 50*time.Millisecond
	st.JumpPending = true

	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, now)
	require.Equal(t, DefaultParams().JumpSpeed, st.Velocity.Y())

	st.JumpPending = true
	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, frame, now+frame)
	assert.Less(t, st.Velocity.Y(), DefaultParams().JumpSpeed)
}

func TestBlockedAxisZeroesVelocity(t *testing.T) {
	mover := &recordingMover{block: collide.Blocked{X: true}}
	s := airSolver(mover)
	st := NewState(mgl32.Vec3{})
	st.Velocity = mgl32.Vec3{5, 0, 5}

	s.Step(&st, mgl32.Vec2{1, 1}, mgl32.Vec2{}, frame, 0)

	assert.Zero(t, st.Velocity.X())
	assert.NotZero(t, st.Velocity.Z())
	require.Len(t, mover.deltas, 1)
}

func TestGravityAccumulates(t *testing.T) {
	mover := &recordingMover{}
	s := airSolver(mover)
	st := NewState(mgl32.Vec3{0, 50, 0})

	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, 100*time.Millisecond, 0)
	s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{}, 100*time.Millisecond, 0)

	assert.InDelta(t, -4.8, st.Velocity.Y(), 1e-4)
	assert.InDelta(t, -0.48, mover.deltas[1].Y(), 1e-4)
}

func TestPitchIsClamped(t *testing.T) {
	s := airSolver(&recordingMover{})
	st := NewState(mgl32.Vec3{})

	for i := 0; i < 100; i++ {
		s.Step(&st, mgl32.Vec2{}, mgl32.Vec2{0, 1}, 50*time.Millisecond, 0)
	}

	assert.InDelta(t, mgl32.DegToRad(89), st.Pitch, 1e-5)
	dir := st.LookDirection()
	assert.InDelta(t, 1, dir.Len(), 1e-5)
	assert.Greater(t, dir.Y(), float32(0.99))
}
