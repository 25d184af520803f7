package input

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is one sample of the player's controls. Jump is an edge (true only
// on the frame it was pressed); Break is a level held for as long as the
// control is down.
type Frame struct {
	Move  mgl32.Vec2
	Look  mgl32.Vec2
	Jump  bool
	Break bool
}

// Source supplies one Frame per tick.
type Source interface {
	Next() Frame
}

// DeadZone filters small stick deflections and rescales the rest so that the
// output still spans the full unit disc. Vectors longer than 1 are clamped.
func DeadZone(v mgl32.Vec2, zone float32) mgl32.Vec2 {
	length := v.Len()
	if length <= zone || length == 0 {
		return mgl32.Vec2{}
	}
	if zone >= 1 {
		return mgl32.Vec2{}
	}
	scaled := (length - zone) / (1 - zone)
	if scaled > 1 {
		scaled = 1
	}
	return v.Mul(scaled / length)
}

// Repeater turns a held level into discrete presses: it fires on the first
// held tick and then once every Interval while the level stays high.
type Repeater struct {
	Interval time.Duration

	held   bool
	nextAt time.Duration
}

// Update reports whether an action should fire at sim time now.
func (r *Repeater) Update(held bool, now time.Duration) bool {
	if !held {
		r.held = false
		return false
	}
	if !r.held {
		r.held = true
		r.nextAt = now + r.Interval
		return true
	}
	if r.Interval <= 0 || now < r.nextAt {
		return false
	}
	r.nextAt += r.Interval
	if r.nextAt <= now {
		r.nextAt = now + r.Interval
	}
	return true
}

// Script replays a fixed list of frames, repeating the last one forever.
type Script struct {
	frames []Frame
	pos    int
}

func NewScript(frames ...Frame) *Script {
	return &Script{frames: frames}
}

func (s *Script) Next() Frame {
	if len(s.frames) == 0 {
		return Frame{}
	}
	if s.pos >= len(s.frames) {
		last := s.frames[len(s.frames)-1]
		last.Jump = false
		return last
	}
	f := s.frames[s.pos]
	s.pos++
	return f
}
