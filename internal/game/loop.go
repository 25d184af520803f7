package game

import (
	"context"
	"time"
)

// TickerFactory returns a tick channel and its stop function.
type TickerFactory func(time.Duration) (<-chan time.Time, func())

type TimeSource func() time.Time

// Stepper is advanced once per frame.
type Stepper interface {
	Tick(dt time.Duration) TickReport
}

// Loop drives a Stepper from a ticker on the calling goroutine.
type Loop struct {
	target    Stepper
	frame     time.Duration
	maxDelta  time.Duration
	maxFrames int
	onFrame   func(frame int, report TickReport)

	newTicker TickerFactory
	now       TimeSource
}

// NewLoop builds a loop ticking every frame. Deltas above maxDelta are
// clamped; maxFrames of zero runs until the context is cancelled.
func NewLoop(target Stepper, frame, maxDelta time.Duration, maxFrames int) *Loop {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	if maxDelta <= 0 {
		maxDelta = frame
	}
	return &Loop{
		target:    target,
		frame:     frame,
		maxDelta:  maxDelta,
		maxFrames: maxFrames,
		newTicker: defaultTickerFactory,
		now:       time.Now,
	}
}

// UseClock replaces the wall ticker and clock, e.g. for a synthetic run.
func (l *Loop) UseClock(factory TickerFactory, now TimeSource) {
	if factory != nil {
		l.newTicker = factory
	}
	if now != nil {
		l.now = now
	}
}

// OnFrame registers a hook called after every frame.
func (l *Loop) OnFrame(fn func(frame int, report TickReport)) {
	l.onFrame = fn
}

func defaultTickerFactory(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

// Run ticks until ctx is done, the ticker closes or maxFrames is reached.
// Cancellation is only observed between frames.
func (l *Loop) Run(ctx context.Context) error {
	tickerC, stop := l.newTicker(l.frame)
	defer stop()

	last := l.now()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-tickerC:
			if !ok {
				return nil
			}
			delta := now.Sub(last)
			last = now
			if delta <= 0 {
				delta = l.frame
			} else if delta > l.maxDelta {
				delta = l.maxDelta
			}
			report := l.target.Tick(delta)
			frames++
			if l.onFrame != nil {
				l.onFrame(frames, report)
			}
			if l.maxFrames > 0 && frames >= l.maxFrames {
				return nil
			}
		}
	}
}
