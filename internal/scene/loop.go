package scene

import (
	"context"
	"sync/atomic"
	"time"
)

// Scheduler blocks until the host is ready for the next frame.
type Scheduler interface {
	Wait(ctx context.Context) error
}

// TickerScheduler paces frames with a time.Ticker.
type TickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler paces at fps frames per second; fps <= 0 means 60.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (t *TickerScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ticker.C:
		return nil
	}
}

func (t *TickerScheduler) Stop() { t.ticker.Stop() }

// Loop drives a scene onto a canvas one frame at a time.
type Loop struct {
	scene  *Scene
	canvas Canvas

	before func()
	after  func(FrameStats)

	stopped atomic.Bool
	paused  atomic.Bool
	frames  atomic.Uint64
	last    atomic.Pointer[FrameStats]
}

type LoopOption func(*Loop)

// BeforeFrame runs fn at the start of every frame, before the update. Hosts
// use it to apply pending resizes or configs.
func BeforeFrame(fn func()) LoopOption {
	return func(l *Loop) { l.before = fn }
}

// AfterFrame runs fn once the frame is drawn, e.g. to present it.
func AfterFrame(fn func(FrameStats)) LoopOption {
	return func(l *Loop) { l.after = fn }
}

func NewLoop(s *Scene, c Canvas, opts ...LoopOption) *Loop {
	l := &Loop{scene: s, canvas: c}
	for _, opt := range opts {
		opt(l)
	}
	l.last.Store(&FrameStats{})
	return l
}

// Step runs exactly one frame. While paused the particles hold still but the
// frame is still drawn.
func (l *Loop) Step() FrameStats {
	if l.before != nil {
		l.before()
	}
	var stats FrameStats
	if !l.paused.Load() {
		stats = l.scene.Update()
	}
	stats = stats.Merge(l.scene.Draw(l.canvas))
	l.frames.Add(1)
	l.last.Store(&stats)
	if l.after != nil {
		l.after(stats)
	}
	return stats
}

// Run steps frames until Stop is called or ctx ends. Stop returns nil; a
// cancelled context returns its error.
func (l *Loop) Run(ctx context.Context, sched Scheduler) error {
	for !l.stopped.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step()
		if l.stopped.Load() {
			break
		}
		if err := sched.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop ends Run after the frame in flight.
func (l *Loop) Stop() { l.stopped.Store(true) }

func (l *Loop) Stopped() bool { return l.stopped.Load() }

// SetPaused freezes or resumes the simulation.
func (l *Loop) SetPaused(v bool) { l.paused.Store(v) }

func (l *Loop) Paused() bool { return l.paused.Load() }

// Frames is the number of frames stepped so far.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Last returns the stats of the most recent frame.
func (l *Loop) Last() FrameStats { return *l.last.Load() }
