package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/scene"
)

// Host runs a scene inside a tcell screen. Input events are read on a
// separate goroutine but applied at the start of each frame.
type Host struct {
	logger  *zap.Logger
	screen  tcell.Screen
	scene   *scene.Scene
	canvas  *Canvas
	loop    *scene.Loop
	configs <-chan *config.Config

	events chan tcell.Event
}

type HostOption func(*Host)

// WithConfigUpdates applies configs received on ch between frames.
func WithConfigUpdates(ch <-chan *config.Config) HostOption {
	return func(h *Host) { h.configs = ch }
}

// NewHost initializes screen and builds a scene sized to it.
func NewHost(logger *zap.Logger, screen tcell.Screen, cfg *config.Config, sceneOpts []scene.Option, opts ...HostOption) (*Host, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	cols, lines := screen.Size()
	canvas := NewCanvas(cols, lines, PixelScale)
	w, h := canvas.Bounds()

	host := &Host{
		logger: logger,
		screen: screen,
		scene:  scene.New(cfg, w, h, sceneOpts...),
		canvas: canvas,
		events: make(chan tcell.Event, 64),
	}
	for _, opt := range opts {
		opt(host)
	}
	host.loop = scene.NewLoop(host.scene, canvas,
		scene.BeforeFrame(host.beforeFrame),
		scene.AfterFrame(host.afterFrame),
	)
	logger.Info("Terminal scene ready",
		zap.Int("cols", cols), zap.Int("lines", lines),
		zap.Int("particles", host.scene.Len()),
		zap.Int("budget", host.scene.Budget()))
	return host, nil
}

func (h *Host) Scene() *scene.Scene { return h.scene }

func (h *Host) Loop() *scene.Loop { return h.loop }

// Run renders at fps until the user quits or ctx ends, then restores the
// terminal.
func (h *Host) Run(ctx context.Context, fps int) error {
	done := make(chan struct{})
	defer h.screen.Fini()
	defer close(done)

	go h.pollEvents(done)

	sched := scene.NewTickerScheduler(fps)
	defer sched.Stop()

	err := h.loop.Run(ctx, sched)
	h.logger.Info("Terminal scene stopped", zap.Uint64("frames", h.loop.Frames()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Host) pollEvents(done <-chan struct{}) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		select {
		case h.events <- ev:
		case <-done:
			return
		}
	}
}

func (h *Host) beforeFrame() {
	for {
		select {
		case ev := <-h.events:
			h.handleEvent(ev)
		case cfg := <-h.configs:
			h.scene.Reconfigure(cfg)
			h.logger.Info("Config applied", zap.Int("particles", h.scene.Len()))
		default:
			return
		}
	}
}

func (h *Host) afterFrame(scene.FrameStats) {
	h.canvas.Present(h.screen)
	h.screen.Show()
}

func (h *Host) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
			ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			h.loop.Stop()
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			h.loop.SetPaused(!h.loop.Paused())
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			w, hh := h.canvas.Bounds()
			h.scene.Resize(w, hh)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		cx, cy := h.canvas.ToCanvas(x, y)
		h.scene.PointerMove(cx, cy)

	case *tcell.EventResize:
		cols, lines := ev.Size()
		h.canvas.Resize(cols, lines)
		w, hh := h.canvas.Bounds()
		h.scene.Resize(w, hh)
		h.screen.Sync()
		h.logger.Debug("Terminal resized",
			zap.Int("cols", cols), zap.Int("lines", lines),
			zap.Int("particles", h.scene.Len()))
	}
}
