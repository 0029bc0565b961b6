// Package game hosts the particle scene in an ebiten window.
package game

import (
	"context"
	"errors"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/ambience"
	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/raster"
	"github.com/iburimskiy/particle-field/internal/scene"
	"github.com/iburimskiy/particle-field/internal/sysinfo"
)

// Options wires the window host to its collaborators.
type Options struct {
	Logger  *zap.Logger
	Config  *config.Config
	Scene   []scene.Option
	Configs <-chan *config.Config
	Monitor *sysinfo.Monitor
	Player  *ambience.Player
}

var backdrop = color.NRGBA{R: 10, G: 10, B: 10, A: 255}

type Game struct {
	logger  *zap.Logger
	scene   *scene.Scene
	configs <-chan *config.Config
	monitor *sysinfo.Monitor
	player  *ambience.Player

	width, height int
	started       time.Time

	// field keeps the particles between frames for the trail; the screen
	// itself is cleared every frame so the overlay text never smears.
	field   *ebiten.Image
	printAt func(dst *ebiten.Image, text string, x, y int)

	updateStats   scene.FrameStats
	stats         scene.FrameStats

	pointer pointerTracker
	touches touchSource

	// input edge detection
	prevKey map[ebiten.Key]bool

	showHUD bool
	paused  bool
	lastErr error
}

func NewGame(opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Player == nil {
		opts.Player = ambience.NewPlayer(opts.Logger)
	}
	return &Game{
		logger:  opts.Logger,
		scene:   scene.New(opts.Config, config.WindowWidth, config.WindowHeight, opts.Scene...),
		configs: opts.Configs,
		monitor: opts.Monitor,
		player:  opts.Player,
		width:   config.WindowWidth,
		height:  config.WindowHeight,
		started: time.Now(),
		touches: ebitenTouches{},
		prevKey: map[ebiten.Key]bool{},
		printAt: ebitenutil.DebugPrintAt,
	}
}

func (g *Game) Scene() *scene.Scene { return g.scene }

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	select {
	case cfg := <-g.configs:
		g.scene.Reconfigure(cfg)
		g.logger.Info("Config applied", zap.Int("particles", g.scene.Len()), zap.Int("budget", g.scene.Budget()))
	default:
	}

	mouseX, mouseY := ebiten.CursorPosition()
	g.pointer.cursor(g.scene, mouseX, mouseY)
	g.pointer.touches(g.scene, g.touches)

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if justPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if justPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if justPressed(ebiten.KeyS) {
		g.report(g.saveSnapshotDialog())
	}
	if justPressed(ebiten.KeyC) {
		g.report(g.saveConfigDialog())
	}
	if justPressed(ebiten.KeyM) {
		g.report(g.openTrackDialog())
	}
	if justPressed(ebiten.KeyP) {
		g.player.TogglePause()
	}

	g.scene.SetGlowBoost(g.player.Level())

	if g.paused {
		g.updateStats = scene.FrameStats{Particles: g.scene.Len()}
		return nil
	}
	g.updateStats = g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	field := g.fieldImage(b.Dx(), b.Dy())
	g.stats = g.updateStats.Merge(g.scene.Draw(screenCanvas{dst: field}))
	screen.DrawImage(field, nil)

	if g.showHUD {
		var host sysinfo.Stats
		if g.monitor != nil {
			host = g.monitor.Stats()
		}
		lines := hudLines(ebiten.ActualFPS(), g.stats, g.scene.Budget(), host, time.Since(g.started))
		for i, line := range lines {
			g.printAt(screen, line, 12, 12+16*i)
		}
	}
	g.printAt(screen, statusText(g.paused, g.player.Playing(), g.lastErr), 12, g.height-20)
}

// fieldImage returns the persistent particle layer, reallocating it when the
// window size changes.
func (g *Game) fieldImage(width, height int) *ebiten.Image {
	if g.field != nil {
		if b := g.field.Bounds(); b.Dx() == width && b.Dy() == height {
			return g.field
		}
		g.field.Deallocate()
	}
	g.field = ebiten.NewImage(max(width, 1), max(height, 1))
	g.field.Fill(backdrop)
	return g.field
}

// Layout follows the window size; a change reinitializes the particles.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.scene.Resize(float64(outsideWidth), float64(outsideHeight))
		g.logger.Debug("Window resized",
			zap.Int("width", outsideWidth), zap.Int("height", outsideHeight),
			zap.Int("particles", g.scene.Len()))
	}
	return g.width, g.height
}

// Close releases the soundtrack.
func (g *Game) Close() {
	g.player.Close()
	if g.field != nil {
		g.field.Deallocate()
		g.field = nil
	}
}

func (g *Game) report(err error) {
	g.lastErr = err
	if err != nil {
		g.logger.Error("Action failed", zap.Error(err))
	}
}

func (g *Game) openTrackDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Soundtrack"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: ambience.Extensions,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.player.Load(filename)
}

func (g *Game) saveSnapshotDialog() error {
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save Snapshot"),
		zenity.Filename("particles.png"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.saveSnapshot(filename)
}

func (g *Game) saveConfigDialog() error {
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save Settings"),
		zenity.Filename("particles.yaml"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "YAML",
			Patterns: []string{"*.yaml", "*.yml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.saveConfig(filename)
}

// saveConfig writes the settings currently in effect, hot reloads included.
func (g *Game) saveConfig(path string) error {
	if err := config.Save(g.scene.Config(), path); err != nil {
		return err
	}
	g.logger.Info("Settings saved", zap.String("path", path))
	return nil
}

// saveSnapshot draws the current particle state offscreen and writes it as PNG.
func (g *Game) saveSnapshot(path string) error {
	canvas, _, err := raster.Render(context.Background(), g.scene, 0)
	if err != nil {
		return err
	}
	defer canvas.Close()
	if err := canvas.SavePNG(path); err != nil {
		return err
	}
	g.logger.Info("Snapshot saved", zap.String("path", path))
	return nil
}
