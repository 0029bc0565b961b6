package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/ambience"
	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/game"
	"github.com/iburimskiy/particle-field/internal/logging"
	"github.com/iburimskiy/particle-field/internal/scene"
	"github.com/iburimskiy/particle-field/internal/sysinfo"
)

func main() {
	configPath := flag.String("config", "particles.yaml", "path to the YAML config")
	fullscreen := flag.Bool("fullscreen", false, "start fullscreen")
	track := flag.String("track", "", "soundtrack to loop (overrides ambience.track)")
	flag.Parse()

	if err := run(*configPath, *fullscreen, *track); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, fullscreen bool, track string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Environment: cfg.Log.Environment,
		LogLevel:    cfg.Log.Level,
		Host:        "window",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var configs <-chan *config.Config
	if watcher, err := config.NewWatcher(logger, configPath); err != nil {
		logger.Warn("Config hot reload disabled", zap.Error(err))
	} else {
		watcher.Start(ctx)
		defer watcher.Stop()
		configs = watcher.Updates()
	}

	monitor := sysinfo.NewMonitor(0)
	monitor.Start(ctx)

	lowPower := sysinfo.LowPower(ctx)
	player := ambience.NewPlayer(logger)
	if track == "" {
		track = cfg.Ambience.Track
	}
	if track != "" {
		if err := player.Load(track); err != nil {
			logger.Warn("Soundtrack not loaded", zap.Error(err))
		}
	}

	g := game.NewGame(game.Options{
		Logger:  logger,
		Config:  cfg,
		Scene:   []scene.Option{scene.WithLowPower(lowPower)},
		Configs: configs,
		Monitor: monitor,
		Player:  player,
	})
	defer g.Close()

	logger.Info("Starting particle field",
		zap.String("config", configPath),
		zap.Bool("low_power", lowPower),
		zap.Int("particles", g.Scene().Len()),
		zap.Int("budget", g.Scene().Budget()))

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Particle Field - H: stats, S: snapshot, M: soundtrack, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(fullscreen)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
