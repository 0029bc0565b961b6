// Command particles-term runs the particle field inside a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/logging"
	"github.com/iburimskiy/particle-field/internal/scene"
	"github.com/iburimskiy/particle-field/internal/sysinfo"
	"github.com/iburimskiy/particle-field/internal/terminal"
)

func main() {
	configPath := flag.String("config", "particles.yaml", "path to the YAML config")
	fps := flag.Int("fps", 30, "frames per second")
	logLevel := flag.String("log-level", "info", "log level")
	logFile := flag.String("log-file", "particles-term.log", "log file; the terminal itself is busy drawing")
	flag.Parse()

	if err := run(*configPath, *fps, *logLevel, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, fps int, logLevel, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Environment: cfg.Log.Environment,
		LogLevel:    logLevel,
		Host:        "terminal",
		Output:      logFile,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hostOpts []terminal.HostOption
	if watcher, err := config.NewWatcher(logger, configPath); err != nil {
		logger.Warn("Config hot reload disabled", zap.Error(err))
	} else {
		watcher.Start(ctx)
		defer watcher.Stop()
		hostOpts = append(hostOpts, terminal.WithConfigUpdates(watcher.Updates()))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	host, err := terminal.NewHost(logger, screen, cfg,
		[]scene.Option{scene.WithLowPower(sysinfo.LowPower(ctx))}, hostOpts...)
	if err != nil {
		return err
	}
	return host.Run(ctx, fps)
}
