package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	httpapi "github.com/luki/climadash/internal/api/http"
	"github.com/luki/climadash/internal/config"
	"github.com/luki/climadash/internal/dashboard"
	"github.com/luki/climadash/internal/demo"
	"github.com/luki/climadash/internal/emulator"
	"github.com/luki/climadash/internal/feed"
	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/monitor"
	"github.com/luki/climadash/internal/store"
)

// source is a live feed: the websocket bridge or the local IIO sensors.
type source interface {
	Run(ctx context.Context, h feed.Handler) error
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	flag.Usage = printHelp
	flag.Parse()

	cmd, args := "monitor", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "help" {
		printHelp()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "climadash: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "monitor":
		err = runMonitor(cfg)
	case "serve":
		err = runServe(cfg)
	case "push":
		err = runPush(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "climadash: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage: climadash [-config file] [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  monitor               Live dashboard in the terminal (default)")
	fmt.Println("  serve                 Headless HTTP API on the configured listen address")
	fmt.Println("  push <url> [duration] Send simulated readings to a running server")
	fmt.Println()
	fmt.Println("Duration: e.g. '60' (seconds), '2m', '30s' (default: 60s)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  climadash")
	fmt.Println("  climadash -config /etc/climadash.yaml serve")
	fmt.Println("  climadash push http://localhost:8080 5m")
}

// runMonitor runs the TUI. Logs go to a file so they never hit the screen.
func runMonitor(cfg *config.Config) error {
	prefs, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}

	logCfg := cfg.Log
	if logCfg.File == "" {
		logCfg.File = filepath.Join(filepath.Dir(prefs.Path()), "climadash.log")
	}
	if err := logger.Init(logCfg); err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Theme != "" {
		err := prefs.Update(func(p *store.Prefs) {
			if p.Theme == "" {
				p.Theme = cfg.Theme
			}
		})
		if err != nil {
			logger.Component("main").WithError(err).Warn("could not seed theme preference")
		}
	}

	hub := dashboard.NewHub(cfg.MaxPoints)
	p := monitor.NewProgram(hub, prefs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := startFeeds(ctx, cfg, hub)
	defer runner.Stop()

	_, err = p.Run()
	return err
}

// runServe runs the feeds and the HTTP API until SIGINT or SIGTERM.
func runServe(cfg *config.Config) error {
	logCfg := cfg.Log
	logCfg.Console = true
	if err := logger.Init(logCfg); err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := dashboard.NewHub(cfg.MaxPoints)
	runner := startFeeds(ctx, cfg, hub)
	defer runner.Stop()

	app := httpapi.NewApp("climadash")
	httpapi.RegisterRoutes(app, hub)

	go func() {
		log.WithField("listen", cfg.Listen).Info("http server starting")
		if err := app.Listen(cfg.Listen); err != nil {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Warn("error during shutdown")
	}
	return nil
}

// startFeeds starts the configured live feed and arms the demo fallback.
func startFeeds(ctx context.Context, cfg *config.Config, hub *dashboard.Hub) *demo.Runner {
	log := logger.Component("main")

	var src source
	if cfg.FeedURL != "" {
		src = feed.NewWebSocketSource(cfg.FeedURL, nil)
	} else {
		src = feed.NewIIOSource(cfg.IIODir, cfg.IIOInterval)
	}
	go func() {
		if err := src.Run(ctx, hub); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("feed stopped")
		}
	}()

	runner := demo.NewRunner(hub, demo.NewGenerator(nil, cfg.DemoStep), cfg.DemoInterval)
	runner.SetCapacity(cfg.DemoMaxPoints)
	runner.StartIfIdle(cfg.DemoTimeout)
	return runner
}

func runPush(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	interval := fs.Duration("interval", 10*time.Second, "time between readings")
	fs.Parse(args)
	args = fs.Args()
	if len(args) == 0 {
		printHelp()
		return nil
	}

	logCfg := cfg.Log
	logCfg.Console = true
	if err := logger.Init(logCfg); err != nil {
		return err
	}
	defer logger.Close()

	duration := 60 * time.Second
	if len(args) > 1 {
		duration = emulator.ParseDuration(args[1], duration)
	}

	fmt.Printf("Pushing to %s every %s for %s\n", args[0], *interval, duration)
	fmt.Println("Press Ctrl+C to stop early")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := emulator.New(args[0], *interval).Run(ctx, duration)
	fmt.Printf("Sent %d, accepted %d, stored %d, failed %d\n", st.Sent, st.Accepted, st.Stored, st.Failed)
	return nil
}
