package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/autoplay"
	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/game"
	"github.com/pthm-cable/sprout/metrics"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	turnLog := flag.String("turn-log", "", "Write a zstd-compressed JSONL turn log to this path")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed)")
	maxTurns := flag.Int("max-turns", 0, "Stop after N turns (0 = until win or loss)")
	scriptPath := flag.String("script", "", "Play actions from a script file instead of the grower")
	stemHeight := flag.Int("stem-height", autoplay.DefaultStemHeight, "Grower stem height before fruiting")
	roots := flag.Int("roots", autoplay.DefaultRoots, "Grower root count")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	printGrid := flag.Bool("print", false, "Print the final grid as ASCII")
	viewW := flag.Int("view-width", 0, "Columns printed around the player (0 = whole grid)")
	viewH := flag.Int("view-height", 0, "Rows printed around the player (0 = whole grid)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = config.Cfg().World.Seed
	}

	var controller autoplay.Controller
	if *scriptPath != "" {
		actions, err := loadScript(*scriptPath)
		if err != nil {
			slog.Error("failed to load script", "error", err)
			os.Exit(1)
		}
		controller = autoplay.NewScript(actions)
		// One action per turn; stop when the script ends
		if *maxTurns == 0 {
			*maxTurns = max(len(actions), 1)
		}
	} else {
		controller = autoplay.NewGrower(*stemHeight, *roots)
	}

	opts := game.Options{
		Config:      config.Cfg(),
		Seed:        *seed,
		MaxTurns:    *maxTurns,
		Controller:  controller,
		OutputDir:   *outputDir,
		TurnLogPath: *turnLog,
		LogStats:    *logStats,
	}

	var srv *http.Server
	if *metricsAddr != "" {
		m := metrics.New()
		opts.Metrics = m
		srv = &http.Server{Addr: *metricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start game", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", runSeed,
		"width", g.World().Width(),
		"height", g.World().Height(),
		"max_turns", *maxTurns,
	)

	outcome, runErr := g.Run(ctx)
	if err := g.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		srv.Shutdown(shutdownCtx)
		cancel()
	}

	if *printGrid {
		w := g.World()
		cam := camera.New(*viewW, *viewH, w.Width(), w.Height())
		cam.CenterOn(w.Player().Pos.X, w.Player().Pos.Y)
		fmt.Print(game.RenderViewport(w, cam))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("simulation failed", "turn", g.Turn(), "error", runErr)
		os.Exit(1)
	}
	slog.Info("simulation finished", "turn", g.Turn(), "outcome", outcome.String())
}

func loadScript(path string) ([]action.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return action.ParseScript(f)
}
