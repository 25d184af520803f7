package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cityblast/internal/config"
	"cityblast/internal/game"
	"cityblast/internal/input"
	"cityblast/internal/world"
)

func main() {
	var (
		cfgPath     string
		frames      int
		fast        bool
		metricsAddr string
		previewPath string
	)
	flag.StringVar(&cfgPath, "config", "", "path to simulation configuration file (JSON or YAML)")
	flag.IntVar(&frames, "frames", -1, "frames to simulate (0 runs until interrupted, -1 uses config)")
	flag.BoolVar(&fast, "fast", false, "run frames back to back on a synthetic clock")
	flag.StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	flag.StringVar(&previewPath, "preview", "", "write a top-down PNG of the arena on exit")
	flag.Parse()

	logger := log.New(log.Writer(), "citysim ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if frames >= 0 {
		cfg.Loop.MaxFrames = frames
	}
	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = metricsAddr
	}
	if previewPath != "" {
		cfg.World.PreviewPath = previewPath
	}

	arena, err := game.ArenaFromConfig(cfg.Arena)
	if err != nil {
		logger.Fatalf("arena: %v", err)
	}
	store := world.NewStore()
	logger.Printf("arena built: %d blocks across %d chunks", arena.Build(store), store.Len())

	var metrics *game.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics, err = game.NewMetrics(reg)
		if err != nil {
			logger.Fatalf("metrics: %v", err)
		}
		go serveMetrics(logger, cfg.Metrics.Listen, reg)
	}

	session := game.NewSession(game.OptionsFromConfig(cfg), store, patrolScript(), nil, metrics, logger)
	session.Prime()

	loop := game.NewLoop(session, cfg.Loop.FrameInterval.Duration(), cfg.Loop.MaxFrameDelta.Duration(), cfg.Loop.MaxFrames)
	if fast {
		loop.UseClock(syntheticTicker(time.Unix(0, 0)))
	}
	detonations := 0
	broken := 0
	loop.OnFrame(func(frame int, report game.TickReport) {
		if report.Agent.Detonated {
			detonations++
		}
		if report.Broke {
			broken++
		}
		if frame%600 == 0 {
			logger.Printf("frame %d: sim %v, %d chunks queued", frame, report.Now, report.Remesh.Remaining)
		}
	})

	ctx, cancel := signalContext()
	defer cancel()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("loop exited with error: %v", err)
	}

	player := session.Player()
	logger.Printf("stopped at sim %v: %d detonations, %d blocks broken, player at %v", session.Now(), detonations, broken, player.Position)

	if cfg.World.PreviewPath != "" {
		if err := world.SavePreview(store, arena.Bounds(), cfg.World.PreviewPath); err != nil {
			logger.Fatalf("save preview: %v", err)
		}
		logger.Printf("preview written to %s", cfg.World.PreviewPath)
	}
}

// loadConfig prefers a configuration passed through the environment over the file.
func loadConfig(path string) (*config.Config, error) {
	cfg, ok, err := configFromEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		return cfg, nil
	}
	return config.Load(path)
}

// patrolScript walks forward while turning slowly and holds break, so a
// headless run still exercises movement and destruction.
func patrolScript() *input.Script {
	return input.NewScript(
		input.Frame{Move: mgl32.Vec2{0, 1}, Jump: true},
		input.Frame{Move: mgl32.Vec2{0, 1}, Look: mgl32.Vec2{0.3, 0}, Break: true},
	)
}

func serveMetrics(logger *log.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Printf("serving metrics on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("metrics server: %v", err)
	}
}

// syntheticTicker emits ticks exactly one interval apart as fast as they are consumed.
func syntheticTicker(start time.Time) (game.TickerFactory, game.TimeSource) {
	factory := func(d time.Duration) (<-chan time.Time, func()) {
		ch := make(chan time.Time)
		done := make(chan struct{})
		go func() {
			defer close(ch)
			next := start
			for {
				next = next.Add(d)
				select {
				case ch <- next:
				case <-done:
					return
				}
			}
		}()
		return ch, func() { close(done) }
	}
	return factory, func() time.Time { return start }
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
