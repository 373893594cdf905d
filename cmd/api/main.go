package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/openroute/internal/adapters/http"
	natsadapter "github.com/samirrijal/openroute/internal/adapters/nats"
	"github.com/samirrijal/openroute/internal/adapters/ranking"
	"github.com/samirrijal/openroute/internal/adapters/scene"
	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/ports"
	"github.com/samirrijal/openroute/internal/core/usecases"
	"github.com/samirrijal/openroute/internal/pkg/config"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
	"github.com/samirrijal/openroute/internal/pkg/logging"
	"github.com/samirrijal/openroute/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("openroute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Ranking backend
	rankingTimeout := time.Duration(cfg.Ranking.Timeout) * time.Second
	ranker := ranking.NewClient(cfg.Ranking.BaseURL, rankingTimeout)

	// NATS (optional event export)
	var (
		events   ports.EventPublisher
		natsConn *nats.Conn
	)
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, session events are not exported", "error", err)
		} else {
			defer pub.Close()
			events = pub
			natsConn = pub.Conn()
		}
	}

	// Sessions
	fitter := geospatial.NewFitter(geospatial.FitOptions{
		PadRatio:  cfg.Map.PadRatio,
		PaddingPx: cfg.Map.PaddingPx,
		MaxZoom:   cfg.Map.MaxZoom,
	})
	camera := domain.Camera{
		Center: domain.GeoPoint{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
		Zoom:   cfg.Map.DefaultZ,
	}
	sessions := usecases.NewSessionManager(usecases.SessionManagerConfig{
		Session: usecases.SessionOptions{
			Ranker: ranker,
			Fitter: fitter,
			Style:  usecases.DefaultLayerStyle(),
			Events: events,
		},
		NewSurface: func() ports.Surface {
			return scene.New(cfg.Map.Width, cfg.Map.Height, camera)
		},
		TTL:         time.Duration(cfg.Session.TTL) * time.Second,
		MaxSessions: cfg.Session.Max,
	})
	defer sessions.CloseAll()
	go sessions.Run(ctx, time.Duration(cfg.Session.SweepInterval)*time.Second)

	deps := &http.Dependencies{
		Sessions:       sessions,
		Ranking:        ranker,
		NATS:           natsConn,
		RequestTimeout: rankingTimeout,
		Version:        version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "OpenRoute API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Location, Link",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "ranking", cfg.Ranking.BaseURL, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
