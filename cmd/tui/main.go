package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/openroute/internal/adapters/ranking"
	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
	"github.com/samirrijal/openroute/internal/pkg/config"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
	"github.com/samirrijal/openroute/internal/pkg/logging"
	"github.com/samirrijal/openroute/internal/tui"
)

func main() {
	cfg, err := config.Load("openroute-tui")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// The screen belongs to the program, so logs go to a file.
	logFile, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logging.SetupWriter(logFile, cfg.Log.Level, cfg.Log.Format)

	timeout := time.Duration(cfg.Ranking.Timeout) * time.Second
	ranker := ranking.NewClient(cfg.Ranking.BaseURL, timeout)

	fitter := geospatial.NewFitter(geospatial.FitOptions{
		PadRatio:  cfg.Map.PadRatio,
		PaddingPx: cfg.Map.PaddingPx,
		MaxZoom:   cfg.Map.MaxZoom,
	})
	canvas := tui.NewCanvas(80, 24, domain.Camera{
		Center: domain.GeoPoint{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
		Zoom:   cfg.Map.DefaultZ,
	})
	session := usecases.NewCompareSession("terminal", canvas, usecases.SessionOptions{
		Ranker: ranker,
		Fitter: fitter,
		Style:  usecases.DefaultLayerStyle(),
	})
	defer session.Close()

	model := tui.NewModel(session, canvas, tui.Options{
		Ranker:         ranker,
		Timeout:        timeout,
		Start:          cfg.TUI.Start,
		End:            cfg.TUI.End,
		MaxSuggestions: cfg.TUI.MaxSuggestions,
		Preferences: domain.Preferences{
			FitnessLevel:     cfg.TUI.FitnessLevel,
			ScenicPreference: cfg.TUI.ScenicPreference,
			AvoidMainRoads:   cfg.TUI.AvoidMainRoads,
			TimePriority:     cfg.TUI.TimePriority,
		},
	})

	slog.Info("terminal client starting", "ranking", cfg.Ranking.BaseURL)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		slog.Error("terminal client failed", "error", err)
		log.Fatalf("run: %v", err)
	}
}
