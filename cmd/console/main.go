package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/interactables"
	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	LogFile    string
}

// simulation is the locally simulated scene the console drives.
type simulation struct {
	scene      *world.Scene
	registry   *interaction.Registry
	markers    *world.Markers
	corridor   *corridor
	controller *interaction.Controller
	hud        *consoleHUD
	player     *consolePlayer
	pda        *consolePDA
	events     *eventQueue
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	consoleCfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    10 * time.Second,
		LogFile:    getEnv("CONSOLE_LOG", ""),
	}

	logger, closeLog, err := consoleLogger(consoleCfg.LogFile, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client := &http.Client{
		Timeout: consoleCfg.Timeout,
	}

	if !testConnection(client, consoleCfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	sim, err := loadSimulation(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene %q: %v\n", cfg.Scene, err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(consoleCfg, client, sim),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func loadSimulation(cfg *config.Config, logger *slog.Logger) (*simulation, error) {
	files := storage.NewFileStore(cfg.DataDir, logger)
	data, err := files.LoadLayout(context.Background(), cfg.Scene)
	if err != nil {
		return nil, err
	}
	layout, err := interactables.DecodeLayout(data)
	if err != nil {
		return nil, err
	}

	sim := &simulation{
		scene:    world.NewScene(cfg.Scene),
		registry: interaction.NewRegistry(),
		hud:      &consoleHUD{},
		player:   &consolePlayer{inputEnabled: true},
		pda:      &consolePDA{},
		events:   &eventQueue{},
	}
	env := interactables.Env{HUD: sim.hud, Events: sim.events, Logger: logger}
	if err := layout.Build(env, sim.scene, sim.registry); err != nil {
		return nil, err
	}
	sim.markers = world.DiscoverMarkers(sim.scene, cfg.MarkerTag, logger)

	positions := make(map[world.ObjectID]float64, len(layout.Objects))
	for _, entry := range layout.Objects {
		positions[world.ObjectID(entry.ID)] = entry.Position
	}
	sim.corridor = newCorridor(sim.scene, cfg.MarkerTag, positions)

	sim.controller = interaction.NewController(interaction.ControllerConfig{
		LayerMask:      interaction.LayerMask(cfg.InteractionMask),
		RayDistance:    cfg.RayDistance,
		CacheResidency: cfg.CacheResidency,
		SweepInterval:  cfg.CacheSweepInterval,
	}, interaction.Dependencies{
		Raycaster: sim.corridor,
		Resolver:  sim.registry,
		HUD:       sim.hud,
		Player:    sim.player,
		PDA:       sim.pda,
	}, logger)
	if err := sim.controller.Err(); err != nil {
		return nil, err
	}
	return sim, nil
}

// consoleLogger writes to path, or nowhere when path is empty, so log lines
// never tear the terminal UI.
func consoleLogger(path string, cfg *config.Config) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logger.New(f, cfg), func() { _ = f.Close() }, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
