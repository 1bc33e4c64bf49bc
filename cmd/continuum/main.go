// Command continuum runs a covert-operations session: a mission team
// working a procedurally generated city while the consequence engine turns
// what they do into investigations, patterns, and storylines.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/continuum/internal/api"
	"github.com/talgya/continuum/internal/config"
	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/persistence"
	"github.com/talgya/continuum/internal/sim"
	"github.com/talgya/continuum/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	seed := cfg.Seed
	if seed == 0 {
		seed, err = entropy.NewSeed()
		if err != nil {
			slog.Error("failed to generate seed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Continuum — consequence and narrative engine", "seed", seed)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── City (always regenerated — deterministic from seed) ───────────
	worldCfg := world.DefaultGenConfig()
	worldCfg.Seed = seed
	city := world.Generate(worldCfg)
	slog.Info("city generated",
		"districts", len(city.Districts),
		"civilians", len(city.Civilians()),
		"agents", len(city.Agents()),
	)

	// ── Load or Start Session ─────────────────────────────────────────
	rng := entropy.New(seed)
	var eng *engine.Engine

	snap, err := db.Load()
	if err != nil {
		slog.Error("failed to load saved session", "error", err)
		os.Exit(1)
	}
	if snap != nil {
		eng, err = engine.Restore(rng, city, snap)
		if err != nil {
			slog.Error("failed to restore session", "error", err)
			os.Exit(1)
		}
		slog.Info("session restored",
			"turn", eng.Turn(),
			"events", eng.Log.Len(),
			"threads", len(eng.ActiveThreads()),
		)
	} else {
		eng = engine.New(rng, city)
		slog.Info("starting fresh session")
	}

	session := sim.NewSession(eng, city, rng, cfg.TeamSize)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("CONTINUUM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Eng:      eng,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
		Advance:  session.Step,
	}
	apiServer.Start()

	// ── Turn Loop ─────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		close(stop)
	}()

	fmt.Printf("\nContinuum is running: %d districts, %d people.\n",
		len(city.Districts), len(city.NPCs))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if snap != nil {
		fmt.Printf("Resuming from turn %d\n", eng.Turn())
	}
	fmt.Println("Starting session... (Ctrl+C to stop)")

	delay := time.Duration(cfg.TurnDelayMS) * time.Millisecond
	turns := 0

loop:
	for cfg.Turns == 0 || turns < cfg.Turns {
		select {
		case <-stop:
			break loop
		case <-time.After(delay):
		}

		report, err := session.Step()
		if err != nil {
			slog.Error("turn failed", "error", err)
			break
		}
		turns++

		fmt.Printf("\n— Turn %d —\n%s\n", report.Turn, report.Story)

		if turns%cfg.SaveEvery == 0 {
			if err := db.Save(eng.Snapshot()); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.Save(eng.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Session stopped. State saved.")
}
