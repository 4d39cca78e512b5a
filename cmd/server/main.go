package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sky-raid/internal/api"
	"sky-raid/internal/config"
	"sky-raid/internal/sim"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🚀 ================================")
	log.Println("🚀  SKY RAID - SIMULATION KERNEL")
	log.Println("🚀 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	log.Printf("🎮 Config: %d TPS, %.0fx%.0f world, %d collision budget",
		appConfig.Sim.TickRate, appConfig.Sim.WorldWidth, appConfig.Sim.WorldHeight,
		appConfig.Sim.CollisionBudget)
	log.Printf("🛡️ Pool capacities: %d player bullets, %d enemy bullets, %d enemies, %d items",
		appConfig.Pools.PlayerBullets, appConfig.Pools.EnemyBullets,
		appConfig.Pools.Enemies, appConfig.Pools.Items)

	// Create the simulation
	engine := sim.NewOrchestrator(appConfig)

	// Event log (off unless a path is configured)
	if eventLogPath := os.Getenv("EVENT_LOG_PATH"); eventLogPath != "" {
		if err := engine.StartEventLog(eventLogPath); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", eventLogPath)
		}
	}

	// Debug server (metrics + pprof, localhost only)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}
	api.StartMetricsLoop(engine, time.Second)

	// API server with WebSocket hub, wired to simulation notifications
	server := api.NewServer(engine)
	server.WireCallbacks(engine)

	// Loading is complete once wiring is done: enter the menu
	if err := engine.Ready(); err != nil {
		log.Fatalf("❌ Failed to enter menu: %v", err)
	}

	// Host loop: one tick per frame at the configured rate. The tick never
	// propagates failures; the loop's availability beats any single frame.
	go func() {
		dt := 1.0 / float64(appConfig.Sim.TickRate)
		ticker := time.NewTicker(time.Second / time.Duration(appConfig.Sim.TickRate))
		defer ticker.Stop()

		for range ticker.C {
			start := time.Now()
			engine.Tick(dt)
			api.RecordTickDuration(time.Since(start))
		}
	}()
	log.Printf("🎮 Simulation ticking at %d TPS", appConfig.Sim.TickRate)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down...")
		engine.StopEventLog()
		server.Stop()
		os.Exit(0)
	}()

	addr := ":" + strconv.Itoa(appConfig.Server.Port)
	if err := server.Start(addr); err != nil {
		log.Fatalf("❌ API server failed: %v", err)
	}
}
