package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (labels come from closed sets only)
var (
	// Simulation kernel metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033},
	})

	activeEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_active_entities",
		Help: "Currently active entities per pool",
	}, []string{"category"}) // Bounded: the closed category set

	spawnsDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_spawns_dropped_total",
		Help: "Spawn requests dropped at full pool capacity",
	})

	collisionChecks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_collision_checks_last_tick",
		Help: "AABB overlap tests performed in the last tick",
	})

	collisionBudgetExceeded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_collision_budget_exceeded_total",
		Help: "Ticks that hit the collision check ceiling",
	})

	rejectedTransitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_rejected_transitions_total",
		Help: "State transition requests rejected by the FSM",
	})

	abortedTicks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_aborted_ticks_total",
		Help: "Ticks abandoned after an internal fault",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// RecordTickDuration observes one tick's wall time. Called by the host loop.
func RecordTickDuration(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordConnectionRejected increments the rejection counter for a reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections sets the active WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one broadcast fan-out.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// StartMetricsLoop periodically scrapes simulation stats into gauges.
// Runs until the process exits.
func StartMetricsLoop(engine EngineInterface, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			stats := engine.Stats()
			setGaugeFromStat(activeEntities.WithLabelValues("player_bullet"), stats["activePlayerBullets"])
			setGaugeFromStat(activeEntities.WithLabelValues("enemy_bullet"), stats["activeEnemyBullets"])
			setGaugeFromStat(activeEntities.WithLabelValues("enemy"), stats["activeEnemies"])
			setGaugeFromStat(activeEntities.WithLabelValues("item"), stats["activeItems"])
			setGaugeFromStat(spawnsDropped, stats["droppedSpawns"])
			setGaugeFromStat(collisionChecks, stats["collisionChecks"])
			setGaugeFromStat(collisionBudgetExceeded, stats["budgetExceededTotal"])
			setGaugeFromStat(rejectedTransitions, stats["rejectedTransitions"])
			setGaugeFromStat(abortedTicks, stats["abortedTicks"])
		}
	}()
}

func setGaugeFromStat(g prometheus.Gauge, v interface{}) {
	switch n := v.(type) {
	case int:
		g.Set(float64(n))
	case uint64:
		g.Set(float64(n))
	case int64:
		g.Set(float64(n))
	}
}

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // MUST be "127.0.0.1:6060" in production
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// StartDebugServer starts the internal observability server
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	// SECURITY: Validate address is localhost
	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	// pprof endpoints for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Printf("📊 Debug server on http://%s (metrics, pprof)", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ Debug server stopped: %v", err)
		}
	}()

	return nil
}
