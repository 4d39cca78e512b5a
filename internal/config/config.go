// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the core simulation kernel settings.
// These values are loaded once before the first tick and are immutable after.
type SimConfig struct {
	TickRate         int     // Simulation ticks per second
	WorldWidth       float64 // Playfield width in world units
	WorldHeight      float64 // Playfield height in world units
	CollisionBudget  int     // Max AABB overlap tests per tick (degrades, never errors)
	HistoryRetention int     // State transition history entries kept
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:         60,
		WorldWidth:       1280,
		WorldHeight:      720,
		CollisionBudget:  2000,
		HistoryRetention: 32,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
// Environment variables take precedence over defaults.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("SIM_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if w := getEnvInt("SIM_WORLD_WIDTH", 0); w > 0 {
		cfg.WorldWidth = float64(w)
	}
	if h := getEnvInt("SIM_WORLD_HEIGHT", 0); h > 0 {
		cfg.WorldHeight = float64(h)
	}
	if b := getEnvInt("SIM_COLLISION_BUDGET", 0); b > 0 {
		cfg.CollisionBudget = b
	}

	return cfg
}

// =============================================================================
// ENTITY POOL CAPACITIES
// =============================================================================

// PoolConfig holds the fixed pool capacities, one per entity kind.
// Capacity is configuration, not runtime-derived: each pool allocates all
// of its slots at construction and never grows.
type PoolConfig struct {
	PlayerBullets int // Hard cap on simultaneously active player bullets
	EnemyBullets  int // Hard cap on simultaneously active enemy bullets
	Enemies       int // Hard cap on simultaneously active enemies
	Items         int // Hard cap on simultaneously active items
}

// DefaultPools returns the default pool capacities.
func DefaultPools() PoolConfig {
	return PoolConfig{
		PlayerBullets: 64,
		EnemyBullets:  128,
		Enemies:       32,
		Items:         16,
	}
}

// PoolsFromEnv returns pool capacities with environment overrides.
func PoolsFromEnv() PoolConfig {
	cfg := DefaultPools()

	if n := getEnvInt("POOL_PLAYER_BULLETS", 0); n > 0 {
		cfg.PlayerBullets = n
	}
	if n := getEnvInt("POOL_ENEMY_BULLETS", 0); n > 0 {
		cfg.EnemyBullets = n
	}
	if n := getEnvInt("POOL_ENEMIES", 0); n > 0 {
		cfg.Enemies = n
	}
	if n := getEnvInt("POOL_ITEMS", 0); n > 0 {
		cfg.Items = n
	}

	return cfg
}

// =============================================================================
// GAMEPLAY TUNING
// =============================================================================

// Tuning holds the static gameplay tables: per-category default damage,
// score values, item effects and player handling. Loaded once, immutable.
type Tuning struct {
	// Per-category default damage, used when an entity carries no damage
	// value of its own.
	PlayerBulletDamage int
	EnemyBulletDamage  int
	EnemyContactDamage int
	BossContactDamage  int

	// Score values credited on destruction.
	EnemyScore int // Base value, scaled by archetype
	BossScore  int

	// Item effects.
	CoinValue   int // Coins credited per coin pickup
	BoosterHeal int // Health restored per booster pickup

	// Player handling.
	PlayerMaxHealth    int
	PlayerSpeed        float64 // World units per second
	PlayerFireCooldown float64 // Seconds between shots
	BulletSpeed        float64 // Player bullet speed, units per second
	BulletLifetime     float64 // Seconds before a bullet expires

	// Item drift.
	ItemFallSpeed float64
	ItemDropRate  float64 // Probability of an item drop on enemy death
}

// DefaultTuning returns the default gameplay tuning tables.
func DefaultTuning() Tuning {
	return Tuning{
		PlayerBulletDamage: 10,
		EnemyBulletDamage:  10,
		EnemyContactDamage: 25,
		BossContactDamage:  40,
		EnemyScore:         100,
		BossScore:          1000,
		CoinValue:          1,
		BoosterHeal:        25,
		PlayerMaxHealth:    100,
		PlayerSpeed:        420,
		PlayerFireCooldown: 0.18,
		BulletSpeed:        640,
		BulletLifetime:     2.5,
		ItemFallSpeed:      90,
		ItemDropRate:       0.25,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Pools  PoolConfig
	Tuning Tuning
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Pools:  PoolsFromEnv(),
		Tuning: DefaultTuning(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
