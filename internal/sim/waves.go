package sim

import "math"

// archetypeStats holds the static tuning for one enemy archetype.
type archetypeStats struct {
	Health     int
	Damage     int     // Contact damage; 0 = category default
	ScoreScale int     // Multiplier on the base enemy score
	HalfW      float64
	HalfH      float64
	FallSpeed  float64 // Vertical speed, units per second
	DriftAmp   float64 // Horizontal sine drift amplitude, units per second
	DriftFreq  float64 // Drift cycles per second
	FireEvery  float64 // Seconds between shots; 0 = never fires
}

// cachedArchetypes stores the archetype configurations, initialized once.
var cachedArchetypes = map[EnemyArchetype]archetypeStats{
	EnemyGrunt: {
		Health:     10,
		ScoreScale: 1,
		HalfW:      18,
		HalfH:      18,
		FallSpeed:  70,
		DriftAmp:   40,
		DriftFreq:  0.4,
		FireEvery:  2.4,
	},
	EnemyDarter: {
		Health:     10,
		ScoreScale: 2,
		HalfW:      14,
		HalfH:      14,
		FallSpeed:  130,
		DriftAmp:   120,
		DriftFreq:  0.9,
		FireEvery:  0, // Darters rely on contact, they never shoot
	},
	EnemyTank: {
		Health:     40,
		Damage:     35,
		ScoreScale: 3,
		HalfW:      26,
		HalfH:      26,
		FallSpeed:  40,
		DriftAmp:   15,
		DriftFreq:  0.2,
		FireEvery:  1.6,
	},
}

// statsFor returns the stats for an archetype, defaulting to grunt.
func statsFor(a EnemyArchetype) archetypeStats {
	if s, ok := cachedArchetypes[a]; ok {
		return s
	}
	return cachedArchetypes[EnemyGrunt]
}

// driftVelocity is the procedural horizontal motion for enemies: a pure
// function of (elapsed time, phase, amplitude, frequency) with no hidden
// mutable capture, so patterns are deterministic and independently testable.
func driftVelocity(age, phase, amp, freq float64) float64 {
	return amp * math.Sin(2*math.Pi*freq*age+phase)
}

// WaveSpec describes one scripted wave of enemies.
type WaveSpec struct {
	Count      int              // Enemies to spawn (ignored for boss waves)
	Archetypes []EnemyArchetype // Cycled over spawn order
	SpawnEvery float64          // Seconds between spawns
	Boss       bool             // Final wave: spawns the boss instead
}

// DefaultWaves returns the scripted wave table. The last wave is the boss
// wave; clearing it is the victory condition.
func DefaultWaves() []WaveSpec {
	return []WaveSpec{
		{Count: 6, Archetypes: []EnemyArchetype{EnemyGrunt}, SpawnEvery: 1.2},
		{Count: 8, Archetypes: []EnemyArchetype{EnemyGrunt, EnemyDarter}, SpawnEvery: 1.0},
		{Count: 10, Archetypes: []EnemyArchetype{EnemyGrunt, EnemyDarter, EnemyTank}, SpawnEvery: 0.9},
		{Count: 12, Archetypes: []EnemyArchetype{EnemyDarter, EnemyTank}, SpawnEvery: 0.7},
		{Boss: true},
	}
}

// WaveDirector walks the wave table, pacing enemy spawns and reporting when
// the final wave is cleared. It owns no entities; spawning goes through the
// callbacks so pool capacity policy stays with the pools.
type WaveDirector struct {
	waves   []WaveSpec
	idx     int
	spawned int
	timer   float64
	started bool // Wave-start already reported
	waiting bool // Current wave fully spawned, waiting for the field to clear
	cleared bool // Final wave cleared
}

// NewWaveDirector creates a director over the given wave table.
func NewWaveDirector(waves []WaveSpec) *WaveDirector {
	return &WaveDirector{waves: waves}
}

// Reset returns the director to the first wave.
func (d *WaveDirector) Reset() {
	d.idx = 0
	d.spawned = 0
	d.timer = 0
	d.started = false
	d.waiting = false
	d.cleared = false
}

// Wave returns the 1-based current wave number.
func (d *WaveDirector) Wave() int {
	if d.idx >= len(d.waves) {
		return len(d.waves)
	}
	return d.idx + 1
}

// Cleared reports whether the final wave has been cleared.
func (d *WaveDirector) Cleared() bool { return d.cleared }

// OnBossWave reports whether the current wave is the boss wave.
func (d *WaveDirector) OnBossWave() bool {
	return d.idx < len(d.waves) && d.waves[d.idx].Boss
}

// Update paces the current wave. hostilesActive is the number of live enemies
// plus the boss; spawnEnemy/spawnBoss report whether the spawn was accepted
// (a pool at capacity silently drops it, and the director retries next tick).
// Returns true when a new wave starts this update.
func (d *WaveDirector) Update(dt float64, hostilesActive int, spawnEnemy func(EnemyArchetype) bool, spawnBoss func() bool) bool {
	if d.cleared || d.idx >= len(d.waves) {
		return false
	}

	wave := d.waves[d.idx]
	waveStarted := false
	spawnedNow := false

	if !d.waiting {
		if !d.started {
			d.started = true
			waveStarted = true
		}

		if wave.Boss {
			if spawnBoss() {
				d.waiting = true
				spawnedNow = true
			}
		} else {
			d.timer -= dt
			if d.timer <= 0 && d.spawned < wave.Count {
				arch := wave.Archetypes[d.spawned%len(wave.Archetypes)]
				if spawnEnemy(arch) {
					d.spawned++
					d.timer = wave.SpawnEvery
					spawnedNow = true
				}
			}
			if d.spawned >= wave.Count {
				d.waiting = true
			}
		}
	}

	// Wave is done when everything it spawned is gone from the field. The
	// caller counts hostiles before this update, so an update that spawned
	// never advances: the new hostile isn't in the count yet.
	if d.waiting && hostilesActive == 0 && !spawnedNow {
		d.idx++
		d.spawned = 0
		d.timer = 0
		d.started = false
		d.waiting = false
		if d.idx >= len(d.waves) {
			d.cleared = true
		}
	}

	return waveStarted
}
