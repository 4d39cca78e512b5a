package sim

import (
	"math"
	"testing"
)

// TestDriftVelocityPure verifies drift is a pure function of its inputs
func TestDriftVelocityPure(t *testing.T) {
	a := driftVelocity(1.5, 0.3, 40, 0.4)
	b := driftVelocity(1.5, 0.3, 40, 0.4)
	if a != b {
		t.Error("driftVelocity must be deterministic for identical inputs")
	}

	if v := driftVelocity(0, 0, 40, 0.4); v != 0 {
		t.Errorf("Expected zero drift at age 0 phase 0, got %f", v)
	}

	// Amplitude bounds the output
	for age := 0.0; age < 10; age += 0.37 {
		v := driftVelocity(age, 1.1, 40, 0.9)
		if math.Abs(v) > 40 {
			t.Fatalf("Drift %f exceeds amplitude 40 at age %f", v, age)
		}
	}

	// Phase offsets shift the pattern
	if driftVelocity(1, 0, 40, 0.4) == driftVelocity(1, math.Pi/2, 40, 0.4) {
		t.Error("Different phases should produce different drift")
	}
}

// TestStatsForDefaultsToGrunt verifies unknown archetypes fall back to grunt
func TestStatsForDefaultsToGrunt(t *testing.T) {
	if statsFor(EnemyArchetype(200)) != cachedArchetypes[EnemyGrunt] {
		t.Error("Unknown archetype should default to grunt stats")
	}
	if statsFor(EnemyTank).Health != 40 {
		t.Errorf("Expected tank health 40, got %d", statsFor(EnemyTank).Health)
	}
}

// TestWaveDirectorSpawnPacing verifies spawn cadence and archetype cycling
func TestWaveDirectorSpawnPacing(t *testing.T) {
	d := NewWaveDirector([]WaveSpec{
		{Count: 3, Archetypes: []EnemyArchetype{EnemyGrunt, EnemyDarter}, SpawnEvery: 1.0},
	})

	var spawned []EnemyArchetype
	spawnEnemy := func(a EnemyArchetype) bool {
		spawned = append(spawned, a)
		return true
	}
	spawnBoss := func() bool { t.Fatal("Boss must not spawn on an enemy wave"); return false }

	// First update starts the wave and spawns immediately (timer starts at 0)
	if !d.Update(0.1, 0, spawnEnemy, spawnBoss) {
		t.Error("First update should report wave start")
	}
	if len(spawned) != 1 {
		t.Fatalf("Expected 1 spawn on wave start, got %d", len(spawned))
	}

	// No further spawn until the cadence elapses
	d.Update(0.5, 1, spawnEnemy, spawnBoss)
	if len(spawned) != 1 {
		t.Errorf("Expected no spawn mid-cadence, got %d", len(spawned))
	}
	d.Update(0.6, 1, spawnEnemy, spawnBoss)
	d.Update(1.1, 2, spawnEnemy, spawnBoss)

	if len(spawned) != 3 {
		t.Fatalf("Expected 3 spawns, got %d", len(spawned))
	}
	want := []EnemyArchetype{EnemyGrunt, EnemyDarter, EnemyGrunt}
	for i, a := range spawned {
		if a != want[i] {
			t.Errorf("Spawn %d: expected %s, got %s", i, want[i], a)
		}
	}
}

// TestWaveDirectorRetriesDroppedSpawns verifies a pool-full drop is retried
// instead of losing the enemy
func TestWaveDirectorRetriesDroppedSpawns(t *testing.T) {
	d := NewWaveDirector([]WaveSpec{
		{Count: 1, Archetypes: []EnemyArchetype{EnemyGrunt}, SpawnEvery: 1.0},
	})

	attempts := 0
	full := true
	spawnEnemy := func(a EnemyArchetype) bool {
		attempts++
		return !full
	}
	spawnBoss := func() bool { return false }

	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	if attempts != 2 {
		t.Fatalf("Expected 2 attempts while pool full, got %d", attempts)
	}

	full = false
	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	if attempts != 3 {
		t.Errorf("Expected retry to land, got %d attempts", attempts)
	}
}

// TestWaveDirectorAdvancesOnClear verifies waves advance only once the field
// is empty, and the final boss wave sets cleared
func TestWaveDirectorAdvancesOnClear(t *testing.T) {
	d := NewWaveDirector([]WaveSpec{
		{Count: 1, Archetypes: []EnemyArchetype{EnemyGrunt}, SpawnEvery: 0.5},
		{Boss: true},
	})

	bossActive := false
	spawnEnemy := func(a EnemyArchetype) bool { return true }
	spawnBoss := func() bool { bossActive = true; return true }

	if d.Wave() != 1 {
		t.Errorf("Expected wave 1, got %d", d.Wave())
	}

	// Spawn the single enemy; wave waits while it is alive
	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	d.Update(0.1, 1, spawnEnemy, spawnBoss)
	if d.Wave() != 1 {
		t.Error("Wave must not advance while hostiles remain")
	}

	// Field clears: next update advances to the boss wave and spawns the boss
	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	started := d.Update(0.1, 0, spawnEnemy, spawnBoss)
	if !started {
		t.Error("Boss wave start should be reported")
	}
	if d.Wave() != 2 || !d.OnBossWave() {
		t.Errorf("Expected boss wave 2, got wave %d (boss=%v)", d.Wave(), d.OnBossWave())
	}
	if !bossActive {
		t.Fatal("Boss should have spawned")
	}
	if d.Cleared() {
		t.Error("Cleared must not be set while the boss lives")
	}

	// Boss dies: final wave cleared
	d.Update(0.1, 0, spawnEnemy, spawnBoss)
	if !d.Cleared() {
		t.Error("Clearing the boss wave should set cleared")
	}

	// A cleared director is inert until reset
	if d.Update(0.1, 0, spawnEnemy, spawnBoss) {
		t.Error("Cleared director should not start waves")
	}

	d.Reset()
	if d.Cleared() || d.Wave() != 1 {
		t.Error("Reset should rewind to wave 1")
	}
}

// TestDefaultWavesEndWithBoss verifies the scripted table's victory condition
func TestDefaultWavesEndWithBoss(t *testing.T) {
	waves := DefaultWaves()
	if len(waves) == 0 {
		t.Fatal("Wave table should not be empty")
	}
	if !waves[len(waves)-1].Boss {
		t.Error("Final wave must be the boss wave")
	}
	for i, w := range waves[:len(waves)-1] {
		if w.Boss {
			t.Errorf("Wave %d should not be a boss wave", i+1)
		}
		if w.Count <= 0 || len(w.Archetypes) == 0 {
			t.Errorf("Wave %d has no enemies to spawn", i+1)
		}
	}
}
