package sim

import "testing"

func testBounds() Bounds {
	return Bounds{Width: 1280, Height: 720}
}

// TestPoolAcquireRelease verifies the basic lifecycle of a pool slot
func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool(CategoryEnemy, 4, testBounds(), 64, nil)

	if p.Capacity() != 4 {
		t.Fatalf("Expected capacity 4, got %d", p.Capacity())
	}
	if p.ActiveCount() != 0 {
		t.Fatalf("Expected 0 active, got %d", p.ActiveCount())
	}

	e := p.Acquire()
	if e == nil {
		t.Fatal("Acquire returned nil with free slots")
	}
	if !e.Active {
		t.Error("Acquired entity should be active")
	}
	if e.Category != CategoryEnemy {
		t.Errorf("Expected category enemy, got %s", e.Category)
	}
	if p.ActiveCount() != 1 {
		t.Errorf("Expected 1 active, got %d", p.ActiveCount())
	}

	p.Release(e)
	if e.Active {
		t.Error("Released entity should be inactive")
	}
	if p.ActiveCount() != 0 {
		t.Errorf("Expected 0 active after release, got %d", p.ActiveCount())
	}
}

// TestPoolHardCap verifies spawns beyond capacity are silently dropped:
// nil return, drop counter bumped, existing actives untouched
func TestPoolHardCap(t *testing.T) {
	p := NewPool(CategoryPlayerBullet, 2, testBounds(), 64, nil)

	first := p.Acquire()
	second := p.Acquire()
	if first == nil || second == nil {
		t.Fatal("First two acquires should succeed")
	}

	third := p.Acquire()
	if third != nil {
		t.Error("Acquire at full capacity should return nil")
	}
	if p.DroppedCount() != 1 {
		t.Errorf("Expected 1 dropped spawn, got %d", p.DroppedCount())
	}
	if !first.Active || !second.Active {
		t.Error("Existing actives must be untouched by a dropped spawn")
	}
	if p.ActiveCount() != 2 {
		t.Errorf("Expected 2 active, got %d", p.ActiveCount())
	}

	// A release frees exactly one slot again
	p.Release(first)
	if p.Acquire() == nil {
		t.Error("Acquire should succeed after a release")
	}
}

// TestPoolReleaseIdempotent verifies double-release is a harmless no-op
func TestPoolReleaseIdempotent(t *testing.T) {
	p := NewPool(CategoryItem, 2, testBounds(), 64, nil)

	e := p.Acquire()
	p.Release(e)
	p.Release(e)
	p.Release(nil)

	if p.ActiveCount() != 0 {
		t.Errorf("Expected 0 active after double release, got %d", p.ActiveCount())
	}

	// Both slots must still be acquirable
	if p.Acquire() == nil || p.Acquire() == nil {
		t.Error("Both slots should be acquirable after idempotent releases")
	}
}

// TestPoolAcquireResetsSlot verifies reacquired slots don't leak stale state
func TestPoolAcquireResetsSlot(t *testing.T) {
	p := NewPool(CategoryEnemy, 1, testBounds(), 64, nil)

	e := p.Acquire()
	e.Health = 7
	e.X = 500
	e.TTL = 3
	id := e.ID
	p.Release(e)

	e2 := p.Acquire()
	if e2.Health != 0 || e2.X != 0 || e2.TTL != 0 {
		t.Error("Reacquired slot should be reset to blank spawn state")
	}
	if e2.ID != id || e2.Category != CategoryEnemy {
		t.Error("Reset must preserve slot identity")
	}
}

// TestPoolUpdateMotion verifies velocity integration and age accumulation
func TestPoolUpdateMotion(t *testing.T) {
	p := NewPool(CategoryPlayerBullet, 2, testBounds(), 64, nil)

	e := p.Acquire()
	e.X = 100
	e.Y = 100
	e.VX = 50
	e.VY = -30

	p.Update(0.5)

	if e.X != 125 {
		t.Errorf("Expected X 125, got %f", e.X)
	}
	if e.Y != 85 {
		t.Errorf("Expected Y 85, got %f", e.Y)
	}
	if e.Age != 0.5 {
		t.Errorf("Expected age 0.5, got %f", e.Age)
	}
}

// TestPoolUpdateExpiresTTL verifies lifetime expiry releases the slot
func TestPoolUpdateExpiresTTL(t *testing.T) {
	p := NewPool(CategoryPlayerBullet, 2, testBounds(), 64, nil)

	e := p.Acquire()
	e.X = 100
	e.Y = 100
	e.TTL = 0.3

	p.Update(0.2)
	if !e.Active {
		t.Fatal("Entity should survive while TTL remains")
	}

	p.Update(0.2)
	if e.Active {
		t.Error("Entity should be released when TTL expires")
	}
	if p.ActiveCount() != 0 {
		t.Errorf("Expected 0 active after expiry, got %d", p.ActiveCount())
	}
}

// TestPoolUpdateReleasesOutOfBounds verifies the playfield margin cull
func TestPoolUpdateReleasesOutOfBounds(t *testing.T) {
	p := NewPool(CategoryEnemyBullet, 4, testBounds(), 64, nil)

	inside := p.Acquire()
	inside.X = 640
	inside.Y = 360

	leaving := p.Acquire()
	leaving.X = 640
	leaving.Y = 720 + 60
	leaving.VY = 100 // Crosses the 64-unit margin this update

	p.Update(0.1)

	if !inside.Active {
		t.Error("In-bounds entity should stay active")
	}
	if leaving.Active {
		t.Error("Entity beyond the margin should be released")
	}
}

// TestPoolAdvanceFunc verifies the per-entity advance hook can release
func TestPoolAdvanceFunc(t *testing.T) {
	p := NewPool(CategoryEnemy, 2, testBounds(), 64, func(e *Entity, dt float64) bool {
		return e.Health > 0
	})

	alive := p.Acquire()
	alive.X, alive.Y = 100, 100
	alive.Health = 5

	dead := p.Acquire()
	dead.X, dead.Y = 200, 200
	dead.Health = 0

	p.Update(0.1)

	if !alive.Active {
		t.Error("Entity kept by advance func should stay active")
	}
	if dead.Active {
		t.Error("Entity rejected by advance func should be released")
	}
}

// TestPoolActiveSnapshotOrder verifies snapshots list actives in slot order
func TestPoolActiveSnapshotOrder(t *testing.T) {
	p := NewPool(CategoryEnemy, 4, testBounds(), 64, nil)

	a := p.Acquire()
	b := p.Acquire()
	c := p.Acquire()
	p.Release(b)

	snap := p.ActiveSnapshot()
	if len(snap) != 2 {
		t.Fatalf("Expected 2 entities in snapshot, got %d", len(snap))
	}
	if snap[0] != a || snap[1] != c {
		t.Error("Snapshot should list actives in slot order")
	}
}

// TestPoolReleaseAll verifies full reset for a fresh run
func TestPoolReleaseAll(t *testing.T) {
	p := NewPool(CategoryItem, 3, testBounds(), 64, nil)
	p.Acquire()
	p.Acquire()

	p.ReleaseAll()

	if p.ActiveCount() != 0 {
		t.Errorf("Expected 0 active after ReleaseAll, got %d", p.ActiveCount())
	}
	if len(p.ActiveSnapshot()) != 0 {
		t.Error("Snapshot should be empty after ReleaseAll")
	}
}
