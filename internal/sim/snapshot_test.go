package sim

import "testing"

// TestSnapshotPoolPublishRead verifies readers see the latest published
// buffer, not the one under construction
func TestSnapshotPoolPublishRead(t *testing.T) {
	p := NewSnapshotPool(8)

	w := p.AcquireWrite()
	w.TickNumber = 1
	w.Score = 100
	p.PublishWrite()

	r := p.AcquireRead()
	if r.TickNumber != 1 || r.Score != 100 {
		t.Errorf("Expected published tick 1 score 100, got tick %d score %d", r.TickNumber, r.Score)
	}

	// A write in progress is invisible until published
	w2 := p.AcquireWrite()
	w2.TickNumber = 2
	if p.AcquireRead().TickNumber != 1 {
		t.Error("Unpublished write must not be visible to readers")
	}
	p.PublishWrite()
	if p.AcquireRead().TickNumber != 2 {
		t.Error("Published write should be visible")
	}
}

// TestSnapshotPoolSequenceMonotonic verifies every write gets a fresh sequence
func TestSnapshotPoolSequenceMonotonic(t *testing.T) {
	p := NewSnapshotPool(8)

	var last uint64
	for i := 0; i < 10; i++ {
		w := p.AcquireWrite()
		if w.Sequence <= last {
			t.Fatalf("Sequence %d not greater than previous %d", w.Sequence, last)
		}
		last = w.Sequence
		p.PublishWrite()
	}
}

// TestSnapshotPoolEntityCap verifies the entity list never grows past its
// pre-allocated capacity
func TestSnapshotPoolEntityCap(t *testing.T) {
	p := NewSnapshotPool(2)

	w := p.AcquireWrite()
	for i := 0; i < 5; i++ {
		appendEntity(w, &Entity{ID: uint32(i), Category: CategoryEnemy, Active: true})
	}
	if len(w.Entities) != 2 {
		t.Errorf("Expected entity list capped at 2, got %d", len(w.Entities))
	}

	// Reacquiring the same buffer resets the list but keeps capacity
	p.PublishWrite()
	p.AcquireWrite()
	p.AcquireWrite()
	w2 := p.AcquireWrite() // Back to the first buffer
	if len(w2.Entities) != 0 {
		t.Errorf("Expected reset entity list, got %d entries", len(w2.Entities))
	}
}

// TestAppendEntityFields verifies category-specific snapshot fields
func TestAppendEntityFields(t *testing.T) {
	p := NewSnapshotPool(8)
	w := p.AcquireWrite()

	appendEntity(w, &Entity{Category: CategoryPlayer, X: 1, Y: 2, HalfW: 20, HalfH: 20, Health: 80})
	appendEntity(w, &Entity{Category: CategoryItem, Item: ItemBooster, HalfW: 12, HalfH: 12})
	appendEntity(w, &Entity{Category: CategoryPlayerBullet, HalfW: 3, HalfH: 8})

	player := w.Entities[0]
	if player.Health != 80 || player.Width != 40 || player.Height != 40 {
		t.Errorf("Unexpected player snapshot: %+v", player)
	}
	if w.Entities[1].Item != "booster" {
		t.Errorf("Expected item kind booster, got %q", w.Entities[1].Item)
	}
	if w.Entities[2].Health != 0 || w.Entities[2].Item != "" {
		t.Error("Bullets carry neither health nor item kind")
	}
}
