package sim

import (
	"sync/atomic"
	"time"
)

// EntitySnapshot is an immutable copy of one entity for rendering.
// Uses value types (not pointers) to ensure immutability.
type EntitySnapshot struct {
	ID       uint32  `json:"id"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Health   int     `json:"health,omitempty"`
	Item     string  `json:"item,omitempty"`
}

// SimSnapshot is a complete immutable simulation state for presentation
// collaborators. All slices are pre-allocated and capped.
type SimSnapshot struct {
	Sequence   uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"` // When snapshot was created
	TickNumber uint64    `json:"tickNumber"`
	RNGSeed    int64     `json:"rngSeed"` // Seed for deterministic replay

	State         string `json:"state"`
	PreviousState string `json:"previousState"`

	Entities []EntitySnapshot `json:"entities"`

	// UI counters
	Score        int     `json:"score"`
	Coins        int     `json:"coins"`
	Level        int     `json:"level"`
	Wave         int     `json:"wave"`
	PlayTime     float64 `json:"playTime"`
	PlayerHealth int     `json:"playerHealth"`
	ActiveCount  int     `json:"activeCount"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer: the tick loop writes,
// render/API collaborators read the latest published buffer.
type SnapshotPool struct {
	snapshots [3]SimSnapshot // Triple buffer
	writeIdx  uint32         // atomic - producer index
	readIdx   uint32         // atomic - consumer index
	sequence  uint64         // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated entity slices.
// maxEntities is the sum of all pool capacities plus the player.
func NewSnapshotPool(maxEntities int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = SimSnapshot{
			Entities: make([]EntitySnapshot, 0, maxEntities),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *SimSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Entities = snap.Entities[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances the read pointer.
// Called after the snapshot is fully populated.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer side).
func (p *SnapshotPool) AcquireRead() *SimSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// appendEntity copies one entity into the snapshot under construction.
func appendEntity(snap *SimSnapshot, e *Entity) {
	if cap(snap.Entities) == len(snap.Entities) {
		return // Capacity cap reached; never grow
	}
	es := EntitySnapshot{
		ID:       e.ID,
		Category: e.Category.String(),
		X:        e.X,
		Y:        e.Y,
		Width:    e.HalfW * 2,
		Height:   e.HalfH * 2,
	}
	switch e.Category {
	case CategoryPlayer, CategoryEnemy, CategoryBoss:
		es.Health = e.Health
	case CategoryItem:
		es.Item = e.Item.String()
	}
	snap.Entities = append(snap.Entities, es)
}
