package sim

import "sync/atomic"

// Bounds is the playfield rectangle entities are allowed to live in.
// Entities leaving it (plus the pool's margin) are released during update.
type Bounds struct {
	Width, Height float64
}

// AdvanceFunc advances one active entity by dt seconds.
// Returning false releases the entity (expired, consumed, etc.); out-of-bounds
// release is handled by the pool itself.
type AdvanceFunc func(e *Entity, dt float64) bool

// Pool is a fixed-capacity entity pool for one category/kind.
// All slots are allocated at construction; Acquire and Release only flip the
// active flag. When every slot is active, spawn requests are silently dropped.
type Pool struct {
	category Category
	slots    []Entity
	active   int
	bounds   Bounds
	margin   float64
	advance  AdvanceFunc

	// Reused each tick; ActiveSnapshot hands out a view into this slice,
	// callers must not retain it past the tick.
	scratch []*Entity

	// HARD CAP accounting: spawns dropped at full capacity.
	dropped uint64 // atomic
}

// NewPool creates a pool with capacity pre-allocated slots.
// advance may be nil for pools whose entities are driven externally.
func NewPool(category Category, capacity int, bounds Bounds, margin float64, advance AdvanceFunc) *Pool {
	p := &Pool{
		category: category,
		slots:    make([]Entity, capacity),
		bounds:   bounds,
		margin:   margin,
		advance:  advance,
		scratch:  make([]*Entity, 0, capacity),
	}
	for i := range p.slots {
		p.slots[i].ID = uint32(i)
		p.slots[i].Category = category
	}
	return p
}

// Category returns the entity category this pool manages.
func (p *Pool) Category() Category { return p.category }

// Capacity returns the fixed slot count.
func (p *Pool) Capacity() int { return len(p.slots) }

// ActiveCount returns the number of currently active entities.
func (p *Pool) ActiveCount() int { return p.active }

// DroppedCount returns how many spawn requests were dropped at full capacity.
func (p *Pool) DroppedCount() uint64 { return atomic.LoadUint64(&p.dropped) }

// Acquire returns an inactive slot marked active and reset to a blank spawn
// state, or nil if all slots are active. At full capacity the spawn request
// is silently dropped: no queuing, no growth, existing actives untouched.
func (p *Pool) Acquire() *Entity {
	for i := range p.slots {
		if !p.slots[i].Active {
			e := &p.slots[i]
			e.reset()
			e.Active = true
			p.active++
			return e
		}
	}
	atomic.AddUint64(&p.dropped, 1)
	return nil
}

// Release marks an entity inactive. Idempotent: releasing an already-inactive
// entity is a no-op. The entity takes no part in later collision checks until
// reacquired.
func (p *Pool) Release(e *Entity) {
	if e == nil || !e.Active {
		return
	}
	e.Active = false
	p.active--
}

// Update advances every active entity exactly once: accumulates age, applies
// velocity, runs lifetime timers, then releases entities that expired or left
// the playfield. Must be called exactly once per tick, before ActiveSnapshot;
// calling it twice in one tick double-advances motion and is a caller error.
func (p *Pool) Update(dt float64) {
	for i := range p.slots {
		e := &p.slots[i]
		if !e.Active {
			continue
		}

		e.Age += dt
		if e.TTL > 0 {
			e.TTL -= dt
			if e.TTL <= 0 {
				p.Release(e)
				continue
			}
		}

		if p.advance != nil && !p.advance(e, dt) {
			p.Release(e)
			continue
		}

		e.X += e.VX * dt
		e.Y += e.VY * dt

		if p.outOfBounds(e) {
			p.Release(e)
		}
	}
}

func (p *Pool) outOfBounds(e *Entity) bool {
	m := p.margin
	return e.X < -m || e.X > p.bounds.Width+m || e.Y < -m || e.Y > p.bounds.Height+m
}

// ActiveSnapshot returns a read-only view of the currently active entities in
// slot order. The backing slice is reused every tick and must not be retained
// past the tick it was taken in.
func (p *Pool) ActiveSnapshot() []*Entity {
	p.scratch = p.scratch[:0]
	for i := range p.slots {
		if p.slots[i].Active {
			p.scratch = append(p.scratch, &p.slots[i])
		}
	}
	return p.scratch
}

// ReleaseAll deactivates every entity. Used when (re)entering a fresh run.
func (p *Pool) ReleaseAll() {
	for i := range p.slots {
		p.slots[i].Active = false
	}
	p.active = 0
}
