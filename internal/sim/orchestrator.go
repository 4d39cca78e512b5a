package sim

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"sky-raid/internal/config"
)

// InputIntent is the discrete input state consumed during pool update.
// Intents persist until replaced by the next SetInput.
type InputIntent struct {
	MoveX float64 `json:"moveX"` // -1..1
	MoveY float64 `json:"moveY"` // -1..1
	Fire  bool    `json:"fire"`
}

// Callbacks are the hooks presentation collaborators register on.
// They are invoked synchronously from the tick; keep them cheap.
type Callbacks struct {
	OnDestroyed   func(EntitySnapshot)
	OnStateChange func(from, to State, session SessionSnapshot)
}

// Orchestrator is the per-tick driver: it updates all pools, runs collision
// detection, applies resolution (damage, collection, scoring, destruction)
// and drives state transitions. All entity mutation happens here; pools own
// storage, the collision engine only ever sees read-only snapshots.
//
// The simulation itself is single-threaded and cooperative: one external
// Tick per rendered frame, strictly sequential within the tick. The mutex
// only fences the external control surface (HTTP handlers) off the tick.
type Orchestrator struct {
	mu sync.Mutex

	cfg    config.SimConfig
	tuning config.Tuning
	bounds Bounds

	machine *StateMachine

	playerBullets *Pool
	enemyBullets  *Pool
	enemies       *Pool
	items         *Pool

	// The player and the boss are single entities, not pooled.
	player Entity
	boss   Entity

	collider  *CollisionEngine
	director  *WaveDirector
	events    *EventLog
	snapshots *SnapshotPool
	records   *Records

	view         TickView
	input        InputIntent
	fireCooldown float64

	// Deterministic RNG for replayable runs; the seed advances every tick
	// and is recorded in the tick event.
	rng     *rand.Rand
	rngSeed int64

	tickCount uint64

	// Deferred state change: never applied mid-resolution, only after the
	// full result list for the tick has been processed.
	pending    State
	hasPending bool

	cb Callbacks

	budgetExceededTotal uint64 // atomic
	abortedTicks        uint64 // atomic
}

// Entity sizes that are identity, not tuning.
const (
	playerHalfW = 20
	playerHalfH = 20
	bulletHalfW = 3
	bulletHalfH = 8
	shotHalfW   = 4
	shotHalfH   = 4
	itemHalf    = 12
	bossHalfW   = 60
	bossHalfH   = 40

	bossHealth      = 600
	bossEntryY      = 120
	enemyShotSpeed  = 220
	bossShotSpeed   = 260
	offscreenMargin = 64
)

// NewOrchestrator wires the full simulation from configuration.
func NewOrchestrator(cfg config.AppConfig) *Orchestrator {
	bounds := Bounds{Width: cfg.Sim.WorldWidth, Height: cfg.Sim.WorldHeight}
	seed := time.Now().UnixNano()

	o := &Orchestrator{
		cfg:     cfg.Sim,
		tuning:  cfg.Tuning,
		bounds:  bounds,
		machine: NewStateMachine(cfg.Sim.HistoryRetention),
		playerBullets: NewPool(CategoryPlayerBullet, cfg.Pools.PlayerBullets,
			bounds, offscreenMargin, nil),
		enemyBullets: NewPool(CategoryEnemyBullet, cfg.Pools.EnemyBullets,
			bounds, offscreenMargin, nil),
		items: NewPool(CategoryItem, cfg.Pools.Items,
			bounds, offscreenMargin, nil),
		director: NewWaveDirector(DefaultWaves()),
		events:   NewEventLog(),
		records:  NewRecords(),
		rng:      rand.New(rand.NewSource(seed)),
		rngSeed:  seed,
	}

	// Enemy motion is a pure function of (age, phase, archetype).
	o.enemies = NewPool(CategoryEnemy, cfg.Pools.Enemies, bounds, offscreenMargin,
		func(e *Entity, dt float64) bool {
			st := statsFor(e.Archetype)
			e.VX = driftVelocity(e.Age, e.Phase, st.DriftAmp, st.DriftFreq)
			e.VY = st.FallSpeed
			return true
		})

	o.collider = NewCollisionEngine(DefaultRuleTable(), map[Category]int{
		CategoryPlayerBullet: cfg.Tuning.PlayerBulletDamage,
		CategoryEnemyBullet:  cfg.Tuning.EnemyBulletDamage,
		CategoryEnemy:        cfg.Tuning.EnemyContactDamage,
		CategoryBoss:         cfg.Tuning.BossContactDamage,
	}, cfg.Sim.CollisionBudget)

	maxEntities := 2 + cfg.Pools.PlayerBullets + cfg.Pools.EnemyBullets +
		cfg.Pools.Enemies + cfg.Pools.Items
	o.snapshots = NewSnapshotPool(maxEntities)

	o.registerStateHandlers()
	o.produceSnapshot()
	return o
}

// registerStateHandlers wires the FSM listeners: run initialization on fresh
// PLAYING entry, record keeping on run end, notifications on every entry.
func (o *Orchestrator) registerStateHandlers() {
	o.machine.OnEnter(StatePlaying, func(from State, s *Session) {
		// Resuming out of PAUSED keeps the field intact; anything else is a
		// fresh run. This distinction is load-bearing.
		if from != StatePaused {
			s.Reset()
			o.initRun()
		}
	})

	o.machine.OnEnter(StateGameOver, func(from State, s *Session) {
		o.recordRun(s, "game_over")
	})
	o.machine.OnEnter(StateVictory, func(from State, s *Session) {
		o.recordRun(s, "victory")
	})

	for _, st := range []State{StateMenu, StatePlaying, StatePaused, StateGameOver, StateVictory} {
		st := st
		o.machine.OnEnter(st, func(from State, s *Session) {
			snap := s.Snapshot()
			o.events.EmitSimple(EventTypeStateChange, o.tickCount, "fsm",
				StateChangePayload{From: from.String(), To: st.String(), Session: snap})
			if o.cb.OnStateChange != nil {
				o.cb.OnStateChange(from, st, snap)
			}
		})
	}
}

func (o *Orchestrator) recordRun(s *Session, outcome string) {
	o.records.Add(RunRecord{
		Score:    s.Score,
		Coins:    s.Coins,
		Level:    s.Level,
		Wave:     o.director.Wave(),
		PlayTime: s.PlayTime,
		Outcome:  outcome,
		EndedAt:  time.Now(),
	})
	log.Printf("🏁 Run finished (%s): score=%d coins=%d wave=%d", outcome, s.Score, s.Coins, o.director.Wave())
}

// initRun resets the field for a fresh PLAYING entry: all pools emptied, the
// player respawned, the wave script rewound.
func (o *Orchestrator) initRun() {
	o.playerBullets.ReleaseAll()
	o.enemyBullets.ReleaseAll()
	o.enemies.ReleaseAll()
	o.items.ReleaseAll()
	o.director.Reset()

	o.player = Entity{
		Category: CategoryPlayer,
		Active:   true,
		X:        o.bounds.Width / 2,
		Y:        o.bounds.Height - 60,
		HalfW:    playerHalfW,
		HalfH:    playerHalfH,
		Health:   o.tuning.PlayerMaxHealth,
	}
	o.boss = Entity{Category: CategoryBoss}
	o.fireCooldown = 0
	o.input = InputIntent{}
	o.hasPending = false

	log.Printf("🚀 New run: player at (%.0f, %.0f), %d waves queued", o.player.X, o.player.Y, len(DefaultWaves()))
}

// SetCallbacks registers the presentation hooks.
func (o *Orchestrator) SetCallbacks(cb Callbacks) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cb = cb
}

// StartEventLog initializes the event logging system.
func (o *Orchestrator) StartEventLog(filePath string) error {
	return o.events.Start(filePath)
}

// StopEventLog gracefully stops the event logging system.
func (o *Orchestrator) StopEventLog() {
	o.events.Stop()
}

// =============================================================================
// EXTERNAL CONTROL SURFACE
// =============================================================================

// Ready completes loading: LOADING -> MENU.
func (o *Orchestrator) Ready() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StateMenu)
}

// StartGame begins a run from the menu.
func (o *Orchestrator) StartGame() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StatePlaying)
}

// Pause suspends the simulation. Pausing simply stops update/detect/resolve
// from running; no tick ever leaves the field half-applied, so this is safe.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StatePaused)
}

// Resume continues a paused run without re-initializing the field.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StatePlaying)
}

// Restart starts a new run straight from GAME_OVER or VICTORY, bypassing the
// menu. The session is reset by the PLAYING entry handler.
func (o *Orchestrator) Restart() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StatePlaying)
}

// ToMenu returns to the menu after a finished run.
func (o *Orchestrator) ToMenu() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.TransitionTo(StateMenu)
}

// SetInput replaces the current input intent.
func (o *Orchestrator) SetInput(in InputIntent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	in.MoveX = clamp(in.MoveX, -1, 1)
	in.MoveY = clamp(in.MoveY, -1, 1)
	o.input = in
}

// State returns the current game phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.Current()
}

// Snapshot returns the latest immutable snapshot for lock-free reads.
func (o *Orchestrator) Snapshot() *SimSnapshot {
	return o.snapshots.AcquireRead()
}

// SessionSnapshot returns the current session counters.
func (o *Orchestrator) SessionSnapshot() SessionSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.Session().Snapshot()
}

// History returns the bounded state transition history.
func (o *Orchestrator) History() []Transition {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.History()
}

// BestRuns returns the process-local best-run records.
func (o *Orchestrator) BestRuns() []RunRecord {
	return o.records.Top()
}

// Stats returns counters for monitoring.
func (o *Orchestrator) Stats() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return map[string]interface{}{
		"tick":                o.tickCount,
		"state":               o.machine.Current().String(),
		"activePlayerBullets": o.playerBullets.ActiveCount(),
		"activeEnemyBullets":  o.enemyBullets.ActiveCount(),
		"activeEnemies":       o.enemies.ActiveCount(),
		"activeItems":         o.items.ActiveCount(),
		"droppedSpawns": o.playerBullets.DroppedCount() + o.enemyBullets.DroppedCount() +
			o.enemies.DroppedCount() + o.items.DroppedCount(),
		"collisionChecks":     o.collider.ChecksLastTick(),
		"budgetExceededTotal": atomic.LoadUint64(&o.budgetExceededTotal),
		"rejectedTransitions": o.machine.RejectedCount(),
		"abortedTicks":        atomic.LoadUint64(&o.abortedTicks),
		"eventLog":            o.events.GetStats(),
	}
}

// =============================================================================
// TICK
// =============================================================================

// Tick advances the simulation by dt seconds. It is the only entry point the
// host loop calls. No failure inside update/detect/resolve may abort the host
// loop: unexpected faults are caught here, logged, and the next tick proceeds
// (already-applied results stay applied).
func (o *Orchestrator) Tick(dt float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&o.abortedTicks, 1)
			log.Printf("💥 Tick %d aborted: %v", o.tickCount, r)
		}
	}()

	o.tickCount++

	if o.machine.Current() != StatePlaying {
		// Paused/menu: no update, no detect, no resolve. Presentation still
		// gets a fresh snapshot so UI counters stay current.
		o.produceSnapshot()
		return
	}

	// Advance RNG seed deterministically and record it for replay.
	o.events.EmitSimple(EventTypeTick, o.tickCount, "tick", TickPayload{
		RNGSeed:     o.rngSeed,
		ActiveCount: o.activeTotal(),
		DeltaTimeNs: int64(dt * 1e9),
	})
	o.rngSeed = o.rng.Int63()
	o.rng.Seed(o.rngSeed)

	sess := o.machine.Session()
	sess.PlayTime += dt

	// Phase 1: every pool updates exactly once, fixed order. Collision tests
	// observe post-update positions only.
	o.updatePlayer(dt)
	o.playerBullets.Update(dt)
	o.enemies.Update(dt)
	o.updateBoss(dt)
	o.enemyBullets.Update(dt)
	o.items.Update(dt)
	o.updateEnemyFire(dt)

	hostiles := o.enemies.ActiveCount()
	if o.boss.Active {
		hostiles++
	}
	if o.director.Update(dt, hostiles, o.spawnEnemy, o.spawnBoss) {
		sess.Level = o.director.Wave()
		o.events.EmitSimple(EventTypeWaveStart, o.tickCount, "director", WaveStartPayload{
			Wave:  o.director.Wave(),
			Level: sess.Level,
			Boss:  o.director.OnBossWave(),
		})
		log.Printf("🌊 Wave %d starting (boss=%v)", o.director.Wave(), o.director.OnBossWave())
	}

	// Phase 2: category snapshot + detection.
	o.buildView()
	results := o.collider.Detect(&o.view)
	if o.collider.BudgetExhausted() {
		atomic.AddUint64(&o.budgetExceededTotal, 1)
	}

	// Phase 3: in-order resolution.
	o.resolve(results)
	o.view.Clear()

	// Phase 4: deferred transitions, applied only after the full result list.
	if !o.hasPending && o.director.Cleared() {
		o.scheduleTransition(StateVictory)
	}
	if o.hasPending {
		to := o.pending
		o.hasPending = false
		if err := o.machine.TransitionTo(to); err != nil {
			log.Printf("⚠️ Deferred transition failed: %v", err)
		}
	}

	// Phase 5: publish outputs for presentation collaborators.
	o.produceSnapshot()
}

// scheduleTransition defers a state change to the end of the tick. The first
// scheduled transition wins; a run cannot end twice in one tick.
func (o *Orchestrator) scheduleTransition(to State) {
	if o.hasPending {
		return
	}
	o.pending = to
	o.hasPending = true
}

func (o *Orchestrator) activeTotal() int {
	n := o.playerBullets.ActiveCount() + o.enemyBullets.ActiveCount() +
		o.enemies.ActiveCount() + o.items.ActiveCount()
	if o.player.Active {
		n++
	}
	if o.boss.Active {
		n++
	}
	return n
}

// =============================================================================
// PER-KIND UPDATES
// =============================================================================

// updatePlayer consumes input intents: movement, clamped to the playfield,
// and firing through the player-bullet pool.
func (o *Orchestrator) updatePlayer(dt float64) {
	if !o.player.Active {
		return // Missing player: skip only this subsystem for the tick
	}

	p := &o.player
	p.Age += dt
	p.VX = o.input.MoveX * o.tuning.PlayerSpeed
	p.VY = o.input.MoveY * o.tuning.PlayerSpeed
	p.X = clamp(p.X+p.VX*dt, p.HalfW, o.bounds.Width-p.HalfW)
	p.Y = clamp(p.Y+p.VY*dt, p.HalfH, o.bounds.Height-p.HalfH)

	o.fireCooldown -= dt
	if o.input.Fire && o.fireCooldown <= 0 {
		o.spawnPlayerBullet()
		o.fireCooldown = o.tuning.PlayerFireCooldown
	}
}

// updateBoss runs the boss script: descend to the entry line, then sweep
// horizontally on a fixed sine, firing aimed spreads.
func (o *Orchestrator) updateBoss(dt float64) {
	if !o.boss.Active {
		return
	}

	b := &o.boss
	b.Age += dt
	if b.Y < bossEntryY {
		b.VX = 0
		b.VY = 60
	} else {
		b.VY = 0
		b.VX = driftVelocity(b.Age, b.Phase, 160, 0.25)
	}
	b.X = clamp(b.X+b.VX*dt, b.HalfW, o.bounds.Width-b.HalfW)
	b.Y += b.VY * dt

	b.Cooldown -= dt
	if b.Cooldown <= 0 && o.player.Active {
		for _, spread := range []float64{-0.3, 0, 0.3} {
			o.spawnAimedShot(b.X, b.Y+b.HalfH, bossShotSpeed, spread)
		}
		b.Cooldown = 1.0
	}
}

// updateEnemyFire runs fire-control for enemies that shoot. Skipped entirely
// when there is no player to aim at.
func (o *Orchestrator) updateEnemyFire(dt float64) {
	if !o.player.Active {
		return
	}

	for _, e := range o.enemies.ActiveSnapshot() {
		st := statsFor(e.Archetype)
		if st.FireEvery <= 0 {
			continue
		}
		e.Cooldown -= dt
		if e.Cooldown <= 0 {
			o.spawnAimedShot(e.X, e.Y+e.HalfH, enemyShotSpeed, 0)
			e.Cooldown = st.FireEvery
		}
	}
}

// =============================================================================
// SPAWNING
// =============================================================================

func (o *Orchestrator) spawnPlayerBullet() {
	b := o.playerBullets.Acquire()
	if b == nil {
		return // Pool full: spawn silently dropped
	}
	b.X = o.player.X
	b.Y = o.player.Y - o.player.HalfH
	b.VY = -o.tuning.BulletSpeed
	b.HalfW = bulletHalfW
	b.HalfH = bulletHalfH
	b.Damage = o.tuning.PlayerBulletDamage
	b.TTL = o.tuning.BulletLifetime
}

// spawnAimedShot fires an enemy bullet from (x, y) at the player, rotated by
// spread radians.
func (o *Orchestrator) spawnAimedShot(x, y, speed, spread float64) {
	b := o.enemyBullets.Acquire()
	if b == nil {
		return
	}

	angle := math.Atan2(o.player.Y-y, o.player.X-x) + spread
	b.X = x
	b.Y = y
	b.VX = math.Cos(angle) * speed
	b.VY = math.Sin(angle) * speed
	b.HalfW = shotHalfW
	b.HalfH = shotHalfH
	b.TTL = 6
}

func (o *Orchestrator) spawnEnemy(arch EnemyArchetype) bool {
	e := o.enemies.Acquire()
	if e == nil {
		return false // Pool full: director retries next tick
	}

	st := statsFor(arch)
	e.Archetype = arch
	e.Health = st.Health
	e.Damage = st.Damage
	e.ScoreValue = o.tuning.EnemyScore * st.ScoreScale
	e.HalfW = st.HalfW
	e.HalfH = st.HalfH
	e.X = st.HalfW + o.rng.Float64()*(o.bounds.Width-2*st.HalfW)
	e.Y = -st.HalfH
	e.Phase = o.rng.Float64() * 2 * math.Pi
	e.Cooldown = st.FireEvery * (0.5 + o.rng.Float64()*0.5)

	o.events.EmitSimple(EventTypeSpawn, o.tickCount, "enemy", SpawnPayload{
		Category: e.Category.String(),
		SlotID:   e.ID,
		X:        e.X,
		Y:        e.Y,
	})
	return true
}

func (o *Orchestrator) spawnBoss() bool {
	if o.boss.Active {
		return true
	}

	o.boss = Entity{
		Category:   CategoryBoss,
		Active:     true,
		X:          o.bounds.Width / 2,
		Y:          -bossHalfH,
		HalfW:      bossHalfW,
		HalfH:      bossHalfH,
		Health:     bossHealth,
		ScoreValue: o.tuning.BossScore,
		Cooldown:   1.5,
	}

	o.events.EmitSimple(EventTypeSpawn, o.tickCount, "boss", SpawnPayload{
		Category: CategoryBoss.String(),
		X:        o.boss.X,
		Y:        o.boss.Y,
	})
	log.Printf("👹 Boss entering with %d health", bossHealth)
	return true
}

// maybeDropItem rolls an item drop at a destroyed enemy's position.
func (o *Orchestrator) maybeDropItem(x, y float64) {
	if o.rng.Float64() >= o.tuning.ItemDropRate {
		return
	}

	it := o.items.Acquire()
	if it == nil {
		return
	}
	it.X = x
	it.Y = y
	it.VY = o.tuning.ItemFallSpeed
	it.HalfW = itemHalf
	it.HalfH = itemHalf
	if o.rng.Float64() < 0.7 {
		it.Item = ItemCoin
	} else {
		it.Item = ItemBooster
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// resolve consumes the collision results strictly in emission order. A result
// referencing an entity that an earlier result already deactivated is skipped
// entirely: no damage, no double scoring.
func (o *Orchestrator) resolve(results []CollisionResult) {
	for i := range results {
		r := &results[i]
		if !r.A.Active || !r.B.Active {
			continue // Stale reference from an earlier result this tick
		}

		if r.Collection {
			o.resolveCollection(r)
			continue
		}

		if r.DamageToA > 0 {
			o.applyDamage(r.A, r.DamageToA)
		}
		if r.DamageToB > 0 && r.B.Active {
			o.applyDamage(r.B, r.DamageToB)
		}

		// Projectiles are consumed by any result they appear in, regardless
		// of which side took the damage.
		o.consumeProjectile(r.A)
		o.consumeProjectile(r.B)

		// Ramming consumes the enemy: a contact hit despawns the enemy side
		// without scoring. The boss survives contact.
		if r.A.Category == CategoryEnemy && r.B.Category == CategoryPlayer && r.A.Active {
			o.releaseEntity(r.A)
		}
	}
}

// resolveCollection applies an item's effect to the player. No damage fields
// apply on collection pairs.
func (o *Orchestrator) resolveCollection(r *CollisionResult) {
	item := r.B
	if item.Category != CategoryItem {
		item = r.A
	}

	sess := o.machine.Session()
	switch item.Item {
	case ItemCoin:
		sess.Coins += o.tuning.CoinValue
	case ItemBooster:
		o.player.Health += o.tuning.BoosterHeal
		if o.player.Health > o.tuning.PlayerMaxHealth {
			o.player.Health = o.tuning.PlayerMaxHealth
		}
	}

	o.events.EmitSimple(EventTypeCollect, o.tickCount, "item", CollectPayload{
		Kind:  item.Item.String(),
		Coins: sess.Coins,
	})
	o.releaseEntity(item)
}

// applyDamage damages a character and runs death processing exactly once if
// health drops to zero or below.
func (o *Orchestrator) applyDamage(target *Entity, damage int) {
	target.Health -= damage

	o.events.EmitSimple(EventTypeDamage, o.tickCount, target.Category.String(), DamagePayload{
		Target:    target.Category.String(),
		TargetID:  target.ID,
		Damage:    damage,
		HealthNow: target.Health,
	})

	if target.Health <= 0 {
		o.destroy(target)
	}
}

// destroy runs death processing: score the kill, signal presentation, roll
// item drops, deactivate, and schedule the end-of-run transition when the
// player dies.
func (o *Orchestrator) destroy(target *Entity) {
	sess := o.machine.Session()

	switch target.Category {
	case CategoryEnemy:
		sess.Score += target.ScoreValue
		o.maybeDropItem(target.X, target.Y)
	case CategoryBoss:
		sess.Score += target.ScoreValue
		log.Printf("💀 Boss destroyed, +%d score", target.ScoreValue)
	case CategoryPlayer:
		log.Printf("💀 Player destroyed at tick %d", o.tickCount)
		o.scheduleTransition(StateGameOver)
	}

	o.events.EmitSimple(EventTypeDestroyed, o.tickCount, target.Category.String(), DestroyedPayload{
		Category: target.Category.String(),
		SlotID:   target.ID,
		Score:    target.ScoreValue,
	})
	if o.cb.OnDestroyed != nil {
		snap := EntitySnapshot{
			ID:       target.ID,
			Category: target.Category.String(),
			X:        target.X,
			Y:        target.Y,
		}
		o.cb.OnDestroyed(snap)
	}

	o.releaseEntity(target)
}

// consumeProjectile deactivates bullet entities after they hit anything.
func (o *Orchestrator) consumeProjectile(e *Entity) {
	switch e.Category {
	case CategoryPlayerBullet, CategoryEnemyBullet:
		o.releaseEntity(e)
	}
}

// releaseEntity is the capability registry: O(1) dispatch from entity handle
// to its owner, exhaustive over the closed category set.
func (o *Orchestrator) releaseEntity(e *Entity) {
	switch e.Category {
	case CategoryPlayer:
		o.player.Active = false
	case CategoryPlayerBullet:
		o.playerBullets.Release(e)
	case CategoryEnemyBullet:
		o.enemyBullets.Release(e)
	case CategoryEnemy:
		o.enemies.Release(e)
	case CategoryBoss:
		o.boss.Active = false
	case CategoryItem:
		o.items.Release(e)
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// buildView groups per-pool active snapshots by category for detection.
func (o *Orchestrator) buildView() {
	o.view.Clear()
	if o.player.Active {
		o.view.Set(CategoryPlayer, []*Entity{&o.player})
	}
	if o.boss.Active {
		o.view.Set(CategoryBoss, []*Entity{&o.boss})
	}
	o.view.Set(CategoryPlayerBullet, o.playerBullets.ActiveSnapshot())
	o.view.Set(CategoryEnemyBullet, o.enemyBullets.ActiveSnapshot())
	o.view.Set(CategoryEnemy, o.enemies.ActiveSnapshot())
	o.view.Set(CategoryItem, o.items.ActiveSnapshot())
}

// produceSnapshot publishes an immutable snapshot of the field and counters
// for lock-free reads by presentation collaborators.
func (o *Orchestrator) produceSnapshot() {
	snap := o.snapshots.AcquireWrite()
	snap.TickNumber = o.tickCount
	snap.RNGSeed = o.rngSeed
	snap.State = o.machine.Current().String()
	snap.PreviousState = o.machine.Previous().String()

	sess := o.machine.Session()
	snap.Score = sess.Score
	snap.Coins = sess.Coins
	snap.Level = sess.Level
	snap.Wave = o.director.Wave()
	snap.PlayTime = sess.PlayTime

	if o.player.Active {
		appendEntity(snap, &o.player)
		snap.PlayerHealth = o.player.Health
	} else {
		snap.PlayerHealth = 0
	}
	if o.boss.Active {
		appendEntity(snap, &o.boss)
	}
	for _, e := range o.playerBullets.ActiveSnapshot() {
		appendEntity(snap, e)
	}
	for _, e := range o.enemyBullets.ActiveSnapshot() {
		appendEntity(snap, e)
	}
	for _, e := range o.enemies.ActiveSnapshot() {
		appendEntity(snap, e)
	}
	for _, e := range o.items.ActiveSnapshot() {
		appendEntity(snap, e)
	}
	snap.ActiveCount = len(snap.Entities)

	o.snapshots.PublishWrite()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
