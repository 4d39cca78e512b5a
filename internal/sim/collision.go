package sim

// PairRule enables collision testing between two categories and defines the
// resolution policy for the pair. Only pairs present in the rule table are
// ever tested; no category self-collides unless a rule explicitly says so
// (none do by default).
type PairRule struct {
	A, B       Category
	DamageToA  bool // B's damage is applied to A's side
	DamageToB  bool // A's damage is applied to B's side
	Collection bool // Pickup event: no damage fields apply
}

// RuleTable is the static, registration-ordered set of enabled category
// pairs. Registration order is load-bearing: the collision engine iterates
// rules in this exact order so identical snapshots produce identical results.
type RuleTable struct {
	rules []PairRule
}

// NewRuleTable returns an empty rule table.
func NewRuleTable() *RuleTable {
	return &RuleTable{}
}

// Register appends a pair rule. Call order defines test order for all ticks.
func (t *RuleTable) Register(rule PairRule) {
	t.rules = append(t.rules, rule)
}

// Rules returns the registered rules in registration order.
func (t *RuleTable) Rules() []PairRule {
	return t.rules
}

// Enabled reports whether the unordered category pair has a registered rule.
func (t *RuleTable) Enabled(a, b Category) bool {
	for _, r := range t.rules {
		if (r.A == a && r.B == b) || (r.A == b && r.B == a) {
			return true
		}
	}
	return false
}

// DefaultRuleTable returns the arcade rule set in its canonical registration
// order: player bullets against enemies and the boss, enemy fire and contact
// against the player, then item collection.
func DefaultRuleTable() *RuleTable {
	t := NewRuleTable()
	t.Register(PairRule{A: CategoryPlayerBullet, B: CategoryEnemy, DamageToB: true})
	t.Register(PairRule{A: CategoryPlayerBullet, B: CategoryBoss, DamageToB: true})
	t.Register(PairRule{A: CategoryEnemyBullet, B: CategoryPlayer, DamageToB: true})
	t.Register(PairRule{A: CategoryEnemy, B: CategoryPlayer, DamageToB: true})
	t.Register(PairRule{A: CategoryBoss, B: CategoryPlayer, DamageToB: true})
	t.Register(PairRule{A: CategoryPlayer, B: CategoryItem, Collection: true})
	return t
}

// CollisionResult is one detected overlap with its resolution policy applied.
// Results are transient: produced fresh each tick, consumed in order by the
// orchestrator, never persisted.
type CollisionResult struct {
	A, B       *Entity
	DamageToA  int
	DamageToB  int
	Collection bool
}

// TickView groups the per-tick active snapshots by category for the collision
// engine. It is rebuilt every tick from pool snapshots.
type TickView struct {
	entities [numCategories][]*Entity
}

// Set stores the active snapshot for a category.
func (v *TickView) Set(c Category, entities []*Entity) {
	v.entities[c] = entities
}

// Active returns the snapshot for a category (may be empty).
func (v *TickView) Active(c Category) []*Entity {
	return v.entities[c]
}

// Clear drops all snapshot references so they are not retained past the tick.
func (v *TickView) Clear() {
	for i := range v.entities {
		v.entities[i] = nil
	}
}

// CollisionEngine computes overlapping pairs restricted to the rule table.
// It holds no mutable state between ticks beyond the reused result slice and
// the per-tick check counter, which resets at the start of every Detect call:
// identical snapshots always yield identical result lists.
type CollisionEngine struct {
	table    *RuleTable
	defaults [numCategories]int // Per-category default damage
	budget   int                // Max overlap tests per tick; 0 = unlimited

	results []CollisionResult // Reused across ticks

	// Per-tick stats, overwritten by each Detect call.
	checksLastTick  int
	budgetExhausted bool
}

// NewCollisionEngine creates an engine over the given rule table.
// defaults maps categories to the damage used when an entity's own Damage
// field is zero. budget caps overlap tests per tick (degraded, not erroneous).
func NewCollisionEngine(table *RuleTable, defaults map[Category]int, budget int) *CollisionEngine {
	ce := &CollisionEngine{
		table:  table,
		budget: budget,
	}
	for c, d := range defaults {
		ce.defaults[c] = d
	}
	return ce
}

// damageFrom returns the damage the source entity deals: its own damage field
// if set, otherwise the per-category default.
func (ce *CollisionEngine) damageFrom(src *Entity) int {
	if src.Damage != 0 {
		return src.Damage
	}
	return ce.defaults[src.Category]
}

// Detect iterates the rule table in registration order and, for each enabled
// pair (A,B), tests A's entities outer and B's entities inner in snapshot
// order. Every overlap emits a result; the engine never deduplicates or
// short-circuits, so an entity overlapping several counterparts produces one
// result per counterpart. Once the per-tick check ceiling is reached the
// remaining untested pairs are skipped and resume fresh next tick.
//
// The returned slice is reused by the next Detect call; callers must consume
// it before ticking again.
func (ce *CollisionEngine) Detect(view *TickView) []CollisionResult {
	ce.results = ce.results[:0]
	ce.checksLastTick = 0
	ce.budgetExhausted = false

	for _, rule := range ce.table.Rules() {
		if ce.budgetExhausted {
			break
		}

		as := view.Active(rule.A)
		bs := view.Active(rule.B)

		for _, a := range as {
			if ce.budgetExhausted {
				break
			}
			for _, b := range bs {
				if ce.budget > 0 && ce.checksLastTick >= ce.budget {
					ce.budgetExhausted = true
					break
				}
				ce.checksLastTick++

				if !overlaps(a, b) {
					continue
				}

				res := CollisionResult{A: a, B: b, Collection: rule.Collection}
				if rule.DamageToA {
					res.DamageToA = ce.damageFrom(b)
				}
				if rule.DamageToB {
					res.DamageToB = ce.damageFrom(a)
				}
				ce.results = append(ce.results, res)
			}
		}
	}

	return ce.results
}

// ChecksLastTick returns how many overlap tests the last Detect performed.
func (ce *CollisionEngine) ChecksLastTick() int { return ce.checksLastTick }

// BudgetExhausted reports whether the last Detect hit the check ceiling and
// skipped remaining pairs.
func (ce *CollisionEngine) BudgetExhausted() bool { return ce.budgetExhausted }
