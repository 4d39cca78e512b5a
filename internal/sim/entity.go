package sim

// Category is the closed tag distinguishing entity kinds for collision and
// damage rules. It is a fixed enum: categories are never added at runtime.
type Category uint8

const (
	CategoryPlayer Category = iota
	CategoryPlayerBullet
	CategoryEnemyBullet
	CategoryEnemy
	CategoryBoss
	CategoryItem

	numCategories
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryPlayerBullet:
		return "player_bullet"
	case CategoryEnemyBullet:
		return "enemy_bullet"
	case CategoryEnemy:
		return "enemy"
	case CategoryBoss:
		return "boss"
	case CategoryItem:
		return "item"
	default:
		return "unknown"
	}
}

// ItemKind identifies what an ITEM entity grants on collection.
type ItemKind uint8

const (
	ItemNone ItemKind = iota
	ItemCoin
	ItemBooster
)

// String returns a human-readable item kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemCoin:
		return "coin"
	case ItemBooster:
		return "booster"
	default:
		return "none"
	}
}

// EnemyArchetype selects an enemy's stats and movement pattern.
type EnemyArchetype uint8

const (
	EnemyGrunt EnemyArchetype = iota
	EnemyDarter
	EnemyTank
)

// String returns a human-readable archetype name.
func (a EnemyArchetype) String() string {
	switch a {
	case EnemyDarter:
		return "darter"
	case EnemyTank:
		return "tank"
	default:
		return "grunt"
	}
}

// Entity is one simulated object: character, projectile or item.
// Entities are owned exclusively by their Pool and are never allocated after
// pool construction; spawn is acquire+reinitialize, destroy is release.
type Entity struct {
	ID       uint32 // Stable slot index within the owning pool
	Category Category

	// Position is the AABB center; HalfW/HalfH are the half extents.
	X, Y         float64
	VX, VY       float64
	HalfW, HalfH float64

	Active bool

	// Characters carry health; projectiles and contact damage carry Damage.
	// Damage 0 means "use the per-category default".
	Health int
	Damage int

	// Category-specific payload. Only the fields valid for the entity's
	// category are meaningful; resolution dispatches on Category, never by
	// probing fields.
	Item       ItemKind
	Archetype  EnemyArchetype
	ScoreValue int

	// Motion state: Age accumulates seconds since spawn, Phase offsets the
	// procedural movement pattern, TTL is remaining lifetime for projectiles
	// (0 = no lifetime limit). Cooldown drives enemy fire cadence.
	Age      float64
	Phase    float64
	TTL      float64
	Cooldown float64
}

// reset clears a slot back to a blank spawn state, preserving identity.
func (e *Entity) reset() {
	id, cat := e.ID, e.Category
	*e = Entity{ID: id, Category: cat}
}

// overlaps reports axis-aligned bounding box overlap between two entities.
// Boxes are centered on position and sized from the entity half extents.
func overlaps(a, b *Entity) bool {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx < a.HalfW+b.HalfW && dy < a.HalfH+b.HalfH
}
