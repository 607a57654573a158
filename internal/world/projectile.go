package world

// ProjectileKind distinguishes visual/behavioral projectile archetypes;
// the combat system treats all kinds identically except for the profile
// values carried on each instance.
type ProjectileKind string

// Projectile is a transient, authoritative combat entity.
type Projectile struct {
	EID   uint32 // process-local entity id, for replication
	Owner NID
	Kind  ProjectileKind

	Position Vec3
	Velocity Vec3
	Radius   float64
	Damage   int

	TTLSeconds     float64
	RemainingRange float64

	Gravity  float64
	Drag     float64
	MaxSpeed float64
	MinSpeed float64

	RemainingPierces      int
	DespawnOnDamageableHit bool
	DespawnOnWorldHit      bool

	// Depleted is set once this projectile has exhausted its pierces
	// against a despawn_on_damageable_hit=false ability: it keeps flying
	// (ttl/range/world collision still apply) but can no longer damage
	// anything, so it doesn't re-trigger every tick it overlaps the same
	// target.
	Depleted bool

	Removed bool
}

// Alive reports whether the projectile should keep being integrated.
func (p *Projectile) Alive() bool {
	return !p.Removed && p.TTLSeconds > 0 && p.RemainingRange > 0
}
