package world

// AbilityCategory is the ability's delivery mechanism.
type AbilityCategory string

const (
	CategoryProjectile AbilityCategory = "projectile"
	CategoryMelee      AbilityCategory = "melee"
	CategoryBeam       AbilityCategory = "beam"
	CategoryAOE        AbilityCategory = "aoe"
	CategoryBuff       AbilityCategory = "buff"
	CategoryMovement   AbilityCategory = "movement"
)

// StatPoints are the four 0..255 stat dials a creator draft allocates.
type StatPoints struct {
	Power      uint8
	Velocity   uint8
	Efficiency uint8
	Control    uint8
}

// ProjectileProfile configures a projectile-category ability.
type ProjectileProfile struct {
	Kind        ProjectileKind
	Speed       float64
	Damage      int
	Radius      float64
	CooldownSec float64
	LifetimeSec float64
	SpawnOffset Vec3
}

// MeleeProfile configures a melee-category ability.
type MeleeProfile struct {
	Damage      int
	Radius      float64
	CooldownSec float64
	Range       float64
	ArcDegrees  float64
}

// Ability is a full ability definition.
type Ability struct {
	ID   uint16
	Name string

	Category      AbilityCategory
	Stats         StatPoints
	AttributeMask uint32

	Projectile *ProjectileProfile
	Melee      *MeleeProfile
}
