package ability

import (
	"fmt"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/world"
)

// Draft is one account's in-progress ability creator session: a
// server-held mutable record that "apply" commands mutate one
// field at a time, validated against the account's current tier on every
// mutation.
type Draft struct {
	tierName string
	tiers    *Tiers

	name          string
	category      world.AbilityCategory
	stats         world.StatPoints
	attributeMask uint32
}

// NewDraft opens a fresh draft for tierName at the tier's baseline stats,
// looked up via tiers.
func NewDraft(tierName string, tiers *Tiers) (*Draft, error) {
	if _, ok := tiers.Get(tierName); !ok {
		return nil, fmt.Errorf("ability: unknown tier %q", tierName)
	}
	return &Draft{
		tierName: tierName,
		tiers:    tiers,
		category: world.CategoryProjectile,
		stats:    world.StatPoints{Power: baselineStat, Velocity: baselineStat, Efficiency: baselineStat, Control: baselineStat},
	}, nil
}

// Apply mutates one field of the draft from a client AbilityCreatorCommand
// and returns the canonical snapshot. Unknown field names and values of
// the wrong type are ignored (the field keeps its value), never a Go error
// — a single bad client message must never be fatal.
func (d *Draft) Apply(cmd netcode.AbilityCreatorCommand) netcode.AbilityCreatorStateMessage {
	switch cmd.Field {
	case "name":
		if s, ok := cmd.Value.(string); ok {
			d.name = s
		}
	case "category":
		if s, ok := cmd.Value.(string); ok {
			d.category = world.AbilityCategory(s)
		}
	case "power":
		d.stats.Power = clampStat(cmd.Value, d.stats.Power)
	case "velocity":
		d.stats.Velocity = clampStat(cmd.Value, d.stats.Velocity)
	case "efficiency":
		d.stats.Efficiency = clampStat(cmd.Value, d.stats.Efficiency)
	case "control":
		d.stats.Control = clampStat(cmd.Value, d.stats.Control)
	case "attributeMask":
		if n, ok := asFloat(cmd.Value); ok {
			d.attributeMask = uint32(n)
		}
	}
	return d.State()
}

// clampStat coerces an incoming JSON number to a valid 0..255 stat value,
// silently clamping rather than rejecting — stats have a hard
// 0..255 domain and malformed fields must degrade, not panic. A
// non-numeric value leaves the dial at current.
func clampStat(v any, current uint8) uint8 {
	n, ok := asFloat(v)
	if !ok {
		return current
	}
	if n < 0 {
		return 0
	}
	if n > maxStat {
		return maxStat
	}
	return uint8(n)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// State renders the draft's canonical snapshot, revalidating against its
// tier's budget every time.
func (d *Draft) State() netcode.AbilityCreatorStateMessage {
	tier, ok := d.tiers.Get(d.tierName)
	var errs []string
	if !ok {
		errs = append(errs, fmt.Sprintf("unknown tier %q", d.tierName))
	} else {
		errs = append(errs, validateStats(tier, d.stats)...)
		errs = append(errs, validateAttributeMask(tier, d.attributeMask)...)
	}

	remaining := 0
	if ok {
		remaining = pointsRemaining(tier, d.stats)
	}

	return netcode.AbilityCreatorStateMessage{
		Name:            d.name,
		Category:        string(d.category),
		Power:           int(d.stats.Power),
		Velocity:        int(d.stats.Velocity),
		Efficiency:      int(d.stats.Efficiency),
		Control:         int(d.stats.Control),
		AttributeMask:   d.attributeMask,
		PointsRemaining: remaining,
		Valid:           len(errs) == 0 && d.name != "",
		Errors:          errs,
	}
}

// Submit finalizes the draft into a world.Ability definition, assigning
// it an id from reg. It fails if the draft is not currently valid:
// submit is the terminal step of a validated session, never a bypass of
// the budget check. The caller is
// responsible for registering the result with the owning server.World
// and unlocking it for the submitting player (Unlock).
func (d *Draft) Submit(reg *Registry) (*world.Ability, error) {
	state := d.State()
	if !state.Valid {
		return nil, fmt.Errorf("ability: draft is not valid: %v", state.Errors)
	}

	return &world.Ability{
		ID:            reg.nextID(),
		Name:          d.name,
		Category:      d.category,
		Stats:         d.stats,
		AttributeMask: d.attributeMask,
	}, nil
}
