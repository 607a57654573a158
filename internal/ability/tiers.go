// Package ability implements the server-authoritative ability creator
// draft session and loadout/hotbar state. Stat-budget and
// attribute-slot limits are validated against data-driven tier tables
// (internal/config.AbilityTierTuning), matching map_loader.go's
// pattern of typed templates validated on load rather than hand-written
// per-case checks.
package ability

import (
	"fmt"

	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/world"
)

// DefaultTierName is the tier a new draft opens on when the caller
// doesn't pick one explicitly; the tuning file is expected to define it.
const DefaultTierName = "starter"

// baselineStat is the stat value a fresh draft starts every dial at;
// a tier's TotalPoints budgets how far the four dials may move away
// from this baseline in aggregate.
const baselineStat = 32

// maxStat is the ceiling each individual stat dial may reach.
const maxStat = 255

// Tiers is a lookup table of creator tiers by name, built once from the
// loaded tuning data.
type Tiers struct {
	byName map[string]config.AbilityTierTuning
}

// NewTiers indexes the tuning data's ability tiers by name.
func NewTiers(data config.TuningData) *Tiers {
	t := &Tiers{byName: make(map[string]config.AbilityTierTuning, len(data.AbilityTiers))}
	for _, tier := range data.AbilityTiers {
		t.byName[tier.Name] = tier
	}
	return t
}

// Get returns the named tier and whether it exists.
func (t *Tiers) Get(name string) (config.AbilityTierTuning, bool) {
	tier, ok := t.byName[name]
	return tier, ok
}

// validateStats checks a draft's four stat dials against a tier's budget:
// the sum of (stat - baseline) across all four dials must not exceed
// TotalPoints, no single dial may be pushed up more than UpsideSlots
// times the baseline step, and no single dial may be pushed down more
// than DownsideMax below baseline.
func validateStats(tier config.AbilityTierTuning, stats world.StatPoints) []string {
	var errs []string

	dials := [4]struct {
		name string
		val  uint8
	}{
		{"power", stats.Power},
		{"velocity", stats.Velocity},
		{"efficiency", stats.Efficiency},
		{"control", stats.Control},
	}

	spent := 0
	for _, d := range dials {
		delta := int(d.val) - baselineStat
		if delta > 0 {
			spent += delta
			upsideCap := tier.UpsideSlots * baselineStat
			if upsideCap > 0 && delta > upsideCap {
				errs = append(errs, fmt.Sprintf("%s exceeds tier upside limit", d.name))
			}
		} else if delta < 0 {
			if -delta > tier.DownsideMax {
				errs = append(errs, fmt.Sprintf("%s exceeds tier downside limit", d.name))
			}
			// A downside frees budget rather than spending it.
			spent += delta
		}
	}

	if spent > tier.TotalPoints {
		errs = append(errs, fmt.Sprintf("spent %d points, tier budget is %d", spent, tier.TotalPoints))
	}

	return errs
}

// pointsRemaining reports the unspent portion of a tier's budget for the
// AbilityCreatorStateMessage snapshot; never negative (an over-budget
// draft reports 0 and surfaces its violation through Errors instead).
func pointsRemaining(tier config.AbilityTierTuning, stats world.StatPoints) int {
	spent := 0
	for _, v := range [4]uint8{stats.Power, stats.Velocity, stats.Efficiency, stats.Control} {
		spent += int(v) - baselineStat
	}
	remaining := tier.TotalPoints - spent
	if remaining < 0 {
		return 0
	}
	return remaining
}

func validateAttributeMask(tier config.AbilityTierTuning, mask uint32) []string {
	popcount := 0
	for m := mask; m != 0; m &= m - 1 {
		popcount++
	}
	if popcount > tier.AttributeSlots {
		return []string{fmt.Sprintf("attribute mask uses %d slots, tier allows %d", popcount, tier.AttributeSlots)}
	}
	return nil
}
