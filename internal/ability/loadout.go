package ability

import (
	"fmt"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/world"
)

// Unlock records a newly created ability as owned by p.
func Unlock(p *world.Player, a *world.Ability) {
	p.UnlockedAbilityIDs[a.ID] = struct{}{}
}

// DefinitionMessage renders a full ability definition for the wire,
// sent owner-only on unlock.
func DefinitionMessage(a *world.Ability) netcode.AbilityDefinitionMessage {
	return netcode.AbilityDefinitionMessage{
		ID:            a.ID,
		Name:          a.Name,
		Category:      string(a.Category),
		Power:         int(a.Stats.Power),
		Velocity:      int(a.Stats.Velocity),
		Efficiency:    int(a.Stats.Efficiency),
		Control:       int(a.Stats.Control),
		AttributeMask: a.AttributeMask,
	}
}

// OwnershipMessage renders p's unlocked ability ids as the CSV wire
// payload the client expects.
func OwnershipMessage(p *world.Player) netcode.AbilityOwnershipMessage {
	csv := ""
	for id := range p.UnlockedAbilityIDs {
		if csv != "" {
			csv += ","
		}
		csv += fmt.Sprintf("%d", id)
	}
	return netcode.AbilityOwnershipMessage{UnlockedAbilityIDsCSV: csv}
}

// ApplyLoadoutCommand mutates p's hotbar/mouse-slot bindings from a
// client LoadoutCommand, validating every index and
// ability ownership so a malformed or hostile command can never corrupt
// the player record. Returns the player's full loadout
// snapshot, re-sent whenever any bound field changes.
func ApplyLoadoutCommand(p *world.Player, cmd netcode.LoadoutCommand) netcode.AbilityStateMessage {
	if cmd.HotbarSlot != nil {
		slot := *cmd.HotbarSlot
		if slot >= 0 && slot < world.HotbarSize && ownsOrUnbound(p, cmd.AbilityID) {
			p.HotbarAbilityIDs[slot] = cmd.AbilityID
		}
	}
	if cmd.PrimaryMouseSlot != nil {
		if slot := *cmd.PrimaryMouseSlot; slot >= 0 && slot < world.HotbarSize {
			p.PrimaryMouseSlot = slot
		}
	}
	if cmd.SecondaryMouseSlot != nil {
		if slot := *cmd.SecondaryMouseSlot; slot >= 0 && slot < world.HotbarSize {
			p.SecondaryMouseSlot = slot
		}
	}

	return netcode.AbilityStateMessage{
		PrimaryMouseSlot:   p.PrimaryMouseSlot,
		SecondaryMouseSlot: p.SecondaryMouseSlot,
		HotbarAbilityIDs:   p.HotbarAbilityIDs,
	}
}

// ownsOrUnbound allows binding an unlocked ability, or clearing a slot
// with id 0 (the "no ability bound" sentinel).
func ownsOrUnbound(p *world.Player, id uint16) bool {
	if id == 0 {
		return true
	}
	_, ok := p.UnlockedAbilityIDs[id]
	return ok
}
