package ability

import (
	"testing"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/world"
	"github.com/stretchr/testify/require"
)

func testPlayer() *world.Player {
	return world.NewPlayer("acct-1", world.NID(1), world.Vec3{}, 100)
}

func intPtr(n int) *int { return &n }

func TestApplyLoadoutCommandBindsUnlockedAbilityToHotbar(t *testing.T) {
	p := testPlayer()
	p.UnlockedAbilityIDs[300] = struct{}{}

	state := ApplyLoadoutCommand(p, netcode.LoadoutCommand{HotbarSlot: intPtr(2), AbilityID: 300})
	require.Equal(t, uint16(300), state.HotbarAbilityIDs[2])
	require.Equal(t, uint16(300), p.HotbarAbilityIDs[2])
}

func TestApplyLoadoutCommandRejectsUnownedAbility(t *testing.T) {
	p := testPlayer()
	ApplyLoadoutCommand(p, netcode.LoadoutCommand{HotbarSlot: intPtr(0), AbilityID: 999})
	require.Equal(t, uint16(0), p.HotbarAbilityIDs[0])
}

func TestApplyLoadoutCommandAllowsClearingSlotWithZero(t *testing.T) {
	p := testPlayer()
	p.HotbarAbilityIDs[0] = 42
	ApplyLoadoutCommand(p, netcode.LoadoutCommand{HotbarSlot: intPtr(0), AbilityID: 0})
	require.Equal(t, uint16(0), p.HotbarAbilityIDs[0])
}

func TestApplyLoadoutCommandRejectsOutOfRangeSlot(t *testing.T) {
	p := testPlayer()
	p.UnlockedAbilityIDs[300] = struct{}{}
	ApplyLoadoutCommand(p, netcode.LoadoutCommand{HotbarSlot: intPtr(world.HotbarSize), AbilityID: 300})
	for _, id := range p.HotbarAbilityIDs {
		require.Equal(t, uint16(0), id)
	}
}

func TestApplyLoadoutCommandSetsMouseSlots(t *testing.T) {
	p := testPlayer()
	state := ApplyLoadoutCommand(p, netcode.LoadoutCommand{PrimaryMouseSlot: intPtr(3), SecondaryMouseSlot: intPtr(4)})
	require.Equal(t, 3, state.PrimaryMouseSlot)
	require.Equal(t, 4, state.SecondaryMouseSlot)
}

func TestUnlockAddsToUnlockedSet(t *testing.T) {
	p := testPlayer()
	a := &world.Ability{ID: 500, Name: "Test"}
	Unlock(p, a)
	_, ok := p.UnlockedAbilityIDs[500]
	require.True(t, ok)
}

func TestOwnershipMessageCSVContainsUnlockedID(t *testing.T) {
	p := testPlayer()
	p.UnlockedAbilityIDs[7] = struct{}{}
	msg := OwnershipMessage(p)
	require.Contains(t, msg.UnlockedAbilityIDsCSV, "7")
}

func TestDefinitionMessageCopiesAbilityFields(t *testing.T) {
	a := &world.Ability{
		ID: 400, Name: "Spark", Category: world.CategoryMelee,
		Stats: world.StatPoints{Power: 10, Velocity: 20, Efficiency: 30, Control: 40},
		AttributeMask: 0b101,
	}
	msg := DefinitionMessage(a)
	require.Equal(t, uint16(400), msg.ID)
	require.Equal(t, "melee", msg.Category)
	require.Equal(t, 10, msg.Power)
	require.Equal(t, uint32(0b101), msg.AttributeMask)
}
