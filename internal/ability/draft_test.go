package ability

import (
	"testing"

	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/stretchr/testify/require"
)

func testTiers() *Tiers {
	return NewTiers(config.TuningData{
		AbilityTiers: []config.AbilityTierTuning{
			{Name: DefaultTierName, TotalPoints: 40, UpsideSlots: 2, DownsideMax: 20, AttributeSlots: 2},
		},
	})
}

func TestNewDraftRejectsUnknownTier(t *testing.T) {
	_, err := NewDraft("nonexistent", testTiers())
	require.Error(t, err)
}

func TestDraftStartsAtBaselineAndInvalidUntilNamed(t *testing.T) {
	d, err := NewDraft(DefaultTierName, testTiers())
	require.NoError(t, err)

	state := d.State()
	require.Equal(t, baselineStat, uint8(state.Power))
	require.False(t, state.Valid) // no name set yet
}

func TestApplySettingNameAndStatsWithinBudgetBecomesValid(t *testing.T) {
	d, _ := NewDraft(DefaultTierName, testTiers())
	d.Apply(netcode.AbilityCreatorCommand{Field: "name", Value: "Frostbolt"})
	d.Apply(netcode.AbilityCreatorCommand{Field: "category", Value: "projectile"})
	state := d.Apply(netcode.AbilityCreatorCommand{Field: "power", Value: float64(baselineStat + 10)})

	require.True(t, state.Valid)
	require.Empty(t, state.Errors)
	require.Equal(t, baselineStat+10, uint8(state.Power))
}

func TestApplyOverBudgetStatIsInvalid(t *testing.T) {
	d, _ := NewDraft(DefaultTierName, testTiers())
	d.Apply(netcode.AbilityCreatorCommand{Field: "name", Value: "Overload"})
	state := d.Apply(netcode.AbilityCreatorCommand{Field: "power", Value: float64(maxStat)})

	require.False(t, state.Valid)
	require.NotEmpty(t, state.Errors)
}

func TestClampStatClampsOutOfRangeValues(t *testing.T) {
	d, _ := NewDraft(DefaultTierName, testTiers())
	d.Apply(netcode.AbilityCreatorCommand{Field: "power", Value: float64(-10)})
	require.Equal(t, uint8(0), d.stats.Power)

	d.Apply(netcode.AbilityCreatorCommand{Field: "power", Value: float64(9000)})
	require.Equal(t, uint8(maxStat), d.stats.Power)
}

func TestSubmitFailsWhenDraftInvalid(t *testing.T) {
	d, _ := NewDraft(DefaultTierName, testTiers())
	reg := NewRegistry()
	_, err := d.Submit(reg)
	require.Error(t, err)
}

func TestSubmitSucceedsAndAllocatesAboveBuiltinRange(t *testing.T) {
	d, _ := NewDraft(DefaultTierName, testTiers())
	d.Apply(netcode.AbilityCreatorCommand{Field: "name", Value: "Frostbolt"})
	d.Apply(netcode.AbilityCreatorCommand{Field: "category", Value: "projectile"})

	reg := NewRegistry()
	a, err := d.Submit(reg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, a.ID, uint16(builtinAbilityCount))
	require.Equal(t, "Frostbolt", a.Name)
}

func TestSubmitAllocatesDistinctIDsAcrossDrafts(t *testing.T) {
	reg := NewRegistry()
	tiers := testTiers()

	d1, _ := NewDraft(DefaultTierName, tiers)
	d1.Apply(netcode.AbilityCreatorCommand{Field: "name", Value: "A"})
	a1, err := d1.Submit(reg)
	require.NoError(t, err)

	d2, _ := NewDraft(DefaultTierName, tiers)
	d2.Apply(netcode.AbilityCreatorCommand{Field: "name", Value: "B"})
	a2, err := d2.Submit(reg)
	require.NoError(t, err)

	require.NotEqual(t, a1.ID, a2.ID)
}
