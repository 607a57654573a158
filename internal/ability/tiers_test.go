package ability

import (
	"testing"

	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/world"
	"github.com/stretchr/testify/require"
)

func starterTuning() config.TuningData {
	return config.TuningData{
		AbilityTiers: []config.AbilityTierTuning{
			{Name: "starter", TotalPoints: 40, UpsideSlots: 2, DownsideMax: 20, AttributeSlots: 2},
		},
	}
}

func TestNewTiersIndexesByName(t *testing.T) {
	tiers := NewTiers(starterTuning())
	tier, ok := tiers.Get("starter")
	require.True(t, ok)
	require.Equal(t, 40, tier.TotalPoints)

	_, ok = tiers.Get("missing")
	require.False(t, ok)
}

func TestValidateStatsWithinBudgetHasNoErrors(t *testing.T) {
	tier, _ := NewTiers(starterTuning()).Get("starter")
	stats := world.StatPoints{Power: baselineStat + 20, Velocity: baselineStat, Efficiency: baselineStat, Control: baselineStat}
	require.Empty(t, validateStats(tier, stats))
}

func TestValidateStatsOverBudgetReportsError(t *testing.T) {
	tier, _ := NewTiers(starterTuning()).Get("starter")
	stats := world.StatPoints{Power: maxStat, Velocity: maxStat, Efficiency: baselineStat, Control: baselineStat}
	require.NotEmpty(t, validateStats(tier, stats))
}

func TestValidateStatsExceedingDownsideMaxReportsError(t *testing.T) {
	tier, _ := NewTiers(starterTuning()).Get("starter")
	stats := world.StatPoints{Power: baselineStat, Velocity: baselineStat, Efficiency: 0, Control: baselineStat}
	errs := validateStats(tier, stats)
	require.NotEmpty(t, errs)
}

func TestValidateAttributeMaskOverSlotsReportsError(t *testing.T) {
	tier, _ := NewTiers(starterTuning()).Get("starter")
	// 3 bits set, tier only allows 2 slots.
	require.NotEmpty(t, validateAttributeMask(tier, 0b111))
	require.Empty(t, validateAttributeMask(tier, 0b11))
}

func TestPointsRemainingNeverNegative(t *testing.T) {
	tier, _ := NewTiers(starterTuning()).Get("starter")
	stats := world.StatPoints{Power: maxStat, Velocity: maxStat, Efficiency: maxStat, Control: maxStat}
	require.Equal(t, 0, pointsRemaining(tier, stats))
}
