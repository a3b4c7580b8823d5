package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextPromotion_HighestSatisfiedWins(t *testing.T) {
	// Qualifies for Soldier, Elite, Captain and Legend in the same pass;
	// the pass jumps straight to Legend.
	eval := Evaluation{
		Now:               time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStreak:     12,
		CompletedMissions: 6,
		Points:            15000,
		Percentile:        4.2,
	}

	target, message, found := NextPromotion(RankRecruit, eval)
	assert.True(t, found)
	assert.Equal(t, RankLegend, target)
	assert.Equal(t, "Promoted to Legend: 50-day streak or top 5% standing.", message)
}

func TestNextPromotion_NoTierSatisfied(t *testing.T) {
	eval := Evaluation{
		Now:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStreak: 3,
		Points:        120,
		Percentile:    80,
	}

	_, _, found := NextPromotion(RankRecruit, eval)
	assert.False(t, found)
}

func TestNextPromotion_NeverAtOrBelowCurrent(t *testing.T) {
	// Satisfies Soldier and Elite but already holds Captain; nothing above
	// Captain is satisfied, so no promotion.
	eval := Evaluation{
		Now:               time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStreak:     10,
		CompletedMissions: 8,
		Points:            500,
		Percentile:        60,
	}

	_, _, found := NextPromotion(RankCaptain, eval)
	assert.False(t, found)
}

func TestNextPromotion_VanguardNeedsEligibleHolding(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	startedAt := now.Add(-26 * 24 * time.Hour)

	eval := Evaluation{
		Now:              now,
		HoldingStartedAt: &startedAt,
		IsEligible:       true,
		Percentile:       50,
	}
	target, _, found := NextPromotion(RankElite, eval)
	assert.True(t, found)
	assert.Equal(t, RankVanguard, target)

	eval.IsEligible = false
	_, _, found = NextPromotion(RankElite, eval)
	assert.False(t, found)

	eval.IsEligible = true
	eval.HoldingStartedAt = nil
	_, _, found = NextPromotion(RankElite, eval)
	assert.False(t, found)
}

func TestNextPromotion_CommanderRequiresBoth(t *testing.T) {
	eval := Evaluation{
		Now:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStreak: 35,
		Percentile:    15,
	}
	_, _, found := NextPromotion(RankVanguard, eval)
	assert.False(t, found)

	eval.Percentile = 10
	target, _, found := NextPromotion(RankVanguard, eval)
	assert.True(t, found)
	assert.Equal(t, RankCommander, target)
}

func TestNextPromotion_LegendEitherCondition(t *testing.T) {
	eval := Evaluation{
		Now:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStreak: 50,
		Percentile:    90,
	}
	target, _, found := NextPromotion(RankCommander, eval)
	assert.True(t, found)
	assert.Equal(t, RankLegend, target)

	eval.CurrentStreak = 0
	eval.Percentile = 5
	target, _, found = NextPromotion(RankCommander, eval)
	assert.True(t, found)
	assert.Equal(t, RankLegend, target)
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, float64(100), Percentile(0, 0))
	assert.Equal(t, float64(0), Percentile(0, 10))
	assert.Equal(t, float64(50), Percentile(5, 10))
	assert.InDelta(t, 0.99, Percentile(99, 10000), 0.0001)
}

func TestArkRank_Ordering(t *testing.T) {
	assert.True(t, RankSoldier.Above(RankRecruit))
	assert.True(t, RankHighGuardian.Above(RankLegend))
	assert.False(t, RankRecruit.Above(RankRecruit))
	assert.False(t, RankCaptain.Above(RankLegend))

	for _, rank := range Ladder {
		assert.True(t, rank.Valid(), string(rank))
	}

	parsed, err := ParseArkRank("VANGUARD")
	assert.NoError(t, err)
	assert.Equal(t, RankVanguard, parsed)

	_, err = ParseArkRank("WARLORD")
	assert.Error(t, err)
}
