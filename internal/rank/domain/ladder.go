package domain

import (
	"time"

	holdingdomain "github.com/arklabs/arkloyalty/internal/holding/domain"
)

// Evaluation is the full behavioral state a promotion pass judges a member
// against. Percentile is the member's standing by points, 0-100, lower is
// better; it must be recomputed fresh for each pass.
type Evaluation struct {
	Now               time.Time
	CurrentStreak     int
	CompletedMissions int
	Points            int64
	HoldingStartedAt  *time.Time
	IsEligible        bool
	Percentile        float64
}

// Criterion is one promotion rule in the ladder.
type Criterion struct {
	Rank      ArkRank
	Message   string
	Satisfied func(Evaluation) bool
}

// Criteria returns the promotion rules in ascending rank order. Each tier
// is judged independently; it is not gated on the lower tiers having been
// satisfied during the same pass.
func Criteria() []Criterion {
	return []Criterion{
		{
			Rank:    RankSoldier,
			Message: "Promoted to Soldier: 7-day streak achieved.",
			Satisfied: func(e Evaluation) bool {
				return e.CurrentStreak >= 7
			},
		},
		{
			Rank:    RankElite,
			Message: "Promoted to Elite: 5 missions completed.",
			Satisfied: func(e Evaluation) bool {
				return e.CompletedMissions >= 5
			},
		},
		{
			Rank:    RankVanguard,
			Message: "Promoted to Vanguard: 25 days of eligible holding.",
			Satisfied: func(e Evaluation) bool {
				return e.IsEligible &&
					e.HoldingStartedAt != nil &&
					holdingdomain.DaysHeld(e.Now, e.HoldingStartedAt) >= 25
			},
		},
		{
			Rank:    RankCaptain,
			Message: "Promoted to Captain: 10,000 points earned.",
			Satisfied: func(e Evaluation) bool {
				return e.Points >= 10000
			},
		},
		{
			Rank:    RankCommander,
			Message: "Promoted to Commander: 30-day streak and top 10% standing.",
			Satisfied: func(e Evaluation) bool {
				return e.CurrentStreak >= 30 && e.Percentile <= 10
			},
		},
		{
			Rank:    RankLegend,
			Message: "Promoted to Legend: 50-day streak or top 5% standing.",
			Satisfied: func(e Evaluation) bool {
				return e.CurrentStreak >= 50 || e.Percentile <= 5
			},
		},
		{
			Rank:    RankHighGuardian,
			Message: "Promoted to High Guardian: 100-day streak and top 1% standing.",
			Satisfied: func(e Evaluation) bool {
				return e.CurrentStreak >= 100 && e.Percentile <= 1
			},
		},
	}
}

// NextPromotion walks every tier above current in ascending order and
// returns the last one whose criterion is satisfied, so a member who
// qualifies for several tiers at once jumps straight to the highest.
// Returns false when no tier above the current rank is satisfied.
func NextPromotion(current ArkRank, eval Evaluation) (ArkRank, string, bool) {
	currentValue := current.Value()

	var (
		target  ArkRank
		message string
		found   bool
	)
	for _, criterion := range Criteria() {
		if criterion.Rank.Value() <= currentValue {
			continue
		}
		if criterion.Satisfied(eval) {
			target = criterion.Rank
			message = criterion.Message
			found = true
		}
	}
	return target, message, found
}

// Percentile computes the share of the population with strictly more
// points, expressed 0-100. The member with the highest point total always
// lands on 0.
func Percentile(withMorePoints, total int64) float64 {
	if total <= 0 {
		return 100
	}
	return float64(withMorePoints) / float64(total) * 100
}
