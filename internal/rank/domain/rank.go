package domain

import (
	"errors"
	"strings"
)

// ArkRank is one tier in the fixed 8-rank ladder. Ranks only ever advance
// through the promotion engine; manual admin assignment is treated as an
// authoritative override of position, not a violation.
type ArkRank string

const (
	RankRecruit      ArkRank = "RECRUIT"
	RankSoldier      ArkRank = "SOLDIER"
	RankElite        ArkRank = "ELITE"
	RankVanguard     ArkRank = "VANGUARD"
	RankCaptain      ArkRank = "CAPTAIN"
	RankCommander    ArkRank = "COMMANDER"
	RankLegend       ArkRank = "LEGEND"
	RankHighGuardian ArkRank = "HIGH_GUARDIAN"
)

// Ladder lists all ranks in ascending order.
var Ladder = []ArkRank{
	RankRecruit,
	RankSoldier,
	RankElite,
	RankVanguard,
	RankCaptain,
	RankCommander,
	RankLegend,
	RankHighGuardian,
}

var displayNames = map[ArkRank]string{
	RankRecruit:      "Recruit",
	RankSoldier:      "Soldier",
	RankElite:        "Elite",
	RankVanguard:     "Vanguard",
	RankCaptain:      "Captain",
	RankCommander:    "Commander",
	RankLegend:       "Legend",
	RankHighGuardian: "High Guardian",
}

// Value returns the rank's position in the ladder, or -1 for unknown ranks.
func (r ArkRank) Value() int {
	for i, rank := range Ladder {
		if rank == r {
			return i
		}
	}
	return -1
}

func (r ArkRank) Valid() bool {
	return r.Value() >= 0
}

// Above reports whether r is strictly higher in the ladder than other.
func (r ArkRank) Above(other ArkRank) bool {
	return r.Value() > other.Value()
}

func (r ArkRank) DisplayName() string {
	if name, ok := displayNames[r]; ok {
		return name
	}
	return string(r)
}

var ErrUnknownRank = errors.New("unknown_rank")

func ParseArkRank(value string) (ArkRank, error) {
	rank := ArkRank(strings.ToUpper(strings.TrimSpace(value)))
	if !rank.Valid() {
		return "", ErrUnknownRank
	}
	return rank, nil
}
