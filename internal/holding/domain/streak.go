package domain

import (
	"time"

	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/shopspring/decimal"
)

// ReconstructStreakStart derives the instant the member's current unbroken
// holding period began from the snapshot ledger, instead of trusting any
// stored start date. The history must be ordered newest first.
//
// Rules:
//   - zero current balance: no active streak, returns nil;
//   - empty history: the member just started holding, returns now;
//   - the first zero-balance snapshot found (scanning newest to oldest)
//     marks a gap: the streak began at the snapshot immediately newer than
//     it, or now when the zero snapshot is the newest entry;
//   - no zero-balance snapshot: the streak extends back at least to the
//     oldest retained snapshot.
//
// The result is a lower bound: history beyond the retention window is
// invisible, so very long streaks are under-estimated, never over-estimated.
func ReconstructStreakStart(now time.Time, currentBalance decimal.Decimal, history []snapshotdomain.BalanceSnapshot) *time.Time {
	if currentBalance.Sign() <= 0 {
		return nil
	}

	now = now.UTC()
	if len(history) == 0 {
		return &now
	}

	for i := range history {
		if history[i].Balance.Sign() != 0 {
			continue
		}
		if i == 0 {
			// The gap is the latest observation; the streak restarts now.
			return &now
		}
		startedAt := history[i-1].CheckedAt.UTC()
		return &startedAt
	}

	startedAt := history[len(history)-1].CheckedAt.UTC()
	return &startedAt
}

// DaysHeld reports how many days have elapsed since the holding streak
// began, rounded up so a partial day counts as a full one.
func DaysHeld(now time.Time, startedAt *time.Time) int {
	if startedAt == nil {
		return 0
	}
	elapsed := now.UTC().Sub(startedAt.UTC())
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	return days
}
