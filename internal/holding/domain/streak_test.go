package domain

import (
	"testing"
	"time"

	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func snap(balance int64, checkedAt time.Time) snapshotdomain.BalanceSnapshot {
	return snapshotdomain.BalanceSnapshot{
		Balance:   decimal.NewFromInt(balance),
		CheckedAt: checkedAt,
	}
}

func TestReconstructStreakStart_ZeroBalance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := []snapshotdomain.BalanceSnapshot{
		snap(100, now.Add(-24*time.Hour)),
	}

	assert.Nil(t, ReconstructStreakStart(now, decimal.Zero, history))
	assert.Nil(t, ReconstructStreakStart(now, decimal.NewFromInt(-1), history))
}

func TestReconstructStreakStart_EmptyHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got := ReconstructStreakStart(now, decimal.NewFromInt(500), nil)
	assert.NotNil(t, got)
	assert.Equal(t, now, *got)
}

func TestReconstructStreakStart_GapInMiddle(t *testing.T) {
	// Newest first: held for 3 days, sold 4 days ago, held before that.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := []snapshotdomain.BalanceSnapshot{
		snap(800, now.Add(-1*24*time.Hour)),
		snap(750, now.Add(-2*24*time.Hour)),
		snap(700, now.Add(-3*24*time.Hour)),
		snap(0, now.Add(-4*24*time.Hour)),
		snap(900, now.Add(-5*24*time.Hour)),
	}

	got := ReconstructStreakStart(now, decimal.NewFromInt(800), history)
	assert.NotNil(t, got)
	assert.Equal(t, now.Add(-3*24*time.Hour), *got)
}

func TestReconstructStreakStart_GapIsNewest(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := []snapshotdomain.BalanceSnapshot{
		snap(0, now.Add(-6*time.Hour)),
		snap(400, now.Add(-30*time.Hour)),
	}

	got := ReconstructStreakStart(now, decimal.NewFromInt(400), history)
	assert.NotNil(t, got)
	assert.Equal(t, now, *got)
}

func TestReconstructStreakStart_NoGap(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	oldest := now.Add(-40 * 24 * time.Hour)
	history := []snapshotdomain.BalanceSnapshot{
		snap(500, now.Add(-1*24*time.Hour)),
		snap(500, now.Add(-20*24*time.Hour)),
		snap(500, oldest),
	}

	got := ReconstructStreakStart(now, decimal.NewFromInt(500), history)
	assert.NotNil(t, got)
	assert.Equal(t, oldest, *got)
}

func TestDaysHeld(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysHeld(now, nil))

	sameInstant := now
	assert.Equal(t, 0, DaysHeld(now, &sameInstant))

	partial := now.Add(-6 * time.Hour)
	assert.Equal(t, 1, DaysHeld(now, &partial))

	exact := now.Add(-25 * 24 * time.Hour)
	assert.Equal(t, 25, DaysHeld(now, &exact))

	overshoot := now.Add(-25*24*time.Hour - time.Minute)
	assert.Equal(t, 26, DaysHeld(now, &overshoot))
}
