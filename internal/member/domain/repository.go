package domain

import (
	"context"
	"time"

	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ProgressUpdate carries the point-earning fields written back after a
// check-in or mission completion.
type ProgressUpdate struct {
	Points                 int64
	CurrentStreak          int
	LastCheckinAt          *time.Time
	CompletedMissionsCount int
}

// HoldingStateUpdate carries the derived holding-eligibility fields.
type HoldingStateUpdate struct {
	IsEligible       bool
	HoldingStartedAt *time.Time
	LastBalanceCheck *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByWallet(ctx context.Context, db *gorm.DB, walletAddress string) (*Member, error)
	UpdateProgress(ctx context.Context, db *gorm.DB, id snowflake.ID, update ProgressUpdate) error
	UpdateHoldingState(ctx context.Context, db *gorm.DB, id snowflake.ID, update HoldingStateUpdate) error
	// UpdateRankGuarded advances the rank only when the stored rank still
	// matches from, reporting whether the row was written. A false result
	// means a concurrent evaluation won the race.
	UpdateRankGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to rankdomain.ArkRank) (bool, error)
	CountMembers(ctx context.Context, db *gorm.DB) (int64, error)
	CountMembersWithPointsGreaterThan(ctx context.Context, db *gorm.DB, points int64) (int64, error)
	// ListAfter pages through members by ascending ID for the balance poller.
	ListAfter(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]Member, error)
}
