package repository

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/internal/member/domain"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByWallet(ctx context.Context, db *gorm.DB, walletAddress string) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Limit(1).
		Find(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.ProgressUpdate) error {
	return db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"points":                   update.Points,
			"current_streak":           update.CurrentStreak,
			"last_checkin_at":          update.LastCheckinAt,
			"completed_missions_count": update.CompletedMissionsCount,
			"updated_at":               time.Now().UTC(),
		}).Error
}

func (r *repo) UpdateHoldingState(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.HoldingStateUpdate) error {
	return db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_eligible":        update.IsEligible,
			"holding_started_at": update.HoldingStartedAt,
			"last_balance_check": update.LastBalanceCheck,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *repo) UpdateRankGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to rankdomain.ArkRank) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ? AND ark_rank = ?", id, from).
		Updates(map[string]any{
			"ark_rank":   to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CountMembers(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Count(&count).Error
	return count, err
}

func (r *repo) CountMembersWithPointsGreaterThan(ctx context.Context, db *gorm.DB, points int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("points > ?", points).
		Count(&count).Error
	return count, err
}

func (r *repo) ListAfter(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]domain.Member, error) {
	var members []domain.Member
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
