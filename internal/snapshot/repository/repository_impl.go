package repository

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snapshot *domain.BalanceSnapshot) error {
	return db.WithContext(ctx).Create(snapshot).Error
}

func (r *repo) ListRecent(ctx context.Context, db *gorm.DB, memberID snowflake.ID, limit int) ([]domain.BalanceSnapshot, error) {
	var snapshots []domain.BalanceSnapshot
	err := db.WithContext(ctx).
		Model(&domain.BalanceSnapshot{}).
		Where("member_id = ?", memberID).
		Order("checked_at desc, id desc").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, memberID snowflake.ID, page pagination.Pagination) ([]*domain.BalanceSnapshot, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.BalanceSnapshot{}).
		Where("member_id = ?", memberID)

	if token := page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		stmt = stmt.Where("checked_at < ?", createdAt)
	}

	pageSize := page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var snapshots []*domain.BalanceSnapshot
	err := stmt.
		Order("checked_at desc, id desc").
		Limit(pageSize + 1).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) DeleteBefore(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("checked_at < ?", before).
		Delete(&domain.BalanceSnapshot{})
	return result.RowsAffected, result.Error
}
