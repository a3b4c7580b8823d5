package repository

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.RankHistory) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID, page pagination.Pagination) ([]*domain.RankHistory, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.RankHistory{}).
		Where("member_id = ?", memberID)

	if token := page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		promotedAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		stmt = stmt.Where("promoted_at < ?", promotedAt)
	}

	pageSize := page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var entries []*domain.RankHistory
	err := stmt.
		Order("promoted_at desc, id desc").
		Limit(pageSize + 1).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
