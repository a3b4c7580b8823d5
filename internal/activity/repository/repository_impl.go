package repository

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ActivityLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID, filter domain.ListActivityFilter, page pagination.Pagination) ([]*domain.ActivityLog, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.ActivityLog{}).
		Where("member_id = ?", memberID)
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}

	if token := page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidMember
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidMember
		}
		stmt = stmt.Where("created_at < ?", createdAt)
	}

	pageSize := page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var entries []*domain.ActivityLog
	err := stmt.
		Order("created_at desc, id desc").
		Limit(pageSize + 1).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
