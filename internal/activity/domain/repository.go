package domain

import (
	"context"

	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListActivityFilter struct {
	Kind string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ActivityLog) error
	ListByMember(ctx context.Context, db *gorm.DB, memberID snowflake.ID, filter ListActivityFilter, page pagination.Pagination) ([]*ActivityLog, error)
}
