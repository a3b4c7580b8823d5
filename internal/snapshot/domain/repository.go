package domain

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *BalanceSnapshot) error
	// ListRecent returns up to limit snapshots for the member ordered by
	// checked_at descending.
	ListRecent(ctx context.Context, db *gorm.DB, memberID snowflake.ID, limit int) ([]BalanceSnapshot, error)
	List(ctx context.Context, db *gorm.DB, memberID snowflake.ID, page pagination.Pagination) ([]*BalanceSnapshot, error)
	DeleteBefore(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
