package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SnapshotSource records which process observed a balance.
type SnapshotSource string

const (
	SourceManual   SnapshotSource = "MANUAL"
	SourceCron     SnapshotSource = "CRON"
	SourceBackfill SnapshotSource = "BACKFILL"
)

// BalanceSnapshot is one immutable balance+price observation for a member.
// Snapshots are append-only; the streak reconstruction walks them newest
// first looking for zero-balance gaps.
type BalanceSnapshot struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	MemberID   snowflake.ID    `gorm:"not null;index:idx_balance_snapshots_member_checked,priority:1" json:"member_id"`
	Balance    decimal.Decimal `gorm:"type:numeric(36,18);not null" json:"balance"`
	BalanceUsd decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"balance_usd"`
	Source     SnapshotSource  `gorm:"not null" json:"source"`
	CheckedAt  time.Time       `gorm:"not null;index:idx_balance_snapshots_member_checked,priority:2,sort:desc" json:"checked_at"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BalanceSnapshot) TableName() string {
	return "balance_snapshots"
}
