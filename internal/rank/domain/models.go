package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RankHistory is the append-only audit trail of promotions, one row per
// promotion including manual admin assignments. Rows are never updated or
// deleted.
type RankHistory struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	MemberID   snowflake.ID `gorm:"not null;index:idx_rank_history_member_promoted,priority:1" json:"member_id"`
	Rank       ArkRank      `gorm:"not null" json:"rank"`
	PromotedAt time.Time    `gorm:"not null;index:idx_rank_history_member_promoted,priority:2,sort:desc" json:"promoted_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RankHistory) TableName() string {
	return "rank_history"
}
