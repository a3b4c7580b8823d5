package domain

import (
	"time"

	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/bwmarrin/snowflake"
)

// Member is the persisted loyalty progress record. The holding fields
// (IsEligible, HoldingStartedAt, LastBalanceCheck) are derived state owned
// by the eligibility engine: they are recomputed from the snapshot ledger
// on every verification, never incremented in place. HoldingStartedAt is
// non-nil only while IsEligible is true.
type Member struct {
	ID                     snowflake.ID       `gorm:"primaryKey" json:"id"`
	WalletAddress          string             `gorm:"uniqueIndex;not null" json:"wallet_address"`
	DisplayName            string             `json:"display_name,omitempty"`
	Points                 int64              `gorm:"not null;default:0" json:"points"`
	CurrentStreak          int                `gorm:"not null;default:0" json:"current_streak"`
	LastCheckinAt          *time.Time         `json:"last_checkin_at,omitempty"`
	CompletedMissionsCount int                `gorm:"not null;default:0" json:"completed_missions_count"`
	ArkRank                rankdomain.ArkRank `gorm:"not null;default:RECRUIT" json:"ark_rank"`
	IsEligible             bool               `gorm:"not null;default:false" json:"is_eligible"`
	HoldingStartedAt       *time.Time         `json:"holding_started_at,omitempty"`
	LastBalanceCheck       *time.Time         `json:"last_balance_check,omitempty"`
	CreatedAt              time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}
