package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kinds of activity entries the engines emit.
const (
	KindCheckin            = "checkin"
	KindMissionCompleted   = "mission.completed"
	KindEligibilityChecked = "eligibility.checked"
	KindRankPromoted       = "rank.promoted"
)

// ActivityLog is an append-only feed of member-visible events. It doubles
// as the delivery channel for promotion celebrations; how entries surface
// to the member is not this core's concern.
type ActivityLog struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	MemberID  snowflake.ID      `gorm:"not null;index:idx_activity_logs_member_created,priority:1" json:"member_id"`
	Kind      string            `gorm:"not null" json:"kind"`
	Message   string            `gorm:"not null" json:"message"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_activity_logs_member_created,priority:2,sort:desc" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
