package domain

import (
	"context"
	"errors"
)

type CreateMemberRequest struct {
	WalletAddress string
	DisplayName   string
}

type GetMemberRequest struct {
	ID string
}

type GetMemberByWalletRequest struct {
	WalletAddress string
}

type CheckInRequest struct {
	MemberID string
}

type CheckInResponse struct {
	Member         Member `json:"member"`
	PointsAwarded  int64  `json:"points_awarded"`
	StreakExtended bool   `json:"streak_extended"`
	AlreadyChecked bool   `json:"already_checked_in"`
}

type CompleteMissionRequest struct {
	MemberID  string
	MissionID string
	Points    int64
}

type StandingResponse struct {
	Points     int64   `json:"points"`
	TotalUsers int64   `json:"total_users"`
	Percentile float64 `json:"percentile"`
}

type Service interface {
	Create(ctx context.Context, req CreateMemberRequest) (Member, error)
	GetByID(ctx context.Context, req GetMemberRequest) (Member, error)
	GetByWallet(ctx context.Context, req GetMemberByWalletRequest) (Member, error)
	// CheckIn records at most one check-in per UTC day, extending or
	// resetting the consecutive-day streak and awarding the daily points.
	// A promotion pass runs afterwards; its failure does not fail the
	// check-in.
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)
	// CompleteMission records a mission completion with the points the
	// mission awards; mission definitions live outside this core.
	CompleteMission(ctx context.Context, req CompleteMissionRequest) (Member, error)
	Standing(ctx context.Context, req GetMemberRequest) (StandingResponse, error)
}

var (
	ErrInvalidWallet  = errors.New("invalid_wallet_address")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidMission = errors.New("invalid_mission")
	ErrInvalidPoints  = errors.New("invalid_points")
	ErrNotFound       = errors.New("not_found")
	ErrWalletExists   = errors.New("wallet_already_registered")
)
