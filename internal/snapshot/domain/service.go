package domain

import (
	"context"
	"errors"
	"time"

	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AppendSnapshotRequest struct {
	MemberID   snowflake.ID
	Balance    decimal.Decimal
	BalanceUsd decimal.Decimal
	Source     SnapshotSource
	CheckedAt  time.Time
}

type ListSnapshotRequest struct {
	pagination.Pagination
	MemberID string
}

type ListSnapshotResponse struct {
	pagination.PageInfo
	Snapshots []BalanceSnapshot `json:"snapshots"`
}

type Service interface {
	// Append records one balance observation. Snapshots are never updated
	// or deleted individually; Prune enforces the retention window.
	Append(ctx context.Context, req AppendSnapshotRequest) (BalanceSnapshot, error)
	// History returns up to limit snapshots for a member, newest first.
	History(ctx context.Context, memberID snowflake.ID, limit int) ([]BalanceSnapshot, error)
	List(ctx context.Context, req ListSnapshotRequest) (ListSnapshotResponse, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

var (
	ErrInvalidMember  = errors.New("invalid_member")
	ErrInvalidBalance = errors.New("invalid_balance")
	ErrInvalidSource  = errors.New("invalid_source")
	ErrInvalidID      = errors.New("invalid_id")
)
