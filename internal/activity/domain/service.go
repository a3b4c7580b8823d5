package domain

import (
	"context"
	"errors"

	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type ListActivityRequest struct {
	pagination.Pagination
	MemberID string
	Kind     string
}

type ListActivityResponse struct {
	pagination.PageInfo
	Entries []ActivityLog `json:"entries"`
}

type Service interface {
	// Notify appends an activity entry for the member. Delivery beyond
	// the append is out of scope; callers treat failures as non-fatal
	// unless the entry is part of a transactional write.
	Notify(ctx context.Context, memberID snowflake.ID, kind, message string, metadata map[string]any) error
	List(ctx context.Context, req ListActivityRequest) (ListActivityResponse, error)
}

var (
	ErrInvalidMember  = errors.New("invalid_member")
	ErrInvalidKind    = errors.New("invalid_kind")
	ErrInvalidMessage = errors.New("invalid_message")
)
