package domain

import (
	"context"
	"errors"

	"github.com/arklabs/arkloyalty/pkg/db/pagination"
)

type EvaluateRequest struct {
	MemberID string
}

type EvaluateResponse struct {
	Promoted   bool    `json:"promoted"`
	From       ArkRank `json:"from,omitempty"`
	To         ArkRank `json:"to,omitempty"`
	Message    string  `json:"message,omitempty"`
	Percentile float64 `json:"percentile"`
}

type ListRankHistoryRequest struct {
	pagination.Pagination
	MemberID string
}

type ListRankHistoryResponse struct {
	pagination.PageInfo
	Entries []RankHistory `json:"entries"`
}

type Service interface {
	// Evaluate runs one promotion pass for the member: every tier above the
	// current rank is checked and at most one promotion, to the highest
	// satisfied tier, is committed. Repeating the call with unchanged state
	// is a no-op.
	Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResponse, error)
	ListHistory(ctx context.Context, req ListRankHistoryRequest) (ListRankHistoryResponse, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrMemberNotFound     = errors.New("member_not_found")
	ErrConcurrentUpdate   = errors.New("concurrent_rank_update")
	ErrInvariantViolation = errors.New("invariant_violation")
)
