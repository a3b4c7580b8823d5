package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type VerifyEligibilityRequest struct {
	MemberID string
}

// Evaluation is the outcome of one eligibility verification.
type Evaluation struct {
	IsEligible       bool            `json:"is_eligible"`
	HoldingStartedAt *time.Time      `json:"holding_started_at,omitempty"`
	DaysHeld         int             `json:"days_held"`
	Balance          decimal.Decimal `json:"balance"`
	PriceUsd         decimal.Decimal `json:"price_usd"`
	BalanceUsd       decimal.Decimal `json:"balance_usd"`
	MinHoldingUsd    decimal.Decimal `json:"min_holding_usd"`
	CheckedAt        time.Time       `json:"checked_at"`
}

type Service interface {
	// VerifyEligibility recomputes the member's holding eligibility and
	// streak start from the snapshot ledger plus a fresh balance and price,
	// records the observation, and persists the derived state.
	VerifyEligibility(ctx context.Context, req VerifyEligibilityRequest) (Evaluation, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrMemberNotFound     = errors.New("member_not_found")
	ErrVerificationLocked = errors.New("verification_in_progress")
	ErrVerificationFailed = errors.New("verification_failed")
	ErrInvariantViolation = errors.New("invariant_violation")
)
