package service

import (
	"context"
	"strings"

	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/internal/clock"
	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/arklabs/arkloyalty/internal/holding/domain"
	"github.com/arklabs/arkloyalty/internal/locking"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	obsmetrics "github.com/arklabs/arkloyalty/internal/observability/metrics"
	"github.com/arklabs/arkloyalty/internal/providers/balance"
	"github.com/arklabs/arkloyalty/internal/providers/price"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Config      config.Config
	MemberRepo  memberdomain.Repository
	SnapshotSvc snapshotdomain.Service
	BalanceProv balance.Provider
	PriceProv   price.Provider
	Locker      *locking.Locker    `optional:"true"`
	RankSvc     rankdomain.Service `optional:"true"`
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.LoyaltyConfig
	memberRepo  memberdomain.Repository
	snapshotSvc snapshotdomain.Service
	balanceProv balance.Provider
	priceProv   price.Provider
	locker      *locking.Locker
	rankSvc     rankdomain.Service
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("holding.service"),
		clock:       p.Clock,
		cfg:         p.Config.Loyalty,
		memberRepo:  p.MemberRepo,
		snapshotSvc: p.SnapshotSvc,
		balanceProv: p.BalanceProv,
		priceProv:   p.PriceProv,
		locker:      p.Locker,
		rankSvc:     p.RankSvc,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) VerifyEligibility(ctx context.Context, req domain.VerifyEligibilityRequest) (domain.Evaluation, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || id == 0 {
		return domain.Evaluation{}, domain.ErrInvalidID
	}

	member, err := s.memberRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Evaluation{}, err
	}
	if member == nil {
		return domain.Evaluation{}, domain.ErrMemberNotFound
	}

	lockKey := locking.MemberKey(member.ID)
	token, acquired, err := s.locker.TryLock(ctx, lockKey, s.cfg.VerifyLockTTL)
	if err != nil {
		return domain.Evaluation{}, err
	}
	if !acquired {
		return domain.Evaluation{}, domain.ErrVerificationLocked
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("verification lock release failed", zap.String("member_id", member.ID.String()), zap.Error(err))
		}
	}()

	return s.verify(ctx, member)
}

func (s *Service) verify(ctx context.Context, member *memberdomain.Member) (domain.Evaluation, error) {
	now := s.clock.Now()

	bal, err := s.balanceProv.Balance(ctx, member.WalletAddress)
	if err != nil {
		// Degrade to a zero observation rather than failing the check. A
		// zero snapshot breaks the streak, which is the safe direction for
		// an eligibility gate.
		s.log.Warn("balance fetch failed, recording zero balance",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		bal = decimal.Zero
	}
	if bal.Sign() < 0 {
		return domain.Evaluation{}, domain.ErrInvariantViolation
	}

	priceUsd, err := s.priceProv.PriceUsd(ctx)
	if err != nil {
		s.log.Warn("price fetch failed, valuing balance at zero",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		priceUsd = decimal.Zero
	}
	balanceUsd := bal.Mul(priceUsd)

	history, err := s.snapshotSvc.History(ctx, member.ID, s.cfg.SnapshotHistoryLimit)
	if err != nil {
		return domain.Evaluation{}, err
	}

	startedAt := domain.ReconstructStreakStart(now, bal, history)
	// A positive balance is required even when the configured threshold is
	// zero; holding nothing never qualifies.
	eligible := bal.Sign() > 0 && balanceUsd.GreaterThanOrEqual(s.cfg.MinHoldingUsd)
	if !eligible {
		// An ineligible member has no active streak regardless of what the
		// ledger reconstructs.
		startedAt = nil
	}

	// The observation must be part of the ledger before the derived state
	// is considered recorded. If the append fails nothing is written.
	if _, err := s.snapshotSvc.Append(ctx, snapshotdomain.AppendSnapshotRequest{
		MemberID:   member.ID,
		Balance:    bal,
		BalanceUsd: balanceUsd,
		Source:     snapshotdomain.SourceManual,
		CheckedAt:  now,
	}); err != nil {
		s.log.Error("snapshot append failed", zap.String("member_id", member.ID.String()), zap.Error(err))
		return domain.Evaluation{}, domain.ErrVerificationFailed
	}

	if err := s.memberRepo.UpdateHoldingState(ctx, s.db, member.ID, memberdomain.HoldingStateUpdate{
		IsEligible:       eligible,
		HoldingStartedAt: startedAt,
		LastBalanceCheck: &now,
	}); err != nil {
		return domain.Evaluation{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordEligibilityCheck(ctx, eligible)
	}

	if err := s.activitySvc.Notify(ctx, member.ID, activitydomain.KindEligibilityChecked, "Holding eligibility verified.", map[string]any{
		"is_eligible": eligible,
		"balance_usd": balanceUsd.String(),
	}); err != nil {
		s.log.Warn("eligibility activity entry failed", zap.String("member_id", member.ID.String()), zap.Error(err))
	}

	if s.rankSvc != nil {
		if _, err := s.rankSvc.Evaluate(ctx, rankdomain.EvaluateRequest{MemberID: member.ID.String()}); err != nil {
			s.log.Warn("rank evaluation failed", zap.String("member_id", member.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("eligibility verified",
		zap.String("member_id", member.ID.String()),
		zap.Bool("is_eligible", eligible),
		zap.String("balance_usd", balanceUsd.String()),
		zap.Int("days_held", domain.DaysHeld(now, startedAt)),
	)

	return domain.Evaluation{
		IsEligible:       eligible,
		HoldingStartedAt: startedAt,
		DaysHeld:         domain.DaysHeld(now, startedAt),
		Balance:          bal,
		PriceUsd:         priceUsd,
		BalanceUsd:       balanceUsd,
		MinHoldingUsd:    s.cfg.MinHoldingUsd,
		CheckedAt:        now,
	}, nil
}
