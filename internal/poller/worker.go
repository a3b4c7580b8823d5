package poller

import (
	"context"
	"time"

	"github.com/arklabs/arkloyalty/internal/clock"
	appconfig "github.com/arklabs/arkloyalty/internal/config"
	holdingdomain "github.com/arklabs/arkloyalty/internal/holding/domain"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	"github.com/arklabs/arkloyalty/internal/providers/balance"
	"github.com/arklabs/arkloyalty/internal/providers/price"
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
	AppConfig   appconfig.Config
	Config      Config
	MemberRepo  memberdomain.Repository
	SnapshotSvc snapshotdomain.Service
	BalanceProv balance.Provider
	PriceProv   price.Provider
}

// Worker periodically snapshots every member's balance so the streak
// reconstruction has a dense ledger even for members who never call the
// verification endpoint themselves.
type Worker struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	loyalty     appconfig.LoyaltyConfig
	cfg         Config
	memberRepo  memberdomain.Repository
	snapshotSvc snapshotdomain.Service
	balanceProv balance.Provider
	priceProv   price.Provider
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:          p.DB,
		log:         p.Log.Named("poller"),
		clock:       p.Clock,
		loyalty:     p.AppConfig.Loyalty,
		cfg:         p.Config.withDefaults(),
		memberRepo:  p.MemberRepo,
		snapshotSvc: p.SnapshotSvc,
		balanceProv: p.BalanceProv,
		priceProv:   p.PriceProv,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("balance poll run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(parentCtx context.Context) error {
	ctx, cancel := context.WithTimeout(parentCtx, w.cfg.RunTimeout)
	defer cancel()

	priceUsd, err := w.priceProv.PriceUsd(ctx)
	if err != nil {
		return err
	}

	processed := 0
	var afterID snowflake.ID
	for {
		members, err := w.memberRepo.ListAfter(ctx, w.db, afterID, w.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			break
		}

		for i := range members {
			if err := ctx.Err(); err != nil {
				return err
			}
			if w.snapshotMember(ctx, &members[i], priceUsd) {
				processed++
			}
		}
		afterID = members[len(members)-1].ID
	}

	removed, err := w.snapshotSvc.Prune(ctx, w.clock.Now().Add(-w.loyalty.SnapshotRetention))
	if err != nil {
		w.log.Warn("snapshot prune failed", zap.Error(err))
	}

	w.log.Info("balance poll completed",
		zap.Int("members_snapshotted", processed),
		zap.Int64("snapshots_pruned", removed),
	)
	return nil
}

// snapshotMember records one CRON observation and refreshes the member's
// derived holding state. A provider failure skips the member; unlike the
// interactive verification, the poller must not write a zero balance it
// did not actually observe.
func (w *Worker) snapshotMember(ctx context.Context, member *memberdomain.Member, priceUsd decimal.Decimal) bool {
	bal, err := w.balanceProv.Balance(ctx, member.WalletAddress)
	if err != nil {
		w.log.Warn("balance fetch failed, skipping member",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		return false
	}
	if bal.Sign() < 0 {
		w.log.Warn("negative balance from provider, skipping member",
			zap.String("member_id", member.ID.String()), zap.String("balance", bal.String()))
		return false
	}

	now := w.clock.Now()
	balanceUsd := bal.Mul(priceUsd)

	if _, err := w.snapshotSvc.Append(ctx, snapshotdomain.AppendSnapshotRequest{
		MemberID:   member.ID,
		Balance:    bal,
		BalanceUsd: balanceUsd,
		Source:     snapshotdomain.SourceCron,
		CheckedAt:  now,
	}); err != nil {
		w.log.Warn("snapshot append failed",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		return false
	}

	history, err := w.snapshotSvc.History(ctx, member.ID, w.loyalty.SnapshotHistoryLimit)
	if err != nil {
		w.log.Warn("snapshot history read failed",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		return false
	}

	startedAt := holdingdomain.ReconstructStreakStart(now, bal, history)
	eligible := bal.Sign() > 0 && balanceUsd.GreaterThanOrEqual(w.loyalty.MinHoldingUsd)
	if !eligible {
		startedAt = nil
	}

	if err := w.memberRepo.UpdateHoldingState(ctx, w.db, member.ID, memberdomain.HoldingStateUpdate{
		IsEligible:       eligible,
		HoldingStartedAt: startedAt,
		LastBalanceCheck: &now,
	}); err != nil {
		w.log.Warn("holding state update failed",
			zap.String("member_id", member.ID.String()), zap.Error(err))
		return false
	}

	return true
}
