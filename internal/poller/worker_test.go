package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklabs/arkloyalty/internal/clock"
	appconfig "github.com/arklabs/arkloyalty/internal/config"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	memberrepository "github.com/arklabs/arkloyalty/internal/member/repository"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	snapshotrepository "github.com/arklabs/arkloyalty/internal/snapshot/repository"
	snapshotservice "github.com/arklabs/arkloyalty/internal/snapshot/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type balanceStub struct {
	balances map[string]decimal.Decimal
	failFor  map[string]error
}

func (s *balanceStub) Balance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	if err, ok := s.failFor[walletAddress]; ok {
		return decimal.Zero, err
	}
	return s.balances[walletAddress], nil
}

type priceStub struct {
	price decimal.Decimal
	err   error
}

func (s *priceStub) PriceUsd(ctx context.Context) (decimal.Decimal, error) {
	return s.price, s.err
}

func setupPollerTest(t *testing.T, dsn string) (*gorm.DB, *snowflake.Node, *Worker, *balanceStub, *priceStub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&memberdomain.Member{},
		&snapshotdomain.BalanceSnapshot{},
	))

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))

	appCfg := appconfig.Config{
		Loyalty: appconfig.LoyaltyConfig{
			MinHoldingUsd:        decimal.NewFromInt(250),
			SnapshotHistoryLimit: 100,
			SnapshotRetention:    90 * 24 * time.Hour,
		},
	}

	snapshotSvc := snapshotservice.New(snapshotservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  snapshotrepository.Provide(),
	})

	balanceProv := &balanceStub{
		balances: map[string]decimal.Decimal{},
		failFor:  map[string]error{},
	}
	priceProv := &priceStub{price: decimal.NewFromInt(1)}

	worker := NewWorker(Params{
		DB:          db,
		Log:         logger,
		Clock:       fakeClock,
		AppConfig:   appCfg,
		Config:      Config{Enabled: true, BatchSize: 2},
		MemberRepo:  memberrepository.Provide(),
		SnapshotSvc: snapshotSvc,
		BalanceProv: balanceProv,
		PriceProv:   priceProv,
	})

	return db, node, worker, balanceProv, priceProv
}

func seedPollerMember(t *testing.T, db *gorm.DB, node *snowflake.Node, wallet string) memberdomain.Member {
	t.Helper()

	member := memberdomain.Member{
		ID:            node.Generate(),
		WalletAddress: wallet,
		ArkRank:       rankdomain.RankRecruit,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	assert.NoError(t, db.Create(&member).Error)
	return member
}

func TestRunOnce_SnapshotsEveryMemberAcrossBatches(t *testing.T) {
	db, node, worker, balanceProv, _ := setupPollerTest(t, "file:poller_batches?mode=memory&cache=shared")
	ctx := context.Background()

	wallets := []string{"0xa", "0xb", "0xc", "0xd", "0xe"}
	for _, wallet := range wallets {
		seedPollerMember(t, db, node, wallet)
		balanceProv.balances[wallet] = decimal.NewFromInt(500)
	}

	assert.NoError(t, worker.RunOnce(ctx))

	var count int64
	assert.NoError(t, db.Model(&snapshotdomain.BalanceSnapshot{}).
		Where("source = ?", snapshotdomain.SourceCron).
		Count(&count).Error)
	assert.Equal(t, int64(len(wallets)), count)

	var members []memberdomain.Member
	assert.NoError(t, db.Find(&members).Error)
	for _, member := range members {
		assert.True(t, member.IsEligible, member.WalletAddress)
		assert.NotNil(t, member.LastBalanceCheck, member.WalletAddress)
	}
}

func TestRunOnce_ProviderFailureSkipsMember(t *testing.T) {
	db, node, worker, balanceProv, _ := setupPollerTest(t, "file:poller_skip?mode=memory&cache=shared")
	ctx := context.Background()

	healthy := seedPollerMember(t, db, node, "0xhealthy")
	broken := seedPollerMember(t, db, node, "0xbroken")
	balanceProv.balances["0xhealthy"] = decimal.NewFromInt(400)
	balanceProv.failFor["0xbroken"] = errors.New("rpc timeout")

	assert.NoError(t, worker.RunOnce(ctx))

	var count int64
	assert.NoError(t, db.Model(&snapshotdomain.BalanceSnapshot{}).
		Where("member_id = ?", healthy.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The failed member gets no fabricated zero observation and keeps its
	// previous state untouched.
	assert.NoError(t, db.Model(&snapshotdomain.BalanceSnapshot{}).
		Where("member_id = ?", broken.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var stored memberdomain.Member
	assert.NoError(t, db.First(&stored, "id = ?", broken.ID).Error)
	assert.Nil(t, stored.LastBalanceCheck)
}

func TestRunOnce_ZeroBalanceNeverEligible(t *testing.T) {
	db, node, worker, balanceProv, _ := setupPollerTest(t, "file:poller_zero_balance?mode=memory&cache=shared")
	ctx := context.Background()

	// Threshold of zero must not let an empty wallet qualify.
	worker.loyalty.MinHoldingUsd = decimal.Zero

	member := seedPollerMember(t, db, node, "0xempty")
	balanceProv.balances["0xempty"] = decimal.Zero

	assert.NoError(t, worker.RunOnce(ctx))

	var stored memberdomain.Member
	assert.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	assert.False(t, stored.IsEligible)
	assert.Nil(t, stored.HoldingStartedAt)
	assert.NotNil(t, stored.LastBalanceCheck)
}

func TestRunOnce_PriceFeedDownAbortsRun(t *testing.T) {
	db, node, worker, balanceProv, priceProv := setupPollerTest(t, "file:poller_price?mode=memory&cache=shared")
	ctx := context.Background()

	seedPollerMember(t, db, node, "0xwallet")
	balanceProv.balances["0xwallet"] = decimal.NewFromInt(500)
	priceProv.err = errors.New("feed unavailable")

	assert.Error(t, worker.RunOnce(ctx))

	var count int64
	assert.NoError(t, db.Model(&snapshotdomain.BalanceSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
