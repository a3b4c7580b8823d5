package service

import (
	"context"
	"errors"
	"testing"
	"time"

	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	activityrepository "github.com/arklabs/arkloyalty/internal/activity/repository"
	activityservice "github.com/arklabs/arkloyalty/internal/activity/service"
	"github.com/arklabs/arkloyalty/internal/clock"
	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/arklabs/arkloyalty/internal/holding/domain"
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
	balance decimal.Decimal
	err     error
}

func (s *balanceStub) Balance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	return s.balance, s.err
}

type priceStub struct {
	price decimal.Decimal
	err   error
}

func (s *priceStub) PriceUsd(ctx context.Context) (decimal.Decimal, error) {
	return s.price, s.err
}

type holdingFixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	svc         domain.Service
	clock       *clock.FakeClock
	balanceProv *balanceStub
	priceProv   *priceStub
}

func setupHoldingTest(t *testing.T, dsn string) *holdingFixture {
	return setupHoldingTestWithThreshold(t, dsn, decimal.NewFromInt(250))
}

func setupHoldingTestWithThreshold(t *testing.T, dsn string, minHoldingUsd decimal.Decimal) *holdingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&memberdomain.Member{},
		&snapshotdomain.BalanceSnapshot{},
		&activitydomain.ActivityLog{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	cfg := config.Config{
		Loyalty: config.LoyaltyConfig{
			MinHoldingUsd:        minHoldingUsd,
			SnapshotHistoryLimit: 100,
			VerifyLockTTL:        15 * time.Second,
		},
	}

	snapshotSvc := snapshotservice.New(snapshotservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  snapshotrepository.Provide(),
	})
	activitySvc := activityservice.New(activityservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  activityrepository.Provide(),
	})

	balanceProv := &balanceStub{balance: decimal.Zero}
	priceProv := &priceStub{price: decimal.Zero}

	svc := New(Params{
		DB:          db,
		Log:         logger,
		Clock:       fakeClock,
		Config:      cfg,
		MemberRepo:  memberrepository.Provide(),
		SnapshotSvc: snapshotSvc,
		BalanceProv: balanceProv,
		PriceProv:   priceProv,
		ActivitySvc: activitySvc,
	})

	return &holdingFixture{
		db:          db,
		node:        node,
		svc:         svc,
		clock:       fakeClock,
		balanceProv: balanceProv,
		priceProv:   priceProv,
	}
}

func (f *holdingFixture) seedMember(t *testing.T) memberdomain.Member {
	t.Helper()

	member := memberdomain.Member{
		ID:            f.node.Generate(),
		WalletAddress: "0x" + f.node.Generate().String(),
		ArkRank:       rankdomain.RankRecruit,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	assert.NoError(t, f.db.Create(&member).Error)
	return member
}

func (f *holdingFixture) seedSnapshot(t *testing.T, memberID snowflake.ID, balance int64, checkedAt time.Time) {
	t.Helper()

	assert.NoError(t, f.db.Create(&snapshotdomain.BalanceSnapshot{
		ID:         f.node.Generate(),
		MemberID:   memberID,
		Balance:    decimal.NewFromInt(balance),
		BalanceUsd: decimal.NewFromInt(balance),
		Source:     snapshotdomain.SourceCron,
		CheckedAt:  checkedAt,
		CreatedAt:  checkedAt,
	}).Error)
}

func TestVerifyEligibility_EligibleWithContinuousHistory(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_eligible?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	now := f.clock.Now()
	oldest := now.Add(-30 * 24 * time.Hour)
	f.seedSnapshot(t, member.ID, 500, now.Add(-10*24*time.Hour))
	f.seedSnapshot(t, member.ID, 500, now.Add(-20*24*time.Hour))
	f.seedSnapshot(t, member.ID, 500, oldest)

	f.balanceProv.balance = decimal.NewFromInt(500)
	f.priceProv.price = decimal.NewFromInt(2)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.True(t, eval.IsEligible)
	assert.NotNil(t, eval.HoldingStartedAt)
	assert.WithinDuration(t, oldest, *eval.HoldingStartedAt, time.Second)
	assert.Equal(t, 30, eval.DaysHeld)
	assert.True(t, eval.BalanceUsd.Equal(decimal.NewFromInt(1000)))

	var stored memberdomain.Member
	assert.NoError(t, f.db.First(&stored, "id = ?", member.ID).Error)
	assert.True(t, stored.IsEligible)
	assert.NotNil(t, stored.HoldingStartedAt)
	assert.NotNil(t, stored.LastBalanceCheck)

	// The verification itself appended a MANUAL observation.
	var count int64
	assert.NoError(t, f.db.Model(&snapshotdomain.BalanceSnapshot{}).
		Where("member_id = ? AND source = ?", member.ID, snapshotdomain.SourceManual).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyEligibility_GapRestartsStreak(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_gap?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	now := f.clock.Now()
	f.seedSnapshot(t, member.ID, 400, now.Add(-2*24*time.Hour))
	f.seedSnapshot(t, member.ID, 0, now.Add(-5*24*time.Hour))
	f.seedSnapshot(t, member.ID, 400, now.Add(-9*24*time.Hour))

	f.balanceProv.balance = decimal.NewFromInt(400)
	f.priceProv.price = decimal.NewFromInt(1)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.True(t, eval.IsEligible)
	assert.NotNil(t, eval.HoldingStartedAt)
	assert.WithinDuration(t, now.Add(-2*24*time.Hour), *eval.HoldingStartedAt, time.Second)
	assert.Equal(t, 2, eval.DaysHeld)
}

func TestVerifyEligibility_BelowThresholdClearsStreak(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_threshold?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	now := f.clock.Now()
	f.seedSnapshot(t, member.ID, 100, now.Add(-15*24*time.Hour))

	// Holds tokens continuously but their USD value is under the minimum.
	f.balanceProv.balance = decimal.NewFromInt(100)
	f.priceProv.price = decimal.NewFromInt(2)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.False(t, eval.IsEligible)
	assert.Nil(t, eval.HoldingStartedAt)
	assert.Equal(t, 0, eval.DaysHeld)

	var stored memberdomain.Member
	assert.NoError(t, f.db.First(&stored, "id = ?", member.ID).Error)
	assert.False(t, stored.IsEligible)
	assert.Nil(t, stored.HoldingStartedAt)
}

func TestVerifyEligibility_ZeroBalanceNeverEligible(t *testing.T) {
	// Even with the threshold configured at zero, holding nothing does not
	// qualify.
	f := setupHoldingTestWithThreshold(t, "file:holding_zero_threshold?mode=memory&cache=shared", decimal.Zero)
	ctx := context.Background()

	member := f.seedMember(t)
	f.balanceProv.balance = decimal.Zero
	f.priceProv.price = decimal.NewFromInt(2)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.False(t, eval.IsEligible)
	assert.Nil(t, eval.HoldingStartedAt)

	var stored memberdomain.Member
	assert.NoError(t, f.db.First(&stored, "id = ?", member.ID).Error)
	assert.False(t, stored.IsEligible)
	assert.Nil(t, stored.HoldingStartedAt)
}

func TestVerifyEligibility_EmptyHistoryStartsNow(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_empty?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	f.balanceProv.balance = decimal.NewFromInt(300)
	f.priceProv.price = decimal.NewFromInt(1)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.True(t, eval.IsEligible)
	assert.NotNil(t, eval.HoldingStartedAt)
	assert.Equal(t, f.clock.Now(), *eval.HoldingStartedAt)
	assert.Equal(t, 0, eval.DaysHeld)
}

func TestVerifyEligibility_BalanceProviderDownRecordsZero(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_provider_down?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	now := f.clock.Now()
	f.seedSnapshot(t, member.ID, 500, now.Add(-3*24*time.Hour))

	f.balanceProv.err = errors.New("rpc timeout")
	f.priceProv.price = decimal.NewFromInt(2)

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.False(t, eval.IsEligible)
	assert.Nil(t, eval.HoldingStartedAt)
	assert.True(t, eval.Balance.IsZero())

	// The degraded observation still lands in the ledger and will break
	// the streak for later reconstructions.
	var latest snapshotdomain.BalanceSnapshot
	assert.NoError(t, f.db.Where("member_id = ?", member.ID).Order("checked_at desc").First(&latest).Error)
	assert.True(t, latest.Balance.IsZero())
}

func TestVerifyEligibility_PriceUnavailableValuesAtZero(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_price_down?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	f.balanceProv.balance = decimal.NewFromInt(500)
	f.priceProv.err = errors.New("feed unavailable")

	eval, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.NoError(t, err)
	assert.False(t, eval.IsEligible)
	assert.True(t, eval.BalanceUsd.IsZero())
	// The raw balance is nonzero, so the ledger entry does not fabricate a
	// streak gap.
	assert.True(t, eval.Balance.Equal(decimal.NewFromInt(500)))
}

func TestVerifyEligibility_NegativeBalanceRejected(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_negative?mode=memory&cache=shared")
	ctx := context.Background()

	member := f.seedMember(t)
	f.balanceProv.balance = decimal.NewFromInt(-1)

	_, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: member.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	// Nothing was recorded.
	var count int64
	assert.NoError(t, f.db.Model(&snapshotdomain.BalanceSnapshot{}).Where("member_id = ?", member.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVerifyEligibility_UnknownMember(t *testing.T) {
	f := setupHoldingTest(t, "file:holding_unknown?mode=memory&cache=shared")
	ctx := context.Background()

	_, err := f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: f.node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	_, err = f.svc.VerifyEligibility(ctx, domain.VerifyEligibilityRequest{MemberID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
