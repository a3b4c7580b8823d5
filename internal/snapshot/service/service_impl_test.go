package service

import (
	"context"
	"testing"
	"time"

	"github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/arklabs/arkloyalty/internal/snapshot/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSnapshotTest(t *testing.T, dsn string) (*snowflake.Node, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.BalanceSnapshot{}))

	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return node, svc
}

func TestAppend_Validation(t *testing.T) {
	node, svc := setupSnapshotTest(t, "file:snapshot_validation?mode=memory&cache=shared")
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := svc.Append(ctx, domain.AppendSnapshotRequest{
		Balance:   decimal.NewFromInt(1),
		Source:    domain.SourceManual,
		CheckedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMember)

	_, err = svc.Append(ctx, domain.AppendSnapshotRequest{
		MemberID:  node.Generate(),
		Balance:   decimal.NewFromInt(-1),
		Source:    domain.SourceManual,
		CheckedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBalance)

	_, err = svc.Append(ctx, domain.AppendSnapshotRequest{
		MemberID:  node.Generate(),
		Balance:   decimal.NewFromInt(1),
		Source:    "GUESS",
		CheckedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	got, err := svc.Append(ctx, domain.AppendSnapshotRequest{
		MemberID:  node.Generate(),
		Balance:   decimal.Zero,
		Source:    domain.SourceCron,
		CheckedAt: now,
	})
	assert.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, domain.SourceCron, got.Source)
}

func TestHistory_NewestFirst(t *testing.T) {
	node, svc := setupSnapshotTest(t, "file:snapshot_history?mode=memory&cache=shared")
	ctx := context.Background()

	memberID := node.Generate()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 5; day++ {
		_, err := svc.Append(ctx, domain.AppendSnapshotRequest{
			MemberID:  memberID,
			Balance:   decimal.NewFromInt(int64(100 + day)),
			Source:    domain.SourceCron,
			CheckedAt: base.Add(time.Duration(day) * 24 * time.Hour),
		})
		assert.NoError(t, err)
	}

	history, err := svc.History(ctx, memberID, 3)
	assert.NoError(t, err)
	assert.Len(t, history, 3)
	assert.True(t, history[0].CheckedAt.After(history[1].CheckedAt))
	assert.True(t, history[1].CheckedAt.After(history[2].CheckedAt))
	assert.True(t, history[0].Balance.Equal(decimal.NewFromInt(104)))
}

func TestPrune_RemovesOnlyOldSnapshots(t *testing.T) {
	node, svc := setupSnapshotTest(t, "file:snapshot_prune?mode=memory&cache=shared")
	ctx := context.Background()

	memberID := node.Generate()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{1, 50, 120} {
		_, err := svc.Append(ctx, domain.AppendSnapshotRequest{
			MemberID:  memberID,
			Balance:   decimal.NewFromInt(10),
			Source:    domain.SourceCron,
			CheckedAt: now.Add(-age * 24 * time.Hour),
		})
		assert.NoError(t, err)
	}

	removed, err := svc.Prune(ctx, now.Add(-90*24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	history, err := svc.History(ctx, memberID, 10)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
}
