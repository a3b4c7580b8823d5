package service

import (
	"context"
	"strings"
	"time"

	obsmetrics "github.com/arklabs/arkloyalty/internal/observability/metrics"
	"github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("snapshot.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Append(ctx context.Context, req domain.AppendSnapshotRequest) (domain.BalanceSnapshot, error) {
	if req.MemberID == 0 {
		return domain.BalanceSnapshot{}, domain.ErrInvalidMember
	}
	if req.Balance.Sign() < 0 || req.BalanceUsd.Sign() < 0 {
		return domain.BalanceSnapshot{}, domain.ErrInvalidBalance
	}

	source, err := normalizeSource(req.Source)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}

	checkedAt := req.CheckedAt.UTC()
	if checkedAt.IsZero() {
		return domain.BalanceSnapshot{}, domain.ErrInvalidBalance
	}

	snapshot := domain.BalanceSnapshot{
		ID:         s.genID.Generate(),
		MemberID:   req.MemberID,
		Balance:    req.Balance,
		BalanceUsd: req.BalanceUsd,
		Source:     source,
		CheckedAt:  checkedAt,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &snapshot); err != nil {
		return domain.BalanceSnapshot{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordSnapshotAppended(ctx, string(source))
	}

	return snapshot, nil
}

func (s *Service) History(ctx context.Context, memberID snowflake.ID, limit int) ([]domain.BalanceSnapshot, error) {
	if memberID == 0 {
		return nil, domain.ErrInvalidMember
	}
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, s.db, memberID, limit)
}

func (s *Service) List(ctx context.Context, req domain.ListSnapshotRequest) (domain.ListSnapshotResponse, error) {
	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || memberID == 0 {
		return domain.ListSnapshotResponse{}, domain.ErrInvalidMember
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, memberID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListSnapshotResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(snapshot *domain.BalanceSnapshot) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        snapshot.ID.String(),
			CreatedAt: snapshot.CheckedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	snapshots := make([]domain.BalanceSnapshot, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		snapshots = append(snapshots, *item)
	}

	resp := domain.ListSnapshotResponse{Snapshots: snapshots}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Prune(ctx context.Context, before time.Time) (int64, error) {
	removed, err := s.repo.DeleteBefore(ctx, s.db, before.UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info("pruned balance snapshots", zap.Int64("removed", removed), zap.Time("before", before.UTC()))
	}
	return removed, nil
}

func normalizeSource(source domain.SnapshotSource) (domain.SnapshotSource, error) {
	switch domain.SnapshotSource(strings.ToUpper(strings.TrimSpace(string(source)))) {
	case domain.SourceManual:
		return domain.SourceManual, nil
	case domain.SourceCron:
		return domain.SourceCron, nil
	case domain.SourceBackfill:
		return domain.SourceBackfill, nil
	default:
		return "", domain.ErrInvalidSource
	}
}
