package service

import (
	"context"
	"strings"
	"time"

	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/internal/clock"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	obsmetrics "github.com/arklabs/arkloyalty/internal/observability/metrics"
	"github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	MemberRepo  memberdomain.Repository
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	memberRepo  memberdomain.Repository
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("rank.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		memberRepo:  p.MemberRepo,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// Evaluate runs one promotion pass. The rank write is guarded on the rank
// observed at read time; when a concurrent pass wins the race the whole
// evaluation is retried once with fresh state so a stale computation can
// never overwrite a newer rank.
func (s *Service) Evaluate(ctx context.Context, req domain.EvaluateRequest) (domain.EvaluateResponse, error) {
	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || memberID == 0 {
		return domain.EvaluateResponse{}, domain.ErrInvalidID
	}

	resp, err := s.evaluateOnce(ctx, memberID)
	if err == domain.ErrConcurrentUpdate {
		resp, err = s.evaluateOnce(ctx, memberID)
	}
	return resp, err
}

func (s *Service) evaluateOnce(ctx context.Context, memberID snowflake.ID) (domain.EvaluateResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, s.db, memberID)
	if err != nil {
		return domain.EvaluateResponse{}, err
	}
	if member == nil {
		return domain.EvaluateResponse{}, domain.ErrMemberNotFound
	}

	percentile, err := s.percentileFor(ctx, member)
	if err != nil {
		return domain.EvaluateResponse{}, err
	}

	now := s.clock.Now()
	eval := domain.Evaluation{
		Now:               now,
		CurrentStreak:     member.CurrentStreak,
		CompletedMissions: member.CompletedMissionsCount,
		Points:            member.Points,
		HoldingStartedAt:  member.HoldingStartedAt,
		IsEligible:        member.IsEligible,
		Percentile:        percentile,
	}

	target, message, found := domain.NextPromotion(member.ArkRank, eval)
	if !found {
		return domain.EvaluateResponse{Percentile: percentile}, nil
	}
	if !target.Above(member.ArkRank) {
		// NextPromotion only yields higher tiers; anything else is a defect.
		return domain.EvaluateResponse{}, domain.ErrInvariantViolation
	}

	entry := domain.RankHistory{
		ID:         s.genID.Generate(),
		MemberID:   member.ID,
		Rank:       target,
		PromotedAt: now,
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.memberRepo.UpdateRankGuarded(ctx, tx, member.ID, member.ArkRank, target)
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrConcurrentUpdate
		}
		return s.repo.Insert(ctx, tx, &entry)
	})
	if err != nil {
		return domain.EvaluateResponse{}, err
	}

	if notifyErr := s.activitySvc.Notify(ctx, member.ID, activitydomain.KindRankPromoted, message, map[string]any{
		"from_rank": string(member.ArkRank),
		"to_rank":   string(target),
	}); notifyErr != nil {
		s.log.Warn("promotion notification failed",
			zap.String("member_id", member.ID.String()),
			zap.Error(notifyErr),
		)
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPromotion(ctx, string(target))
	}

	s.log.Info("member promoted",
		zap.String("member_id", member.ID.String()),
		zap.String("from", string(member.ArkRank)),
		zap.String("to", string(target)),
		zap.Float64("percentile", percentile),
	)

	return domain.EvaluateResponse{
		Promoted:   true,
		From:       member.ArkRank,
		To:         target,
		Message:    message,
		Percentile: percentile,
	}, nil
}

// percentileFor reads the two population aggregates. They are separate
// queries and tolerate slight staleness between them, but the member's own
// row is included in the total and excluded from the strictly-greater
// count, so self is never double counted or dropped.
func (s *Service) percentileFor(ctx context.Context, member *memberdomain.Member) (float64, error) {
	total, err := s.memberRepo.CountMembers(ctx, s.db)
	if err != nil {
		return 0, err
	}
	withMore, err := s.memberRepo.CountMembersWithPointsGreaterThan(ctx, s.db, member.Points)
	if err != nil {
		return 0, err
	}
	if total <= 0 || withMore < 0 {
		return 0, domain.ErrInvariantViolation
	}
	// An insert landing between the two count reads can leave withMore equal
	// to (or past) the total. Clamp so the member still counts as present in
	// the population instead of aborting the pass.
	if withMore >= total {
		withMore = total - 1
	}

	percentile := domain.Percentile(withMore, total)
	if percentile < 0 || percentile > 100 {
		return 0, domain.ErrInvariantViolation
	}
	return percentile, nil
}

func (s *Service) ListHistory(ctx context.Context, req domain.ListRankHistoryRequest) (domain.ListRankHistoryResponse, error) {
	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || memberID == 0 {
		return domain.ListRankHistoryResponse{}, domain.ErrInvalidID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByMember(ctx, s.db, memberID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListRankHistoryResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(entry *domain.RankHistory) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.PromotedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	entries := make([]domain.RankHistory, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := domain.ListRankHistoryResponse{Entries: entries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
