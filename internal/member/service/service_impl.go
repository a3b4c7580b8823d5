package service

import (
	"context"
	"strings"
	"time"

	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/internal/clock"
	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/arklabs/arkloyalty/internal/member/domain"
	obsmetrics "github.com/arklabs/arkloyalty/internal/observability/metrics"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/arklabs/arkloyalty/pkg/db"
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
	Config      config.Config
	Repo        domain.Repository
	RankSvc     rankdomain.Service
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.LoyaltyConfig
	repo        domain.Repository
	rankSvc     rankdomain.Service
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("member.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config.Loyalty,
		repo:        p.Repo,
		rankSvc:     p.RankSvc,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	wallet := strings.ToLower(strings.TrimSpace(req.WalletAddress))
	if wallet == "" {
		return domain.Member{}, domain.ErrInvalidWallet
	}

	now := s.clock.Now()
	member := domain.Member{
		ID:            s.genID.Generate(),
		WalletAddress: wallet,
		DisplayName:   strings.TrimSpace(req.DisplayName),
		ArkRank:       rankdomain.RankRecruit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Member{}, domain.ErrWalletExists
		}
		return domain.Member{}, err
	}

	return member, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetMemberRequest) (domain.Member, error) {
	member, err := s.findByID(ctx, req.ID)
	if err != nil {
		return domain.Member{}, err
	}
	return *member, nil
}

func (s *Service) GetByWallet(ctx context.Context, req domain.GetMemberByWalletRequest) (domain.Member, error) {
	wallet := strings.ToLower(strings.TrimSpace(req.WalletAddress))
	if wallet == "" {
		return domain.Member{}, domain.ErrInvalidWallet
	}

	member, err := s.repo.FindByWallet(ctx, s.db, wallet)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}
	return *member, nil
}

// CheckIn applies the daily streak rules: one check-in per UTC day, the
// streak grows only when yesterday was also checked in, any longer gap
// resets it to 1.
func (s *Service) CheckIn(ctx context.Context, req domain.CheckInRequest) (domain.CheckInResponse, error) {
	member, err := s.findByID(ctx, req.MemberID)
	if err != nil {
		return domain.CheckInResponse{}, err
	}

	now := s.clock.Now()
	today := now.Truncate(24 * time.Hour)

	if member.LastCheckinAt != nil {
		lastDay := member.LastCheckinAt.UTC().Truncate(24 * time.Hour)
		if lastDay.Equal(today) {
			return domain.CheckInResponse{Member: *member, AlreadyChecked: true}, nil
		}
		if lastDay.Equal(today.Add(-24 * time.Hour)) {
			member.CurrentStreak++
		} else {
			member.CurrentStreak = 1
		}
	} else {
		member.CurrentStreak = 1
	}

	member.Points += s.cfg.DailyCheckinPoints
	member.LastCheckinAt = &now

	if err := s.repo.UpdateProgress(ctx, s.db, member.ID, domain.ProgressUpdate{
		Points:                 member.Points,
		CurrentStreak:          member.CurrentStreak,
		LastCheckinAt:          member.LastCheckinAt,
		CompletedMissionsCount: member.CompletedMissionsCount,
	}); err != nil {
		return domain.CheckInResponse{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCheckin(ctx)
	}

	if err := s.activitySvc.Notify(ctx, member.ID, activitydomain.KindCheckin, "Daily check-in recorded.", map[string]any{
		"streak": member.CurrentStreak,
		"points": member.Points,
	}); err != nil {
		s.log.Warn("check-in activity entry failed", zap.String("member_id", member.ID.String()), zap.Error(err))
	}

	s.evaluateRank(ctx, member.ID)

	return domain.CheckInResponse{
		Member:         *member,
		PointsAwarded:  s.cfg.DailyCheckinPoints,
		StreakExtended: true,
	}, nil
}

func (s *Service) CompleteMission(ctx context.Context, req domain.CompleteMissionRequest) (domain.Member, error) {
	missionID := strings.TrimSpace(req.MissionID)
	if missionID == "" {
		return domain.Member{}, domain.ErrInvalidMission
	}
	if req.Points < 0 {
		return domain.Member{}, domain.ErrInvalidPoints
	}

	member, err := s.findByID(ctx, req.MemberID)
	if err != nil {
		return domain.Member{}, err
	}

	member.CompletedMissionsCount++
	member.Points += req.Points

	if err := s.repo.UpdateProgress(ctx, s.db, member.ID, domain.ProgressUpdate{
		Points:                 member.Points,
		CurrentStreak:          member.CurrentStreak,
		LastCheckinAt:          member.LastCheckinAt,
		CompletedMissionsCount: member.CompletedMissionsCount,
	}); err != nil {
		return domain.Member{}, err
	}

	if err := s.activitySvc.Notify(ctx, member.ID, activitydomain.KindMissionCompleted, "Mission completed.", map[string]any{
		"mission_id":         missionID,
		"points_awarded":     req.Points,
		"completed_missions": member.CompletedMissionsCount,
	}); err != nil {
		s.log.Warn("mission activity entry failed", zap.String("member_id", member.ID.String()), zap.Error(err))
	}

	s.evaluateRank(ctx, member.ID)

	return *member, nil
}

func (s *Service) Standing(ctx context.Context, req domain.GetMemberRequest) (domain.StandingResponse, error) {
	member, err := s.findByID(ctx, req.ID)
	if err != nil {
		return domain.StandingResponse{}, err
	}

	total, err := s.repo.CountMembers(ctx, s.db)
	if err != nil {
		return domain.StandingResponse{}, err
	}
	withMore, err := s.repo.CountMembersWithPointsGreaterThan(ctx, s.db, member.Points)
	if err != nil {
		return domain.StandingResponse{}, err
	}

	return domain.StandingResponse{
		Points:     member.Points,
		TotalUsers: total,
		Percentile: rankdomain.Percentile(withMore, total),
	}, nil
}

// evaluateRank runs a promotion pass as a side effect of a point-earning
// action. Its failure is logged and swallowed; the triggering action's
// outcome is reported independently.
func (s *Service) evaluateRank(ctx context.Context, memberID snowflake.ID) {
	if s.rankSvc == nil {
		return
	}
	if _, err := s.rankSvc.Evaluate(ctx, rankdomain.EvaluateRequest{MemberID: memberID.String()}); err != nil {
		s.log.Warn("rank evaluation failed", zap.String("member_id", memberID.String()), zap.Error(err))
	}
}

func (s *Service) findByID(ctx context.Context, raw string) (*domain.Member, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}
	return member, nil
}
