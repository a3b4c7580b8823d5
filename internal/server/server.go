package server

import (
	"context"
	"net/http"
	"time"

	"github.com/arklabs/arkloyalty/internal/activity"
	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/internal/clock"
	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/arklabs/arkloyalty/internal/holding"
	holdingdomain "github.com/arklabs/arkloyalty/internal/holding/domain"
	"github.com/arklabs/arkloyalty/internal/locking"
	"github.com/arklabs/arkloyalty/internal/member"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	"github.com/arklabs/arkloyalty/internal/observability"
	obsmiddleware "github.com/arklabs/arkloyalty/internal/observability/logger"
	obsmetrics "github.com/arklabs/arkloyalty/internal/observability/metrics"
	obstracing "github.com/arklabs/arkloyalty/internal/observability/tracing"
	"github.com/arklabs/arkloyalty/internal/providers"
	"github.com/arklabs/arkloyalty/internal/rank"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/arklabs/arkloyalty/internal/snapshot"
	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	clock.Module,
	fx.Provide(registerGin),
	locking.Module,
	providers.Module,
	member.Module,
	snapshot.Module,
	holding.Module,
	rank.Module,
	activity.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	memberSvc   memberdomain.Service
	holdingSvc  holdingdomain.Service
	rankSvc     rankdomain.Service
	snapshotSvc snapshotdomain.Service
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	MemberSvc   memberdomain.Service
	HoldingSvc  holdingdomain.Service
	RankSvc     rankdomain.Service
	SnapshotSvc snapshotdomain.Service
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		memberSvc:   p.MemberSvc,
		holdingSvc:  p.HoldingSvc,
		rankSvc:     p.RankSvc,
		snapshotSvc: p.SnapshotSvc,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	// -------- Members --------
	api.POST("/members", s.CreateMember)
	api.GET("/members/:id", s.GetMemberByID)
	api.GET("/members/by-wallet/:wallet", s.GetMemberByWallet)
	api.GET("/members/:id/standing", s.GetMemberStanding)

	// -------- Engagement --------
	api.POST("/members/:id/checkin", s.CheckIn)
	api.POST("/members/:id/missions/:missionId/complete", s.CompleteMission)

	// -------- Holding eligibility --------
	api.POST("/members/:id/eligibility/verify", s.VerifyEligibility)
	api.GET("/members/:id/snapshots", s.ListSnapshots)

	// -------- Ranks --------
	api.POST("/members/:id/rank/evaluate", s.EvaluateRank)
	api.GET("/members/:id/rank-history", s.ListRankHistory)

	// -------- Activity --------
	api.GET("/members/:id/activity", s.ListActivity)
}
