package migration

import (
	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/internal/config"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// sqlite is for local experiments and tests; gorm's automigration
		// is enough there and the SQL files stay postgres-only.
		if cfg.DBType == "sqlite" {
			return conn.AutoMigrate(
				&memberdomain.Member{},
				&snapshotdomain.BalanceSnapshot{},
				&rankdomain.RankHistory{},
				&activitydomain.ActivityLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
