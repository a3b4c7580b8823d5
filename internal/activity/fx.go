package activity

import (
	"github.com/arklabs/arkloyalty/internal/activity/repository"
	"github.com/arklabs/arkloyalty/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
