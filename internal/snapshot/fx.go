package snapshot

import (
	"github.com/arklabs/arkloyalty/internal/snapshot/repository"
	"github.com/arklabs/arkloyalty/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
