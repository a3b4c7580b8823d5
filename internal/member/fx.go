package member

import (
	"github.com/arklabs/arkloyalty/internal/member/repository"
	"github.com/arklabs/arkloyalty/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
