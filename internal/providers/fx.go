package providers

import (
	"github.com/arklabs/arkloyalty/internal/providers/balance"
	"github.com/arklabs/arkloyalty/internal/providers/price"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(
		balance.New,
		price.New,
	),
)
