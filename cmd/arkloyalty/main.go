package main

import (
	"github.com/arklabs/arkloyalty/internal/config"
	"github.com/arklabs/arkloyalty/internal/migration"
	"github.com/arklabs/arkloyalty/internal/observability"
	"github.com/arklabs/arkloyalty/internal/poller"
	"github.com/arklabs/arkloyalty/internal/server"
	"github.com/arklabs/arkloyalty/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
		poller.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
