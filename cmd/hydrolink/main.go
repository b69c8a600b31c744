package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/hydrolink/internal/clock"
	"github.com/smallbiznis/hydrolink/internal/config"
	"github.com/smallbiznis/hydrolink/internal/hydro"
	"github.com/smallbiznis/hydrolink/internal/observability"
	"github.com/smallbiznis/hydrolink/internal/query"
	"github.com/smallbiznis/hydrolink/internal/refresh"
	"github.com/smallbiznis/hydrolink/internal/server"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		hydro.Module,
		snapshot.Module,
		refresh.Module,
		query.Module,

		fx.Supply(server.Version(version)),
		server.Module,
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
