package hydro

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/hydrolink/internal/hydro/client"
)

var Module = fx.Module("hydro",
	fx.Provide(client.NewFromConfig),
)
