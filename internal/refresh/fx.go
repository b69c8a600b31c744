package refresh

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("refresh",
	fx.Provide(
		NewConfig,
		NewWorker,
	),
	fx.Invoke(runWorker),
)

// runWorker ties the refresh loop to the fx lifecycle. The loop runs on its
// own cancellable context rather than the OnStart context, which is only
// valid for the duration of startup.
func runWorker(lc fx.Lifecycle, w *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
