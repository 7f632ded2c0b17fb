// Command redirect-lookup-edge is the Lambda@Edge viewer-request function.
// Lambda@Edge does not support environment variables, so configuration comes
// from the config.toml bundled at /var/task.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/fx"

	"redirect-lookup-go/internal/app"
	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/edge"
)

func main() {
	var h *edge.Handler
	fxApp := fx.New(
		app.FxLogger,
		fx.Supply(&config.CLI{}),
		app.Core,
		app.NoMetrics,
		fx.Provide(edge.NewHandler),
		fx.Populate(&h),
	)

	// The store client is built once per container and reused across
	// invocations. Stop hooks never run: Lambda freezes the process instead,
	// so the handler flushes spans itself after every event.
	if err := fxApp.Start(context.Background()); err != nil {
		slog.Error("edge function init failed", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
