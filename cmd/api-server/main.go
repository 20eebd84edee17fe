// Binary api-server serves the storefront HTTP API: the product catalog,
// user accounts and carts, offer evaluation, and the order delivery
// lifecycle. Configuration comes from STORE_-prefixed environment
// variables or a config.yaml; see internal/app.Config.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/karyanastore/storefront/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}
		return appkg.Run(ctx, lg, m, cfg)
	})
}
