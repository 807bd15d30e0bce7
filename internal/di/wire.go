//go:build wireinject
// +build wireinject

package di

import (
	"GasCurve/pkg/config"
	"GasCurve/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideClickHouseClient,
		ProvideObservationStore,
		ProvideCache,

		// Use cases and HTTP surface
		ProvideCurveService,
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
