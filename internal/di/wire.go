//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		GatewaySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		ConfigSet,
		NewMigrationRunner,
	))
}
