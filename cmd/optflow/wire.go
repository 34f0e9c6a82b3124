//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"optflow/internal/app"
)

// InitializeApp builds App via Wire.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideClient,
		app.ProvidePacer,
		app.ProvideFetcher,
		app.ProvideDriver,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
