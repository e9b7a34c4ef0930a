//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"goflare.io/checkout"
	"goflare.io/checkout/config"
	"goflare.io/checkout/handlers"
	"goflare.io/checkout/provider"
	"goflare.io/checkout/registry"
	"goflare.io/checkout/server"
	"goflare.io/checkout/views"
)

func InitializeServer(path config.Path) (*server.Server, error) {

	wire.Build(
		config.ProvideApplicationConfig,
		config.NewLogger,
		config.ProvideIgnite,
		provider.New,
		registry.ProvideRepository,
		registry.NewService,
		checkout.ProvideCheckout,
		views.NewRenderer,
		handlers.NewCheckoutHandler,
		handlers.NewOrderHandler,
		handlers.NewWebhookHandler,
		handlers.NewOutcomeHandler,
		handlers.NewDiagnosticsHandler,
		server.NewServer,
	)

	return &server.Server{}, nil
}
