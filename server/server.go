package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"goflare.io/checkout"
	"goflare.io/checkout/config"
	"goflare.io/checkout/handlers"
	"goflare.io/checkout/views"
)

type Server struct {
	echo        *echo.Echo
	address     string
	logger      *zap.Logger
	checkout    checkout.Checkout
	Checkout    handlers.CheckoutHandler
	Order       handlers.OrderHandler
	Webhook     handlers.WebhookHandler
	Outcome     handlers.OutcomeHandler
	Diagnostics handlers.DiagnosticsHandler
}

func NewServer(
	Config *config.Config,
	Service checkout.Checkout,
	Renderer *views.Renderer,
	Logger *zap.Logger,
	Checkout handlers.CheckoutHandler,
	Order handlers.OrderHandler,
	Webhook handlers.WebhookHandler,
	Outcome handlers.OutcomeHandler,
	Diagnostics handlers.DiagnosticsHandler,
) *Server {

	e := echo.New()
	e.HideBanner = true
	e.Renderer = Renderer

	s := &Server{
		echo:        e,
		address:     ":" + Config.Server.Port,
		logger:      Logger,
		checkout:    Service,
		Checkout:    Checkout,
		Order:       Order,
		Webhook:     Webhook,
		Outcome:     Outcome,
		Diagnostics: Diagnostics,
	}
	s.registerMiddlewares()
	s.registerRoutes()

	return s
}

// Address is the listen address taken from server.port.
func (s *Server) Address() string {
	return s.address
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts listening for connections on the provided address.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Run starts the server in a goroutine and blocks until an interrupt or
// SIGTERM arrives, then shuts the listener down and drains webhook work.
func (s *Server) Run(address string) error {

	go func() {
		if err := s.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.echo.Shutdown(ctx)
	s.checkout.Close()

	return err
}

func (s *Server) registerMiddlewares() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				s.logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.logger.Info("Request", fields...)
			return nil
		},
	}))
}

func (s *Server) registerRoutes() {

	s.echo.GET("/", s.Diagnostics.Root)
	s.echo.GET("/health", s.Diagnostics.Health)
	s.echo.GET("/test-sumup", s.Diagnostics.TestConnection)
	s.echo.GET("/get-token", s.Diagnostics.GetToken)
	s.echo.GET("/transactions", s.Diagnostics.ListTransactions)

	s.echo.GET("/checkout", s.Checkout.CreateCheckout)
	s.echo.GET("/checkout/:sessionId", s.Checkout.GetCheckout)

	s.echo.GET("/payment/success", s.Outcome.Success)
	s.echo.GET("/payment/failure", s.Outcome.Failure)

	s.echo.POST("/webhook/order-created", s.Order.OrderCreated)
	s.echo.POST("/webhook/:provider", s.Webhook.HandleProviderWebhook)
}
