package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/revelohq/revelo/apps/api/echo/handlers"
	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	"github.com/revelohq/revelo/core/user"
	"github.com/revelohq/revelo/monitoring"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		InstituteSvc *institute.Service
		EventSvc     *event.Service
		UserSvc      *user.Service
		PaymentSvc   *payment.Service

		FileStorage core.FileStorage
		Denylist    core.TokenDenylist

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	helpers.ConfigureAuth(conf, s.deps.Denylist)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(monitoring.HTTPMetrics())
	s.app.Use(helpers.Guard())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := s.app.Group("")
	handlers.RegisterAdminAPI(g, s.deps.InstituteSvc, conf)
	handlers.RegisterInstituteAPI(g, s.deps.InstituteSvc, s.deps.EventSvc, s.deps.FileStorage)
	handlers.RegisterEventAPI(g, s.deps.EventSvc)
	handlers.RegisterUserAPI(g, s.deps.UserSvc)
	handlers.RegisterPaymentAPI(g, s.deps.PaymentSvc)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Errors() <-chan error             { return s.errs }
func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown fakes a SIGTERM when an unrecoverable error is caught.
func (s *server) signalShutdown() { s.shutdown <- syscall.SIGTERM }

func (s *server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }
func (s *server) Close() error                       { return s.app.Close() }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Revelo API!")
}
