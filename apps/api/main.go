package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	echoapi "github.com/revelohq/revelo/apps/api/echo"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	"github.com/revelohq/revelo/core/user"
	"github.com/revelohq/revelo/services/denylist/redisdenylist"
	dummymail "github.com/revelohq/revelo/services/email/dummy"
	sendgridmail "github.com/revelohq/revelo/services/email/sendgrid"
	logsvc "github.com/revelohq/revelo/services/logger"
	razorpaygw "github.com/revelohq/revelo/services/payment/razorpay"
	cloudinarystorage "github.com/revelohq/revelo/services/storage/cloudinary"
	"github.com/revelohq/revelo/storage/database/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx := context.Background()
	db, err := mongodb.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = mongodb.Close(ctx, db); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	if err = mongodb.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal(fmt.Sprintf("creating indexes: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = dummymail.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(conf, logger)
	}

	fileStorage, err := cloudinarystorage.NewService(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	denylist := redisdenylist.NewService(conf)

	instituteRepo := mongodb.NewInstituteRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	paymentRepo := mongodb.NewPaymentRepository(db)

	paymentSvc := payment.NewService(paymentRepo, razorpaygw.NewGateway(conf), conf)
	instituteSvc := institute.NewService(instituteRepo)
	eventSvc := event.NewService(eventRepo, instituteRepo, paymentSvc)
	userSvc := user.NewService(userRepo, mailSvc, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		InstituteSvc: instituteSvc,
		EventSvc:     eventSvc,
		UserSvc:      userSvc,
		PaymentSvc:   paymentSvc,
		FileStorage:  fileStorage,
		Denylist:     denylist,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
