package main

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
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/router"
	"github.com/iliyamo/tour-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger("dev", "info").WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}

	// Redis is optional; without it the limiter and cache pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and catalog cache disabled")
	} else {
		defer rdb.Close()
	}

	var publisher service.EventPublisher
	if cfg.AMQPEnabled {
		publisher = queue.NewPublisher(cfg.AMQPURL, log)
	}

	tx := repository.NewTxManager(db)
	packages := repository.NewPackageRepo(db)
	itineraries := repository.NewItineraryRepo(db)
	clients := repository.NewClientRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)

	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, repository.NewUserRepo(db), repository.NewTokenRepo(db), clients, log)
	catalogSvc := service.NewCatalogService(packages, log)
	itinerarySvc := service.NewItineraryService(itineraries, packages, log)
	clientSvc := service.NewClientService(clients)
	bookingSvc := service.NewReservationService(tx, reservations, clients, packages, log)
	paymentSvc := service.NewPaymentService(tx, payments, reservations, bookingSvc, publisher, log)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("seed admin")
		}
		if created {
			log.WithField("email", cfg.AdminEmail).Info("admin account created")
		}
	}

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))

	resH := handler.NewReservationHandler(bookingSvc, log)
	payH := handler.NewPaymentHandler(paymentSvc, resH, log)
	pkgH := handler.NewPackageHandler(catalogSvc, cache, log)
	itH := handler.NewItineraryHandler(itinerarySvc, cache, log)
	cliH := handler.NewClientHandler(clientSvc, log)

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, log), cfg.JWTSecret)
	router.RegisterProfile(e, cliH, cfg.JWTSecret)
	router.RegisterPublic(e, pkgH, itH, cache.Middleware())
	router.RegisterBookings(e, resH, payH, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, router.AdminHandlers{
		Packages:     pkgH,
		Itineraries:  itH,
		Clients:      cliH,
		Reservations: resH,
		Payments:     payH,
	}, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
