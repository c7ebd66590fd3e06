package main // Entry point package

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                     // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Recover and CORS
	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/config"
	"github.com/rihanvyakoob07/authenflow-platform/internal/database"
	"github.com/rihanvyakoob07/authenflow-platform/internal/handler"
	"github.com/rihanvyakoob07/authenflow-platform/internal/middleware"
	"github.com/rihanvyakoob07/authenflow-platform/internal/queue"
	"github.com/rihanvyakoob07/authenflow-platform/internal/repository"
	"github.com/rihanvyakoob07/authenflow-platform/internal/router"
	"github.com/rihanvyakoob07/authenflow-platform/internal/service"
	"github.com/rihanvyakoob07/authenflow-platform/internal/utils"
)

func main() {
	createAdmin := flag.String("create-admin", "", "create or promote an admin account (email:password:name) and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(logger) // Load environment config
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("unknown LOG_LEVEL %q, keeping %s", cfg.LogLevel, logger.GetLevel())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDSN)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	wishlist := repository.NewWishlistRepo(db)
	products := repository.NewProductRepo(db)
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub := service.NewAMQPPublisher(cfg.RabbitMQURL, 256, logger)
		go pub.Run(ctx)
		events = pub
		// Consumer runs in the background; it keeps reconnecting on broker errors.
		go queue.NewActivityConsumer(cfg.RabbitMQURL, cfg.LogDir, logger).Run(ctx)
	}

	authSvc := service.NewAuthService(users, wishlist, products, tokens, cfg.BcryptCost, logger)
	catalogSvc := service.NewCatalogService(products, users, events, cfg.AllowReviewSeeding, logger)

	if *createAdmin != "" {
		if err := bootstrapAdmin(ctx, authSvc, *createAdmin, logger); err != nil {
			logger.Fatalf("create-admin: %v", err)
		}
		return
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	gate := router.Gate{Tokens: tokens, Users: users, Log: logger}
	router.RegisterRoutes(e, db)
	api := e.Group("/api")
	router.RegisterAuth(api, handler.NewAuthHandler(authSvc, logger), gate)
	productHandler := handler.NewProductHandler(catalogSvc, logger)
	router.RegisterProducts(api, productHandler, gate)
	router.RegisterAnalytics(api, productHandler)

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
