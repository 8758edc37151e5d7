package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"solarlog/internal/api/handlers"
	"solarlog/internal/api/middleware"
	"solarlog/internal/config"
	"solarlog/internal/data"
	"solarlog/internal/store"
	"solarlog/internal/valuation"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (defaults used when empty)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	log := logger.WithField("component", "api")

	st, err := store.Open(cfg.DBPath, logger.WithField("component", "store"))
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	inverter := data.NewInverterClient(cfg.Inverter.Host, logger.WithField("component", "inverter"))
	prices := data.NewPriceClient(cfg.Prices.BaseURL, cfg.Prices.Token, cfg.Prices.Area,
		logger.WithField("component", "prices"))
	collector := data.NewCollector(inverter, prices, st,
		cfg.Collector.Interval(), cfg.Collector.LookbackDays,
		logger.WithField("component", "collector"))

	engine := valuation.New(cfg.Valuation.WorkingHourThresholdKWh)
	svc := valuation.NewService(st, engine, logger.WithField("component", "valuation"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go collector.Run(ctx)

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	httpLog := logger.WithField("component", "http")
	router.Use(middleware.Logger(httpLog))
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler(httpLog))

	analysisHandler := handlers.NewAnalysisHandler(svc, log)
	samplesHandler := handlers.NewSamplesHandler(st, collector, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/analysis/daily/:date", analysisHandler.Daily)
		api.GET("/analysis/monthly/:month", analysisHandler.Monthly)

		api.GET("/prices/:date", samplesHandler.Prices)
		api.GET("/energy/:date", samplesHandler.Energy)
		api.GET("/dates", samplesHandler.Dates)

		api.POST("/energy/fetch/:days_back", samplesHandler.FetchEnergy)
		api.POST("/refresh", samplesHandler.Refresh)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithField("addr", cfg.ListenAddr).Info("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server exited")
	}
}
