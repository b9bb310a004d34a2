package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/trafine/internal/config"
	"github.com/Skotchmaster/trafine/internal/db"
	"github.com/Skotchmaster/trafine/internal/directions"
	"github.com/Skotchmaster/trafine/internal/httpserver"
	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/metrics"
	loggingmw "github.com/Skotchmaster/trafine/internal/middleware/logging"
	"github.com/Skotchmaster/trafine/internal/mykafka"
	"github.com/Skotchmaster/trafine/internal/qr"
	"github.com/Skotchmaster/trafine/internal/repo"
	"github.com/Skotchmaster/trafine/internal/search"
	"github.com/Skotchmaster/trafine/internal/service"
	"github.com/Skotchmaster/trafine/internal/tokens"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	issuer, err := tokens.NewIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("session issuer: %v", err)
	}

	m := metrics.New()
	store := repo.New(conn)

	authSvc := &service.AuthService{
		Repo:    store,
		Tokens:  issuer,
		Metrics: m,
		Cost:    cfg.BcryptCost,
	}
	incidentSvc := &service.IncidentService{
		Repo:     store,
		Metrics:  m,
		PerVoter: cfg.VotePolicy == config.VotePolicyPerVoter,
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		authSvc.Publisher = producer
		incidentSvc.Publisher = producer
	}

	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		idx, err := search.New(ctx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		cancel()
		if err != nil {
			logger.Warn("search_disabled", "error", err)
		} else {
			incidentSvc.Index = idx
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		IncidentHandler: &httpserver.IncidentHTTP{Svc: incidentSvc},
		NavigationHandler: &httpserver.NavigationHTTP{
			Directions: directions.NewClient(cfg.DirectionsURL, cfg.MapboxToken, cfg.DirectionsTimeout),
			QRSize:     qr.DefaultSize,
		},
		Sessions: issuer,
		DB:       conn,
		Metrics:  m,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := db.Close(conn); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("trafine stopped")
}
