// @title Bootcamp directory API
// @version 1.0
// @description Bootcamps, courses, reviews and accounts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/bootcamp-service/internal/config"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	api "github.com/tazhibayda/bootcamp-service/internal/http"
	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/mail"
	"github.com/tazhibayda/bootcamp-service/internal/metrics"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
	"github.com/tazhibayda/bootcamp-service/internal/ratelimit"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.IsProd())
	if err != nil {
		panic(err)
	}
	err = run(cfg, logger)
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	if cfg.TraceEnabled {
		tracer.Start(tracer.WithService("bootcamp-service"), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close(context.Background())) }()
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return err
	}
	logger.Info("mongo connected", zap.String("db", cfg.MongoDB))

	geo, err := geocode.New(cfg.GeocoderProvider, cfg.GeocoderAPIKey)
	if err != nil {
		return err
	}

	events := queue.NewNoop()
	if cfg.MailTransport == "queue" || cfg.RabbitURL != "" {
		rp, rerr := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case rerr == nil:
			events = rp
			defer func() { err = multierr.Append(err, rp.Close()) }()
		case cfg.MailTransport == "queue":
			return rerr
		default:
			logger.Warn("rabbit unavailable, events disabled", zap.Error(rerr))
		}
	}

	var sender mail.Sender
	switch cfg.MailTransport {
	case "smtp":
		sender = &mail.SMTPSender{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			User:      cfg.SMTPUser,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}
	case "queue":
		sender = mail.QueueSender{Pub: events, ReqID: service.RequestID}
	default:
		sender = mail.LogSender{Log: logger}
	}

	var limiter ratelimit.Counter = ratelimit.NewMemory(nil)
	if cfg.RedisAddr != "" {
		rc := ratelimit.NewRedis(cfg.RedisAddr)
		if perr := rc.Ping(connectCtx); perr != nil {
			logger.Warn("redis unavailable, using in-process rate limits", zap.Error(perr))
			_ = rc.Close()
		} else {
			limiter = rc
			defer func() { err = multierr.Append(err, rc.Close()) }()
		}
	}

	tokens := security.NewTokens(cfg.JWTSecret, cfg.JWTExpire, nil)
	svc := service.New(store, geo, events, logger)
	h := api.NewHandler(store, svc, tokens, geo, sender, events, limiter, logger, api.Options{
		CookieExpireDays: cfg.CookieExpireDays,
		SecureCookie:     cfg.IsProd(),
		UploadPath:       cfg.FileUploadPath,
		MaxUpload:        cfg.MaxFileUpload,
		CORSOrigins:      cfg.CORSOrigins,
		TrustedProxies:   cfg.TrustedProxies,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("bootcamp-service listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}
