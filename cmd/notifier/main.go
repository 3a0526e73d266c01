// Command notifier consumes mail.send events and delivers them over SMTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/config"
	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/mail"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.IsProd())
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, queue.KeyMailSend, logger)
	if err != nil {
		logger.Fatal("rabbit consumer init failed", zap.Error(err))
	}
	defer cons.Close() //nolint:errcheck

	var sender mail.Sender = &mail.SMTPSender{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, mail is logged only")
		sender = mail.LogSender{Log: logger}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := cfg.NotifyConcurrency
	if workers < 1 {
		workers = 1
	}
	logger.Info("notifier up",
		zap.String("exchange", cfg.RabbitExchange),
		zap.String("queue", cfg.RabbitQueue),
		zap.String("key", queue.KeyMailSend),
		zap.Int("workers", workers),
	)

	if err := cons.Consume(ctx, workers, mail.Deliver(ctx, sender, logger)); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", zap.Error(err))
		os.Exit(1)
	}
}
