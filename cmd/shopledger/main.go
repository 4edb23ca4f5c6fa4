package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/shopledger/internal/auth"
	"github.com/iurnickita/shopledger/internal/config"
	"github.com/iurnickita/shopledger/internal/handler"
	"github.com/iurnickita/shopledger/internal/logger"
	"github.com/iurnickita/shopledger/internal/metrics"
	"github.com/iurnickita/shopledger/internal/service"
	"github.com/iurnickita/shopledger/internal/service/smsclient"
	"github.com/iurnickita/shopledger/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	// суммы в JSON числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := metrics.New()
	notifier := smsclient.NewSMSClient(cfg.Service.SMSAddr, cfg.Service.SMSToken)

	auth := auth.NewAuth(cfg.Auth, store)
	service, err := service.NewService(cfg.Service, store, notifier, metrics, zaplog)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go service.Run(ctx)

	zaplog.Info("shopledger starting",
		zap.Int("min_lead_days", cfg.Service.MinLeadDays),
		zap.Duration("remind_interval", cfg.Service.RemindInterval),
	)
	return handler.Serve(ctx, cfg.Handler, auth, service, metrics, zaplog)
}
