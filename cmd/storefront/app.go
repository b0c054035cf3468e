package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"storefront/config"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/service"
	"storefront/internal/storage"
)

// app is everything one CLI invocation or one server process needs.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	out    io.Writer
	hub    *events.Hub
	client *storage.APIClient

	auth    *service.AuthService
	cart    *service.CartService
	catalog *service.CatalogService
	admin   *service.PaymentAdminService
	instr   service.InstructionProvider

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env, cfg.LogLevel, os.Stderr).With("profile", cfg.Profile)

	a := &app{cfg: cfg, log: log, out: out, hub: events.NewHub()}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.client = storage.NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, log)
	a.auth = service.NewAuthService(store, a.client, a.hub, log)
	a.cart = service.NewCartService(a.client, a.client, a.auth, a.hub, log)
	a.closers = append(a.closers, a.cart.Close)
	a.catalog = service.NewCatalogService(a.client, a.client, a.auth)
	a.admin = service.NewPaymentAdminService(a.client, a.auth)
	a.instr = service.InstructionProvider{
		QR:           service.DefaultQRGenerator{Size: 256},
		QRISPayload:  cfg.QRISPayload,
		MerchantName: cfg.MerchantName,
		Bank: service.BankAccount{
			BankName:      cfg.BankName,
			AccountNumber: cfg.BankAccount,
			AccountHolder: cfg.AccountHolder,
		},
	}

	a.closers = append(a.closers,
		a.hub.Subscribe(events.LoginRequired, func(events.Signal) {
			fmt.Fprintln(os.Stderr, "→ please sign in: storefront login --email <email>")
		}),
		a.hub.Subscribe(events.OrderPlaced, func(signal events.Signal) {
			fmt.Fprintf(os.Stderr, "→ next: storefront pay %d --proof <image>\n", signal.OrderID)
		}),
	)

	if cfg.SignalsEnabled() {
		writer := config.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic)
		publisher := storage.NewKafkaSignalPublisher(writer, cfg.InstanceID, log)
		a.closers = append(a.closers, publisher.Attach(a.hub), func() { writer.Close() })
	}

	// An expired session is dropped before any command uses it.
	a.auth.CheckExpiry(ctx)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (service.KeyValueStore, error) {
	switch a.cfg.Store {
	case config.StoreRedis:
		client, err := config.InitRedis(ctx, a.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })
		return storage.NewRedisStore(client, "storefront:"+a.cfg.Profile, a.cfg.RedisTTL), nil
	case config.StoreMemory:
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewFileStore(a.cfg.SessionFile), nil
	}
}

// startConsumer replays signals from other instances until ctx ends.
func (a *app) startConsumer(ctx context.Context) {
	if !a.cfg.SignalsEnabled() {
		return
	}
	reader := config.NewKafkaReader(a.cfg.KafkaBroker, a.cfg.KafkaTopic, a.cfg.KafkaGroup)
	a.closers = append(a.closers, func() { reader.Close() })
	consumer := storage.NewKafkaSignalConsumer(reader, a.hub, a.cfg.InstanceID, a.log)
	go consumer.Start(ctx)
}

func (a *app) newFlow(orderID int) *service.ConfirmationFlow {
	return service.NewConfirmationFlow(orderID, a.client, a.auth, a.instr, a.log)
}

// Close releases everything newApp opened. Calling it again does nothing.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
