package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/cart-api/config"
	"github.com/niksmo/cart-api/internal/adapter/httphandler"
	"github.com/niksmo/cart-api/internal/adapter/kafka"
	"github.com/niksmo/cart-api/internal/adapter/storage"
	"github.com/niksmo/cart-api/internal/core/port"
	"github.com/niksmo/cart-api/internal/core/service"
	"github.com/niksmo/cart-api/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type storages struct {
	kv    storage.RedisKV
	carts storage.CartRepository
	sqldb *storage.SQLDB
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	storages   storages
	catalog    service.Catalog
	orders     *kafka.OrdersProducer
	service    service.CartService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	httphandler.NumericMoney()
	app.initStorages()
	app.initCatalog()
	app.initOrdersProducer()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorages() {
	const op = "App.initStorages"
	log := slog.With("op", op)

	rc := app.cfg.Redis
	kv, err := storage.NewRedisKV(storage.RedisConfig{
		URL:         rc.URL,
		Addr:        rc.Addr,
		Username:    rc.Username,
		Password:    rc.Password,
		DB:          rc.DB,
		TLS:         rc.TLS,
		TLSCA:       rc.TLSCA,
		TLSCert:     rc.TLSCert,
		TLSKey:      rc.TLSKey,
		DialTimeout: rc.DialTimeout,
		IOTimeout:   rc.IOTimeout,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	// the service starts without the store, requests answer 503 until it is up
	if err := kv.Ping(app.ctx); err != nil {
		log.Error("redis is unreachable", "err", err)
	} else {
		log.Info("redis is reachable")
	}

	app.storages.kv = kv
	app.storages.carts = storage.NewCartRepository(kv)
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"
	log := slog.With("op", op)

	if app.cfg.SQLDB == "" {
		app.catalog = service.NewCatalog(service.DefaultProducts())
		log.Info("built-in catalog loaded")
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.storages.sqldb = &sqldb

	products, err := storage.NewProductsRepository(sqldb).ReadProducts(app.ctx)
	if err != nil {
		app.fallDown(op, err)
	}

	app.catalog = service.NewCatalog(products)
	log.Info("catalog loaded from sql database", "products", len(products))
}

func (app *App) initOrdersProducer() {
	const op = "App.initOrdersProducer"

	if !app.cfg.Broker.Enabled() {
		slog.Info("order events are disabled", "op", op)
		return
	}

	ctx := app.ctx
	brokerCfg := app.cfg.Broker
	topic := brokerCfg.Topics.OrdersConfirmed

	srClient, err := sr.NewClient(sr.URLs(brokerCfg.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeOrderConfirmedV1(
		ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	orders, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(ctx, brokerCfg.SeedBrokers, topic),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.orders = &orders
}

func (app *App) initCoreService() {
	var orders port.OrdersProducer
	if app.orders != nil {
		orders = app.orders
	}
	app.service = service.NewCartService(app.catalog, app.storages.carts, orders)
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewRouter(
		app.service,
		app.service,
		app.storages.kv,
		app.cfg.CORS.AllowedOrigins,
	)
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.orders != nil {
		app.orders.Close()
	}
	if app.storages.sqldb != nil {
		app.storages.sqldb.Close()
	}
	app.storages.kv.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
