package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/exchange"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/fiscalbook"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/redis"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/seniat"
	httpRouter "github.com/jhoicas/ventas-fiscal-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-fiscal-api/pkg/config"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// txRunner lo implementan postgres.TxRunner y memory.Store.
type txRunner interface {
	sales.TxRunner
	withholding.TxRunner
}

// storage repositorios de la aplicación, sea cual sea el backend.
type storage struct {
	tx            txRunner
	companies     repository.CompanyRepository
	customers     repository.CustomerRepository
	paymentMethod repository.PaymentMethodRepository
	rates         repository.ExchangeRateRepository
	sales         repository.SaleRepository
	withholdings  repository.WithholdingRepository
	books         repository.FiscalBookRepository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var rateCache exchange.Cache
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible; tasas sin caché")
		} else {
			defer client.Close()
			rateCache = infraredis.NewRateCache(client, cfg.Redis.RateTTL)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	rates := exchange.NewProvider(store.rates, rateCache, cfg.Sales.DefaultRate, log)
	salesUC := sales.NewPostSaleUseCase(
		store.tx, rates,
		store.companies, store.customers, store.paymentMethod, store.sales,
		sales.Config{
			HardCurrency:   cfg.Sales.HardCurrency,
			TaxRatePercent: cfg.Sales.TaxRatePercent,
			MaxRetries:     cfg.Sales.MaxRetries,
			RetryBaseDelay: cfg.Sales.RetryBaseDelay,
		},
		recorder, log,
	)
	withholdingUC := withholding.NewUseCase(
		store.tx, store.sales, store.customers, store.companies, store.withholdings,
		infrapdf.NewMarotoCertificateGenerator(), seniat.NewISLRXMLBuilder(),
		recorder, log,
	).WithLocation(cfg.App.Location)
	bookUC := fiscalbook.NewUseCase(store.books, store.withholdings, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:       salesUC,
		WithholdingUC: withholdingUC,
		FiscalBookUC:  bookUC,
		JWTSecret:     cfg.JWT.Secret,
		Location:      cfg.App.Location,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL o, con APP_STORAGE=memory, un store en memoria con datos de demostración.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		s := memory.NewSeeded(time.Now().UTC())
		log.Warn().Str("company_id", memory.DemoCompanyID).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			tx:            s,
			companies:     s.Companies(),
			customers:     s.Customers(),
			paymentMethod: s.PaymentMethods(),
			rates:         s.ExchangeRates(),
			sales:         s.Sales(),
			withholdings:  s.Withholdings(),
			books:         s.FiscalBooks(),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		tx:            postgres.NewTxRunner(pool),
		companies:     postgres.NewCompanyRepository(pool),
		customers:     postgres.NewCustomerRepository(pool),
		paymentMethod: postgres.NewPaymentMethodRepository(pool),
		rates:         postgres.NewExchangeRateRepository(pool),
		sales:         postgres.NewSaleRepository(pool),
		withholdings:  postgres.NewWithholdingRepository(pool),
		books:         postgres.NewFiscalBookRepository(pool),
		close:         pool.Close,
	}, nil
}
