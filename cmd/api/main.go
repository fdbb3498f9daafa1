package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	appanalytics "github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/ports"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	infraai "github.com/jhoicas/almoxarifado-api/internal/infrastructure/ai"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/email"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/almoxarifado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
	"github.com/jhoicas/almoxarifado-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET no configurado")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	clk := clock.Real{}
	loc := cfg.Alerts.Location()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	sectorRepo := postgres.NewSectorRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	alertStateRepo := postgres.NewAlertStateRepository(pool)
	digestRepo := postgres.NewDigestRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Lock del digest: Redis si está configurado; si no, lock en memoria (una sola instancia).
	var locker alerts.Locker = memory.NewLocker(time.Now)
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.New(rdb)
	}

	mailer := email.NewMailer(cfg.Mail, log.Component("email"))
	recipients := alerts.NewRecipientResolver(sectorRepo)
	dispatcher := alerts.NewDispatcher(
		alertStateRepo, digestRepo, auditRepo, productRepo,
		recipients, mailer, clk,
		alerts.Config{Cooldown: cfg.Alerts.Cooldown, SilenceWindow: cfg.Alerts.SilenceWindow},
		m, log.Component("alerts"),
	)
	evaluator := alert.NewEvaluator(alert.Config{
		CriticalImpact:    cfg.Alerts.CriticalImpact,
		ConsumptionWindow: cfg.Alerts.ConsumptionWindow,
	})
	alertSvc := alerts.NewService(companyRepo, movementRepo, evaluator, dispatcher, clk)
	digest := alerts.NewDigestAggregator(
		companyRepo, digestRepo, productRepo, stockRepo, auditRepo,
		recipients, mailer, locker, clk, loc, m, log.Component("digest"),
	)

	companyUC := usecase.NewCompanyUseCase(companyRepo, sectorRepo, auditRepo, clk)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, companyUC, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, clk)
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		txRunner, productRepo, sectorRepo, supplierRepo, alertSvc, clk, m, log.Component("inventory"),
	)

	// Sin API key no hay relatório narrativo (503).
	var llm ports.LLMService
	if cfg.AI.AnthropicAPIKey != "" {
		llm = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Aura Almoxarifado API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		CompanyUC:        companyUC,
		UserUC:           usecase.NewUserUseCase(userRepo),
		ProductUC:        usecase.NewProductUseCase(productRepo, categoryRepo, supplierRepo, auditRepo, txRunner, clk),
		CatalogUC:        usecase.NewCatalogUseCase(sectorRepo, supplierRepo, categoryRepo, clk),
		AuditUC:          usecase.NewAuditUseCase(auditRepo),
		RegisterMovement: registerMovementUC,
		StockQuery:       inventory.NewStockQueryUseCase(stockRepo, movementRepo, productRepo),
		Replenishment:    inventory.NewReplenishmentUseCase(productRepo, stockRepo, analyticsRepo, clk),
		DashboardUC:      appanalytics.NewDashboardUseCase(analyticsRepo, productRepo, stockRepo, clk, loc),
		ReportUC: appanalytics.NewReportUseCase(
			companyRepo, analyticsRepo, productRepo, stockRepo, llm, infrapdf.NewMarotoPDFGenerator(), clk, loc,
		),
		Dispatcher: dispatcher,
		Digest:     digest,
		Gatherer:   registry,
		JWTSecret:  cfg.JWT.Secret,
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
