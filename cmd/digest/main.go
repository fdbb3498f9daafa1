// digest ejecuta el resumen diario de alertas (pensado para cron).
//
// Uso: go run ./cmd/digest [company_id]
// Sin argumento procesa todas las empresas activas. Varias réplicas pueden correr
// a la vez: con REDIS_ADDR configurado solo una envía el digest de cada empresa.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/email"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/redislock"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "digest"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var locker alerts.Locker = memory.NewLocker(time.Now)
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.New(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: lock del digest solo en este proceso")
	}

	digest := alerts.NewDigestAggregator(
		postgres.NewCompanyRepository(pool),
		postgres.NewDigestRepository(pool),
		postgres.NewProductRepository(pool),
		postgres.NewStockRepository(pool),
		postgres.NewAuditLogRepository(pool),
		alerts.NewRecipientResolver(postgres.NewSectorRepository(pool)),
		email.NewMailer(cfg.Mail, log.Component("email")),
		locker,
		clock.Real{},
		cfg.Alerts.Location(),
		nil,
		log.Component("digest"),
	)

	var results []*alerts.DigestResult
	if len(os.Args) > 1 {
		var res *alerts.DigestResult
		res, err = digest.Run(ctx, os.Args[1])
		if res != nil {
			results = append(results, res)
		}
	} else {
		results, err = digest.RunAll(ctx)
	}

	for _, r := range results {
		log.Info().
			Str("company_id", r.CompanyID).
			Str("status", r.Status).
			Str("digest_date", r.DigestDate).
			Int("items", r.ItemCount).
			Int("at_risk", r.AtRiskCount).
			Msg("digest")
	}
	if err != nil {
		log.Error().Err(err).Msg("digest con errores")
		// os.Exit no ejecuta los defers.
		pool.Close()
		os.Exit(1)
	}
}
