package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	appanalytics "github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	CompanyUC        *usecase.CompanyUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	CatalogUC        *usecase.CatalogUseCase
	AuditUC          *usecase.AuditUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	StockQuery       *inventory.StockQueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	DashboardUC      *appanalytics.DashboardUseCase
	ReportUC         *appanalytics.ReportUseCase
	Dispatcher       *alerts.Dispatcher
	Digest           *alerts.DigestAggregator
	Gatherer         prometheus.Gatherer // nil: sin /metrics
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	operators := RequireRole(entity.RoleAdmin, entity.RoleAlmoxarife)

	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.UserUC)
	company := protected.Group("/company")
	company.Get("/", companyHandler.Get)
	company.Put("/", adminOnly, companyHandler.Update)
	company.Get("/alert-settings", companyHandler.GetAlertSettings)
	company.Put("/alert-settings", adminOnly, companyHandler.UpdateAlertSettings)

	users := protected.Group("/users")
	users.Get("/me", companyHandler.Me)
	users.Get("/", adminOnly, companyHandler.ListUsers)
	users.Post("/", adminOnly, authHandler.Register)

	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", operators, productHandler.Create)
	products.Put("/:id", operators, productHandler.Update)
	products.Delete("/:id", operators, productHandler.Deactivate)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	sectors := protected.Group("/sectors")
	sectors.Get("/", catalogHandler.ListSectors)
	sectors.Get("/:id", catalogHandler.GetSector)
	sectors.Post("/", operators, catalogHandler.CreateSector)
	sectors.Put("/:id", operators, catalogHandler.UpdateSector)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", catalogHandler.ListSuppliers)
	suppliers.Post("/", operators, catalogHandler.CreateSupplier)
	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", operators, catalogHandler.CreateCategory)

	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockQuery, deps.Replenishment)
	movements := protected.Group("/movements")
	movements.Post("/", operators, inventoryHandler.RegisterMovement)
	movements.Get("/", inventoryHandler.ListMovements)
	stock := protected.Group("/stock")
	stock.Get("/balances", inventoryHandler.GetBalances)
	stock.Get("/balances/:product_id", inventoryHandler.GetBalance)
	stock.Get("/reconcile", operators, inventoryHandler.Reconcile)
	stock.Get("/replenishment", inventoryHandler.GetReplenishmentList)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
	reports := protected.Group("/reports")
	reports.Get("/monthly", dashboardHandler.GetMonthlyData)
	reports.Get("/narrative", dashboardHandler.GetNarrative)
	reports.Get("/stock.pdf", dashboardHandler.GetStockPositionPDF)

	alertsHandler := NewAlertsHandler(deps.Dispatcher, deps.Digest, deps.AuditUC)
	alertsGroup := protected.Group("/alerts")
	alertsGroup.Post("/ignore", adminOnly, alertsHandler.Ignore)
	alertsGroup.Post("/digest/run", adminOnly, alertsHandler.RunDigest)
	protected.Get("/audit", adminOnly, alertsHandler.ListAudit)
}
