package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/fiscalbook"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC       *sales.PostSaleUseCase
	WithholdingUC *withholding.UseCase
	FiscalBookUC  *fiscalbook.UseCase
	JWTSecret     string
	Location      *time.Location // zona fiscal para leer fechas de la query; nil es UTC
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	// Todas las rutas de /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Sales
	saleHandler := NewSaleHandler(deps.SalesUC, loc, log)
	withholdingHandler := NewWithholdingHandler(deps.WithholdingUC, log)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/withholdings", withholdingHandler.Create)
	salesGroup.Get("/:id/withholdings", withholdingHandler.ListBySale)

	// Withholdings
	withholdings := api.Group("/withholdings")
	withholdings.Get("/islr.xml", withholdingHandler.ISLRRelation)
	withholdings.Get("/:id/pdf", withholdingHandler.PDF)

	// Fiscal books (summary antes de :kind)
	bookHandler := NewFiscalBookHandler(deps.FiscalBookUC, loc, log)
	books := api.Group("/fiscal-books")
	books.Get("/summary", bookHandler.Summary)
	books.Get("/:kind", bookHandler.Get)
	books.Get("/:kind/export", bookHandler.Export)
}
