package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc  *sales.PostSaleUseCase
	loc *time.Location
	log *logger.Logger
}

// NewSaleHandler construye el handler. Las fechas de la query se leen en loc.
func NewSaleHandler(uc *sales.PostSaleUseCase, loc *time.Location, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, loc: loc, log: log}
}

// Create contabiliza una venta: descuenta stock, numera y congela la tasa.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.PostSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sale, err := h.uc.PostSale(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetByID obtiene el detalle completo de una venta.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sale)
}

// List ventas por rango de fechas con paginación.
// GET /api/sales?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	from, err := parseDate(c.Query("from"), h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	to, err := parseDate(c.Query("to"), h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ListSales(c.UserContext(), GetCompanyID(c), from, to, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
