package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// WithholdingHandler comprobantes de retención (protegido).
type WithholdingHandler struct {
	uc  *withholding.UseCase
	log *logger.Logger
}

// NewWithholdingHandler construye el handler.
func NewWithholdingHandler(uc *withholding.UseCase, log *logger.Logger) *WithholdingHandler {
	return &WithholdingHandler{uc: uc, log: log}
}

// Create emite un comprobante para la venta.
// POST /api/sales/:id/withholdings
func (h *WithholdingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWithholdingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	w, err := h.uc.Generate(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// ListBySale comprobantes emitidos para una venta.
// GET /api/sales/:id/withholdings
func (h *WithholdingHandler) ListBySale(c *fiber.Ctx) error {
	list, err := h.uc.ListBySale(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// PDF descarga el comprobante.
// GET /api/withholdings/:id/pdf
func (h *WithholdingHandler) PDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.RenderCertificate(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

// ISLRRelation relación mensual de retenciones de ISLR en XML.
// GET /api/withholdings/islr.xml?period=YYYYMM
func (h *WithholdingHandler) ISLRRelation(c *fiber.Ctx) error {
	period := c.Query("period")
	out, err := h.uc.ExportISLRXML(c.UserContext(), GetCompanyID(c), period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="islr-%s.xml"`, period))
	return c.Send(out)
}
