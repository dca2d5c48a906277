package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/fiscalbook"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/ventas-fiscal-api/pkg/logger"
)

// FiscalBookHandler libros de compras y ventas (protegido).
type FiscalBookHandler struct {
	uc  *fiscalbook.UseCase
	loc *time.Location
	log *logger.Logger
}

// NewFiscalBookHandler construye el handler. Los periodos se cortan a medianoche en loc.
func NewFiscalBookHandler(uc *fiscalbook.UseCase, loc *time.Location, log *logger.Logger) *FiscalBookHandler {
	return &FiscalBookHandler{uc: uc, loc: loc, log: log}
}

// Get libro agregado del periodo.
// GET /api/fiscal-books/:kind?from=&to=
func (h *FiscalBookHandler) Get(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Aggregate(c.UserContext(), GetCompanyID(c), c.Params("kind"), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Export archivo de texto de ancho fijo.
// GET /api/fiscal-books/:kind/export?from=&to=&charset=utf-8|iso-8859-1
func (h *FiscalBookHandler) Export(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	charset := strings.ToLower(c.Query("charset", fiscal.CharsetUTF8))
	out, filename, err := h.uc.Export(c.UserContext(), GetCompanyID(c), c.Params("kind"), from, to, charset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	contentCharset := fiscal.CharsetUTF8
	if charset == fiscal.CharsetLatin1 || strings.HasPrefix(charset, "latin") {
		contentCharset = fiscal.CharsetLatin1
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset="+contentCharset)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(out)
}

// Summary débito, crédito e IVA a pagar del periodo, más retenciones emitidas.
// GET /api/fiscal-books/summary?from=&to=
func (h *FiscalBookHandler) Summary(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Summary(c.UserContext(), GetCompanyID(c), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
