// Package inventory descuenta existencias dentro de la transacción de la venta.
// Usa siempre los repositorios del caller: no abre transacciones propias.
package inventory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

// Line cantidad pedida de un producto. Cada producto aparece una sola vez.
type Line struct {
	ProductID string
	Quantity  int64
}

// Consolidate suma las líneas repetidas del mismo producto conservando el orden
// de primera aparición. Rechaza cantidades no positivas, productos vacíos y
// sumas que no caben en int64.
func Consolidate(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, domain.Invalid("la venta no tiene líneas")
	}
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, domain.Invalid("línea sin producto")
		}
		if l.Quantity <= 0 {
			return nil, domain.Invalid("cantidad inválida para el producto %s", l.ProductID)
		}
		if i, ok := idx[l.ProductID]; ok {
			if out[i].Quantity > math.MaxInt64-l.Quantity {
				return nil, domain.Invalid("cantidad excesiva para el producto %s", l.ProductID)
			}
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

// LockAndCheck bloquea los productos en orden de id y verifica que todos existan,
// estén activos, pertenezcan a la empresa y tengan stock suficiente.
// No modifica nada: si falla, la venta se rechaza completa.
func LockAndCheck(ctx context.Context, productRepo repository.ProductRepository, companyID string, lines []Line) (map[string]*entity.Product, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	sort.Strings(ids)

	products, err := productRepo.LockForSale(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if !p.IsActive {
			return nil, domain.Invalid("el producto %s está inactivo", l.ProductID)
		}
		if p.StockQuantity < l.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: l.ProductID,
				Available: p.StockQuantity,
				Requested: l.Quantity,
			}
		}
	}
	return products, nil
}

// Apply descuenta el stock de cada línea (mismo orden de id que el bloqueo) y
// devuelve los productos que quedaron por debajo de su mínimo.
func Apply(ctx context.Context, productRepo repository.ProductRepository, products map[string]*entity.Product, lines []Line) ([]*entity.Product, error) {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	var low []*entity.Product
	for _, l := range sorted {
		if err := productRepo.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			return nil, err
		}
		p := products[l.ProductID]
		if p == nil {
			continue
		}
		p.StockQuantity -= l.Quantity
		if p.BelowMinimum() {
			low = append(low, p)
		}
	}
	return low, nil
}
