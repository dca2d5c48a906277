package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("documento duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyWithheld   = errors.New("la venta ya tiene una retención de ese tipo")
	ErrInternal          = errors.New("error interno")

	// ErrTransient lo devuelve la capa de persistencia ante conflictos de concurrencia
	// (serialización, deadlock, lock no disponible). Es el único error que se reintenta.
	ErrTransient = errors.New("conflicto transitorio de almacenamiento")
)

// InsufficientStockError detalla la línea que no pudo despacharse.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Invalid envuelve ErrInvalidInput con el detalle del campo que falló.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
