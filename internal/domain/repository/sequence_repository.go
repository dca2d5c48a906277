package repository

import "context"

// SequenceRepository contador por (empresa, clase de documento).
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero es 1).
	// Dentro de una transacción el valor solo queda consumido si ésta confirma.
	Next(ctx context.Context, companyID, documentClass string) (int64, error)
}
