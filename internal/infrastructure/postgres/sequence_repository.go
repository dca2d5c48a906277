package postgres

import (
	"context"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo correlativos por empresa y clase de documento.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Debe usarse con una tx: el upsert
// bloquea la fila del contador hasta el commit, así no hay huecos ni repetidos.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

func (r *SequenceRepo) Next(ctx context.Context, companyID, documentClass string) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, document_class, last_value, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (company_id, document_class)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID, documentClass).Scan(&n); err != nil {
		return 0, wrap("next sequence", err)
	}
	return n, nil
}
