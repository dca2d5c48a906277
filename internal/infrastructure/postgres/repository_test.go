package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// fakeQuerier responde con lo que el test programa y registra las consultas.
type fakeQuerier struct {
	execErr error
	rows    []fakeRow
	queries []string
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		default:
			return errors.New("tipo no soportado en fakeRow")
		}
	}
	return nil
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("no usado")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	r := f.rows[0]
	f.rows = f.rows[1:]
	return r
}

func (f *fakeQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func TestWithholdingRepo_CreateMapeaRestricciones(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"una_por_tipo", &pgconn.PgError{Code: "23505", ConstraintName: withholdingPerSaleConstraint}, domain.ErrAlreadyWithheld},
		{"numero_repetido", &pgconn.PgError{Code: "23505", ConstraintName: "withholdings_company_kind_number_key"}, domain.ErrDuplicate},
		{"serializacion", &pgconn.PgError{Code: "40001"}, domain.ErrTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewWithholdingRepository(&fakeQuerier{execErr: tc.err})
			err := repo.Create(context.Background(), &entity.Withholding{WithholdingNumber: "ISLR-000001"})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	q := &fakeQuerier{}
	w := &entity.Withholding{WithholdingNumber: "MUN-000001"}
	require.NoError(t, NewWithholdingRepository(q).Create(context.Background(), w))
	assert.False(t, w.CreatedAt.IsZero())
	require.Len(t, q.queries, 1)
}

func TestProductRepo_DecrementStock(t *testing.T) {
	ctx := context.Background()

	t.Run("cantidad_no_positiva", func(t *testing.T) {
		q := &fakeQuerier{}
		repo := NewProductRepository(q)
		for _, qty := range []int64{0, -3} {
			assert.ErrorIs(t, repo.DecrementStock(ctx, "p-1", qty), domain.ErrInvalidInput)
		}
		assert.Empty(t, q.queries, "no debe llegar a la base")
	})

	t.Run("descuenta", func(t *testing.T) {
		q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(4)}}}}
		require.NoError(t, NewProductRepository(q).DecrementStock(ctx, "p-1", 1))
		require.Len(t, q.queries, 1)
		assert.Contains(t, q.queries[0], "stock_quantity >= $2")
	})

	t.Run("stock_insuficiente", func(t *testing.T) {
		// el UPDATE condicional no devuelve fila; luego se lee lo disponible
		q := &fakeQuerier{rows: []fakeRow{{err: pgx.ErrNoRows}, {values: []any{int64(2)}}}}
		err := NewProductRepository(q).DecrementStock(ctx, "p-1", 5)

		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, int64(2), stockErr.Available)
		assert.Equal(t, int64(5), stockErr.Requested)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("lock_timeout", func(t *testing.T) {
		q := &fakeQuerier{rows: []fakeRow{{err: &pgconn.PgError{Code: "55P03"}}}}
		err := NewProductRepository(q).DecrementStock(ctx, "p-1", 1)
		assert.ErrorIs(t, err, domain.ErrTransient)
	})
}

func TestSequenceRepo_Next(t *testing.T) {
	ctx := context.Background()

	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(7)}}}}
	n, err := NewSequenceRepository(q).Next(ctx, "co-1", entity.DocumentClassSale)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Contains(t, q.queries[0], "ON CONFLICT (company_id, document_class)")
	assert.Contains(t, q.queries[0], "RETURNING last_value")

	q = &fakeQuerier{rows: []fakeRow{{err: &pgconn.PgError{Code: "40P01"}}}}
	_, err = NewSequenceRepository(q).Next(ctx, "co-1", entity.DocumentClassSale)
	assert.ErrorIs(t, err, domain.ErrTransient)
}
