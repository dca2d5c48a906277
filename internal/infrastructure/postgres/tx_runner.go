package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/repository"
)

// Ensure TxRunner implements sales.TxRunner and withholding.TxRunner.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ withholding.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale inicia una transacción con repos de productos, ventas y secuencias y hace Commit o Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewSaleRepository(tx), NewSequenceRepository(tx))
	})
}

// RunWithholding inicia una transacción con repos de retenciones y secuencias.
func (r *TxRunner) RunWithholding(ctx context.Context, fn func(
	withholdingRepo repository.WithholdingRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewWithholdingRepository(tx), NewSequenceRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}
