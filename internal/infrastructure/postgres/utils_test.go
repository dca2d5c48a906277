package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
)

func TestWrap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no_rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"invalid_uuid", &pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
		{"serialization_failure", &pgconn.PgError{Code: "40001"}, domain.ErrTransient},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrTransient},
		{"lock_timeout", &pgconn.PgError{Code: "55P03"}, domain.ErrTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, wrap("op", tc.err), tc.want)
		})
	}

	assert.NoError(t, wrap("op", nil))
	other := wrap("op", errors.New("boom"))
	assert.False(t, errors.Is(other, domain.ErrTransient))
	assert.False(t, errors.Is(other, domain.ErrNotFound))
}

func TestUniqueConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: withholdingPerSaleConstraint}
	assert.True(t, isUniqueViolation(err))
	assert.True(t, isUniqueConstraint(err, withholdingPerSaleConstraint))
	assert.False(t, isUniqueConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "otro"}, withholdingPerSaleConstraint))
	assert.False(t, isTransient(err))
}
