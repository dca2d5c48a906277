package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
)

// Códigos SQLSTATE que interpreta la capa de persistencia.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// isUniqueConstraint como isUniqueViolation pero solo para el constraint indicado.
func isUniqueConstraint(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

// isTransient conflictos de concurrencia que desaparecen al reintentar la transacción.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// wrap traduce errores de PostgreSQL a errores de dominio. Un id mal formado (22P02)
// se reporta como inexistente: para el cliente no hay diferencia.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isNoRows(err), hasCode(err, codeInvalidText):
		return domain.ErrNotFound
	case isTransient(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
