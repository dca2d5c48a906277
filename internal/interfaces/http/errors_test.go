package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
)

func TestParseDate_ZonaFiscal(t *testing.T) {
	vet := time.FixedZone("VET", -4*3600)

	got, err := parseDate("2026-10-31", vet)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 4, 0, 0, 0, time.UTC), got.UTC())

	got, err = parseDate("", vet)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDate("31/10/2026", vet)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParsePeriod_MesPorDefecto(t *testing.T) {
	vet := time.FixedZone("VET", -4*3600)
	app := fiber.New()
	var from, to time.Time
	app.Get("/", func(c *fiber.Ctx) error {
		var err error
		from, to, err = parsePeriod(c, vet)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?from=2026-10-01", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2026, 10, 1, 4, 0, 0, 0, time.UTC), from.UTC())
	assert.Equal(t, time.Date(2026, 11, 1, 4, 0, 0, 0, time.UTC), to.UTC())

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
