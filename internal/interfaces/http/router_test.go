package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-fiscal-api/internal/application/dto"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/exchange"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/fiscalbook"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/sales"
	"github.com/jhoicas/ventas-fiscal-api/internal/application/withholding"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-fiscal-api/internal/infrastructure/seniat"
	apphttp "github.com/jhoicas/ventas-fiscal-api/internal/interfaces/http"
)

func newTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded(time.Now().UTC())
	rates := exchange.NewProvider(store.ExchangeRates(), nil, decimal.NewFromInt(1), nil)
	salesUC := sales.NewPostSaleUseCase(store, rates,
		store.Companies(), store.Customers(), store.PaymentMethods(), store.Sales(),
		sales.Config{HardCurrency: "USD", TaxRatePercent: decimal.NewFromInt(16), MaxRetries: 2, RetryBaseDelay: time.Millisecond},
		nil, nil)
	withholdingUC := withholding.NewUseCase(store, store.Sales(), store.Customers(), store.Companies(), store.Withholdings(),
		pdf.NewMarotoCertificateGenerator(), seniat.NewISLRXMLBuilder(), nil, nil)
	bookUC := fiscalbook.NewUseCase(store.FiscalBooks(), store.Withholdings(), nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SalesUC:       salesUC,
		WithholdingUC: withholdingUC,
		FiscalBookUC:  bookUC,
		JWTSecret:     testJWTSecret,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func laptopSale(customerID string, qty int64) dto.PostSaleRequest {
	return dto.PostSaleRequest{
		CustomerID:      customerID,
		PaymentMethodID: memory.DemoPaymentMethodID,
		Items:           []dto.PostSaleLineRequest{{ProductID: memory.DemoProductLaptopID, Quantity: qty}},
	}
}

func TestAPI_SinToken(t *testing.T) {
	app, _ := newTestApp(t)
	resp := call(t, app, http.MethodGet, "/api/sales", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_VentaConCuerpoJSON(t *testing.T) {
	app, store := newTestApp(t)
	auth := bearer(t, memory.DemoCompanyID)

	body := map[string]any{
		"customer_id":       memory.DemoSpecialCustomer,
		"payment_method_id": memory.DemoPaymentMethodID,
		"items": []map[string]any{
			{"product_id": memory.DemoProductLaptopID, "quantity": 2},
		},
	}
	resp := call(t, app, http.MethodPost, "/api/sales", auth, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, int64(2), sale.Items[0].Quantity)

	p, err := store.Products().GetByID(context.Background(), memory.DemoCompanyID, memory.DemoProductLaptopID)
	require.NoError(t, err)
	assert.Equal(t, int64(13), p.StockQuantity)

	// sin items la venta se rechaza
	delete(body, "items")
	resp = call(t, app, http.MethodPost, "/api/sales", auth, body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_VentaYRetencion(t *testing.T) {
	app, _ := newTestApp(t)
	auth := bearer(t, memory.DemoCompanyID)

	resp := call(t, app, http.MethodPost, "/api/sales", auth, laptopSale(memory.DemoSpecialCustomer, 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "VEN-000001", sale.SaleNumber)
	assert.Equal(t, "FAC-000001", sale.InvoiceNumber)
	assert.Equal(t, "522.00", sale.TotalHard.StringFixed(2))
	assert.Equal(t, "16425.00", sale.SubtotalLocal.StringFixed(2))
	require.Len(t, sale.Items, 1)

	resp = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, sale.ID, got.ID)

	resp = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/withholdings", auth, dto.CreateWithholdingRequest{Kind: "iva"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w := decode[dto.WithholdingResponse](t, resp)
	assert.Equal(t, "54.00", w.WithholdingAmountHard.StringFixed(2))

	resp = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/withholdings", auth, dto.CreateWithholdingRequest{Kind: "iva"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/sales/"+sale.ID+"/withholdings", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.WithholdingResponse](t, resp)
	assert.Len(t, list, 1)

	resp = call(t, app, http.MethodGet, "/api/withholdings/"+w.ID+"/pdf", auth, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestAPI_StockInsuficiente(t *testing.T) {
	app, _ := newTestApp(t)
	resp := call(t, app, http.MethodPost, "/api/sales", bearer(t, memory.DemoCompanyID), laptopSale(memory.DemoCustomerID, 16))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, memory.DemoProductLaptopID, body.Details["product_id"])
	assert.EqualValues(t, 15, body.Details["available"])
	assert.EqualValues(t, 16, body.Details["requested"])
}

func TestAPI_OtraEmpresaNoVeLaVenta(t *testing.T) {
	app, _ := newTestApp(t)
	resp := call(t, app, http.MethodPost, "/api/sales", bearer(t, memory.DemoCompanyID), laptopSale(memory.DemoCustomerID, 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)

	resp = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, bearer(t, "otra-empresa"), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_RetencionValidaciones(t *testing.T) {
	app, _ := newTestApp(t)
	auth := bearer(t, memory.DemoCompanyID)
	resp := call(t, app, http.MethodPost, "/api/sales", auth, laptopSale(memory.DemoCustomerID, 1))
	sale := decode[dto.SaleResponse](t, resp)

	// cliente ordinario: no aplica IVA retenido
	resp = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/withholdings", auth, dto.CreateWithholdingRequest{Kind: "iva"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/withholdings", auth, dto.CreateWithholdingRequest{Kind: "islr", ServiceType: "freight"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w := decode[dto.WithholdingResponse](t, resp)
	assert.Equal(t, "ISLR-000001", w.WithholdingNumber)

	period := time.Now().UTC().Format("200601")
	resp = call(t, app, http.MethodGet, "/api/withholdings/islr.xml?period="+period, auth, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "<CodigoConcepto>071</CodigoConcepto>")

	resp = call(t, app, http.MethodGet, "/api/withholdings/islr.xml?period=2026-10", auth, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LibrosFiscales(t *testing.T) {
	app, _ := newTestApp(t)
	auth := bearer(t, memory.DemoCompanyID)
	resp := call(t, app, http.MethodPost, "/api/sales", auth, laptopSale(memory.DemoCustomerID, 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	from := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	to := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	q := "?from=" + from + "&to=" + to

	resp = call(t, app, http.MethodGet, "/api/fiscal-books/sales"+q, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	book := decode[dto.FiscalBookResponse](t, resp)
	assert.Equal(t, 1, book.Totals.Count)
	assert.Equal(t, "72.00", book.Totals.Tax.StringFixed(2))

	resp = call(t, app, http.MethodGet, "/api/fiscal-books/summary"+q, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[dto.FiscalSummaryResponse](t, resp)
	assert.Equal(t, 1, sum.Purchases.Count)
	assert.Equal(t, "-88.00", sum.IVAPayable.StringFixed(2))

	resp = call(t, app, http.MethodGet, "/api/fiscal-books/purchases/export"+q+"&charset=iso-8859-1", auth, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=iso-8859-1", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "libro-purchases-")
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(raw), "LIBRO DE COMPRAS\r\n"))

	resp = call(t, app, http.MethodGet, "/api/fiscal-books/diario"+q, auth, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/fiscal-books/sales?from=01-10-2026", auth, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
