package fiscal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-fiscal-api/internal/domain"
	"github.com/jhoicas/ventas-fiscal-api/internal/domain/entity"
)

// Porcentajes legales.
var (
	IVAWithholdingPercent       = decimal.NewFromInt(75) // 75 % del IVA facturado
	MunicipalWithholdingPercent = decimal.NewFromInt(1)
)

// ServiceType concepto de ISLR. Conjunto cerrado: un valor fuera de la tabla es un error
// de validación, nunca una tasa cero.
type ServiceType string

const (
	ServiceProfessionalFees   ServiceType = "professional_fees"
	ServiceContractorServices ServiceType = "contractor_services"
	ServiceRealEstateRent     ServiceType = "real_estate_rent"
	ServiceFreight            ServiceType = "freight"
	ServiceAdvertising        ServiceType = "advertising"
)

// ServiceRate tasa y código de concepto SENIAT para un tipo de servicio.
type ServiceRate struct {
	Percent     decimal.Decimal
	ConceptCode string
	Label       string
}

var serviceRates = map[ServiceType]ServiceRate{
	ServiceProfessionalFees:   {Percent: decimal.NewFromInt(3), ConceptCode: "002", Label: "Honorarios profesionales"},
	ServiceContractorServices: {Percent: decimal.NewFromInt(2), ConceptCode: "053", Label: "Servicios de contratistas"},
	ServiceRealEstateRent:     {Percent: decimal.NewFromInt(3), ConceptCode: "061", Label: "Arrendamiento de inmuebles"},
	ServiceFreight:            {Percent: decimal.NewFromInt(3), ConceptCode: "071", Label: "Fletes y transporte"},
	ServiceAdvertising:        {Percent: decimal.NewFromInt(3), ConceptCode: "083", Label: "Publicidad y propaganda"},
}

// ServiceTypes devuelve todos los conceptos soportados.
func ServiceTypes() []ServiceType {
	return []ServiceType{
		ServiceProfessionalFees,
		ServiceContractorServices,
		ServiceRealEstateRent,
		ServiceFreight,
		ServiceAdvertising,
	}
}

// ParseServiceType valida un concepto recibido como texto.
func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(s)
	if _, ok := serviceRates[st]; !ok {
		return "", domain.Invalid("tipo de servicio ISLR desconocido %q", s)
	}
	return st, nil
}

// Rate devuelve la tasa del concepto.
func (s ServiceType) Rate() (ServiceRate, bool) {
	r, ok := serviceRates[s]
	return r, ok
}

// CalculateIVA retención de IVA: solo clientes contribuyentes especiales.
// La base es el impuesto de la venta, no su subtotal.
func CalculateIVA(sale *entity.Sale, customer *entity.Customer, at time.Time) (*entity.Withholding, error) {
	if customer == nil || !customer.IsSpecialTaxpayer {
		return nil, domain.Invalid("el cliente no es contribuyente especial")
	}
	return build(sale, entity.WithholdingKindIVA, sale.TaxHard, IVAWithholdingPercent, "", at), nil
}

// CalculateISLR retención de ISLR sobre el subtotal según el concepto del servicio.
func CalculateISLR(sale *entity.Sale, serviceType ServiceType, at time.Time) (*entity.Withholding, error) {
	rate, ok := serviceType.Rate()
	if !ok {
		return nil, domain.Invalid("tipo de servicio ISLR desconocido %q", serviceType)
	}
	return build(sale, entity.WithholdingKindISLR, sale.SubtotalHard, rate.Percent, string(serviceType), at), nil
}

// CalculateMunicipal retención municipal (actividades económicas) del 1 % del subtotal.
func CalculateMunicipal(sale *entity.Sale, at time.Time) *entity.Withholding {
	return build(sale, entity.WithholdingKindMunicipal, sale.SubtotalHard, MunicipalWithholdingPercent, "", at)
}

func build(sale *entity.Sale, kind string, base, pct decimal.Decimal, serviceType string, at time.Time) *entity.Withholding {
	amount := Percent(base, pct)
	rate := sale.Rate.RateToLocal
	return &entity.Withholding{
		CompanyID:              sale.CompanyID,
		SaleID:                 sale.ID,
		CustomerID:             sale.CustomerID,
		Kind:                   kind,
		RatePercent:            pct,
		BaseAmountHard:         base,
		WithholdingAmountHard:  amount,
		BaseAmountLocal:        ToLocal(base, rate),
		WithholdingAmountLocal: ToLocal(amount, rate),
		RateToLocal:            rate,
		WithholdingDate:        at,
		ServiceType:            serviceType,
	}
}
