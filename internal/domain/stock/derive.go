// Package stock contiene los cálculos derivados del ledger de stock (servicio de dominio).
package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de día calendario usado en entradas y salidas.
const DateLayout = "2006-01-02"

// Totals calcula las cajas y el valor correspondientes a una cantidad de unidades.
// TotalCase = unidades / CaseUnitsNumber; TotalValue = TotalCase * PricePerCase.
func Totals(units decimal.Decimal, caseUnitsNumber int, pricePerCase decimal.Decimal) (totalCase, totalValue decimal.Decimal) {
	if caseUnitsNumber < 1 {
		return decimal.Zero, decimal.Zero
	}
	totalCase = units.Div(decimal.NewFromInt(int64(caseUnitsNumber)))
	return totalCase, totalCase.Mul(pricePerCase)
}

// ShipmentUnits deriva las unidades y el valor de un envío expresado en cajas.
func ShipmentUnits(totalCase decimal.Decimal, caseUnitsNumber int, pricePerCase decimal.Decimal) (unitsShipped, totalValue decimal.Decimal) {
	unitsShipped = totalCase.Mul(decimal.NewFromInt(int64(caseUnitsNumber)))
	return unitsShipped, totalCase.Mul(pricePerCase)
}

// Day trunca un instante al día calendario en UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay interpreta una fecha "YYYY-MM-DD" (también acepta RFC3339 y DD/MM/YYYY) y la trunca al día.
func ParseDay(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{DateLayout, time.RFC3339, "2006/01/02", "02/01/2006"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Day(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
