package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BrandConfig es la configuración de empaque y precio de una marca/SKU dentro de una iniciativa.
// El ledger la consume como snapshot de solo lectura.
type BrandConfig struct {
	InitiativeID    string
	Name            string
	SKU             string
	CaseUnitsNumber int             // unidades por caja, >= 1
	PricePerCase    decimal.Decimal // precio por caja, >= 0
}

// Valid indica si los datos de empaque/precio permiten derivar totales.
func (b BrandConfig) Valid() bool {
	return b.CaseUnitsNumber >= 1 && !b.PricePerCase.IsNegative()
}

// FindBrand busca (name, sku) en un snapshot del catálogo. La comparación ignora mayúsculas y espacios externos.
func FindBrand(catalog []BrandConfig, name, sku string) (BrandConfig, bool) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	for _, b := range catalog {
		if strings.EqualFold(b.Name, name) && strings.EqualFold(b.SKU, sku) {
			return b, true
		}
	}
	return BrandConfig{}, false
}
