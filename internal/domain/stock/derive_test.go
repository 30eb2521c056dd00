package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
)

func TestTotals_CajasExactas(t *testing.T) {
	totalCase, totalValue := stock.Totals(decimal.NewFromInt(240), 24, decimal.NewFromInt(1000))
	assert.True(t, totalCase.Equal(decimal.NewFromInt(10)), "240/24 debe ser 10 cajas")
	assert.True(t, totalValue.Equal(decimal.NewFromInt(10000)), "10 cajas * 1000 = 10000")
}

func TestTotals_CajasFraccionarias(t *testing.T) {
	totalCase, totalValue := stock.Totals(decimal.NewFromInt(190), 24, decimal.NewFromInt(1000))
	assert.Equal(t, "7.92", totalCase.Round(2).String())
	assert.Equal(t, "7916.67", totalValue.Round(2).String())
}

func TestTotals_CaseUnitsInvalido(t *testing.T) {
	totalCase, totalValue := stock.Totals(decimal.NewFromInt(10), 0, decimal.NewFromInt(5))
	assert.True(t, totalCase.IsZero())
	assert.True(t, totalValue.IsZero())
}

func TestShipmentUnits(t *testing.T) {
	units, value := stock.ShipmentUnits(decimal.NewFromInt(10), 24, decimal.NewFromInt(1000))
	assert.True(t, units.Equal(decimal.NewFromInt(240)))
	assert.True(t, value.Equal(decimal.NewFromInt(10000)))
}

func TestParseDay_Formatos(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "2024/03/05", "05/03/2024", "2024-03-05T17:45:00Z"} {
		got, err := stock.ParseDay(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "fecha %q", in)
	}
}

func TestParseDay_Invalida(t *testing.T) {
	_, err := stock.ParseDay("5 de marzo")
	assert.Error(t, err)
}
