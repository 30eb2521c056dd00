package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/pkg/tabular"
)

func decode(t *testing.T, body string) *tabular.Table {
	t.Helper()
	table, err := tabular.NewDecoder().Decode(strings.NewReader(body))
	require.NoError(t, err)
	return table
}

func TestParseCatalog(t *testing.T) {
	table := decode(t, "Brand Name;SKU;Case Units Number;Price per case\n"+
		"Cola;500ml;24;1000.50\n"+
		"Agua;1L;0;500\n"+
		"D'Leche;1L;12;-1\n"+
		";1L;12;300\n"+
		"Cola;500ml;12;900\n")

	brands, rejected := parseCatalog("ini-1", table)

	require.Len(t, brands, 1)
	assert.Equal(t, "Cola", brands[0].Name)
	assert.Equal(t, 12, brands[0].CaseUnitsNumber, "gana la última fila repetida")
	assert.Equal(t, "ini-1", brands[0].InitiativeID)
	require.Len(t, rejected, 3)
	assert.Contains(t, rejected[0], "línea 3")
	assert.Contains(t, rejected[1], "pricePerCase")
	assert.Contains(t, rejected[2], "obligatorios")
}

func TestParseCatalog_FaltanColumnas(t *testing.T) {
	brands, rejected := parseCatalog("ini-1", decode(t, "brandName,sku\nCola,500ml\n"))
	assert.Empty(t, brands)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0], "caseUnitsNumber")
}

func TestWriteSeed(t *testing.T) {
	brands, _ := parseCatalog("ini-1", decode(t, "brandName,sku,caseUnitsNumber,pricePerCase\n"+
		"D'Leche,1L,12,300\nAgua,600ml,24,1200.5\n"))

	var out strings.Builder
	require.NoError(t, writeSeed(&out, brands))
	sql := out.String()

	assert.Contains(t, sql, "('ini-1', 'Agua', '600ml', 24, 1200.5),\n  ('ini-1', 'D''Leche', '1L', 12, 300)\n")
	assert.Contains(t, sql, "ON CONFLICT (initiative_id, brand_name, sku) DO UPDATE SET")

	out.Reset()
	require.NoError(t, writeSeed(&out, nil))
	assert.Equal(t, "-- Sin marcas para cargar\n", out.String())
}
