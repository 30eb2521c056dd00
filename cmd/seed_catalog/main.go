// seed_catalog genera el script SQL que carga el catálogo de marcas de una iniciativa
// (initiative_brands) a partir de un CSV exportado desde la hoja de cálculo del cliente.
//
// Uso: go run ./cmd/seed_catalog <initiative_id> [ruta/catalogo.csv] > seed.sql
// Por defecto busca catalogo.csv en el directorio actual.
// Columnas: brandName, sku, caseUnitsNumber, pricePerCase (cualquier formato de encabezado).
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/pkg/tabular"
)

var catalogColumns = []string{"brandName", "sku", "caseUnitsNumber", "pricePerCase"}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_catalog <initiative_id> [catalogo.csv]")
		os.Exit(2)
	}
	initiativeID := strings.TrimSpace(os.Args[1])
	csvPath := "catalogo.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	table, err := tabular.NewDecoder().Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar CSV: %v\n", err)
		os.Exit(1)
	}

	brands, rejected := parseCatalog(initiativeID, table)
	for _, r := range rejected {
		fmt.Fprintln(os.Stderr, r)
	}
	if err := writeSeed(os.Stdout, brands); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d marcas, %d filas rechazadas\n", len(brands), len(rejected))
}

// parseCatalog convierte las filas en marcas. Las filas inválidas se devuelven como mensajes
// "línea N: motivo"; ante claves repetidas gana la última fila.
func parseCatalog(initiativeID string, table *tabular.Table) ([]entity.BrandConfig, []string) {
	if missing := table.Missing(catalogColumns...); len(missing) > 0 {
		return nil, []string{"faltan columnas: " + strings.Join(missing, ", ")}
	}

	byKey := make(map[string]entity.BrandConfig)
	var rejected []string
	for _, row := range table.Rows {
		name, sku := row.Get("brandName"), row.Get("sku")
		if name == "" || sku == "" {
			rejected = append(rejected, fmt.Sprintf("línea %d: brandName y sku son obligatorios", row.Line))
			continue
		}
		cu, err := strconv.Atoi(row.Get("caseUnitsNumber"))
		if err != nil || cu < 1 {
			rejected = append(rejected, fmt.Sprintf("línea %d: caseUnitsNumber inválido", row.Line))
			continue
		}
		price, err := decimal.NewFromString(row.Get("pricePerCase"))
		if err != nil || price.IsNegative() {
			rejected = append(rejected, fmt.Sprintf("línea %d: pricePerCase inválido", row.Line))
			continue
		}
		b := entity.BrandConfig{InitiativeID: initiativeID, Name: name, SKU: sku, CaseUnitsNumber: cu, PricePerCase: price}
		byKey[strings.ToLower(name)+"\x00"+strings.ToLower(sku)] = b
	}

	brands := make([]entity.BrandConfig, 0, len(byKey))
	for _, b := range byKey {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if brands[i].Name != brands[j].Name {
			return brands[i].Name < brands[j].Name
		}
		return brands[i].SKU < brands[j].SKU
	})
	return brands, rejected
}

// writeSeed escribe un INSERT idempotente: re-ejecutarlo actualiza empaque y precio.
func writeSeed(w io.Writer, brands []entity.BrandConfig) error {
	if len(brands) == 0 {
		_, err := io.WriteString(w, "-- Sin marcas para cargar\n")
		return err
	}
	var b strings.Builder
	b.WriteString("-- Catálogo de marcas (initiative_brands)\n")
	b.WriteString("INSERT INTO initiative_brands (initiative_id, brand_name, sku, case_units_number, price_per_case) VALUES\n")
	for i, br := range brands {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', %d, %s)", escapeSQL(br.InitiativeID), escapeSQL(br.Name), escapeSQL(br.SKU),
			br.CaseUnitsNumber, br.PricePerCase.String())
		if i < len(brands)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (initiative_id, brand_name, sku) DO UPDATE SET\n")
	b.WriteString("  case_units_number = EXCLUDED.case_units_number,\n")
	b.WriteString("  price_per_case = EXCLUDED.price_per_case,\n")
	b.WriteString("  updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
