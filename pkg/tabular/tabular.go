// Package tabular decodifica archivos tabulares tipo CSV (coma, punto y coma o tabulador) a filas
// indexadas por encabezado normalizado. Maneja BOM (UTF-8/UTF-16) y archivos Windows-1252 exportados
// desde hojas de cálculo.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmpty el archivo no tiene encabezado.
var ErrEmpty = errors.New("tabular: archivo vacío")

// contentTypes tipos MIME aceptados como tabulares.
var contentTypes = map[string]struct{}{
	"text/csv":                  {},
	"application/csv":           {},
	"text/plain":                {},
	"text/tab-separated-values": {},
	"application/vnd.ms-excel":  {}, // navegadores en Windows envían este tipo para .csv
}

var extensions = map[string]struct{}{".csv": {}, ".tsv": {}, ".txt": {}}

// IsTabular indica si el Content-Type (o, si es genérico, la extensión del archivo) corresponde a un
// formato tabular soportado.
func IsTabular(contentType, fileName string) bool {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if _, ok := contentTypes[mediaType]; ok {
		return true
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		_, ok := extensions[strings.ToLower(filepath.Ext(fileName))]
		return ok
	}
	return false
}

// Row una fila de datos. Line es el número de línea en el archivo (1 = encabezado).
type Row struct {
	Line   int
	Values map[string]string
}

// Get devuelve el valor de la columna (nombre en cualquier formato) sin espacios externos.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[NormalizeHeader(column)])
}

// Table resultado de decodificar un archivo.
type Table struct {
	Header []string // encabezados normalizados, en orden
	Rows   []Row
}

// Missing devuelve las columnas requeridas que no están en el encabezado.
func (t *Table) Missing(columns ...string) []string {
	present := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, c := range columns {
		if _, ok := present[NormalizeHeader(c)]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// NormalizeHeader pasa a minúsculas y elimina todo lo que no sea letra o dígito:
// "brandName", "brand_name" y "Brand Name" quedan como "brandname".
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decoder decodifica archivos tabulares.
type Decoder struct {
	// MaxRows límite de filas de datos; 0 = sin límite.
	MaxRows int
}

// NewDecoder construye un decoder sin límite de filas.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode lee todo el contenido y lo convierte en una tabla. Las filas completamente vacías se ignoran.
func (d *Decoder) Decode(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: leer archivo: %w", err)
	}
	data, err := toUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("tabular: decodificar texto: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: leer encabezado: %w", err)
	}
	t := &Table{Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = NormalizeHeader(h)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		row := Row{Line: line, Values: make(map[string]string, len(t.Header))}
		for i, h := range t.Header {
			if i < len(record) && h != "" {
				row.Values[h] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
		if d.MaxRows > 0 && len(t.Rows) > d.MaxRows {
			return nil, fmt.Errorf("tabular: el archivo supera %d filas", d.MaxRows)
		}
	}
	return t, nil
}

// toUTF8 elimina el BOM (decodificando UTF-16 si corresponde) y, si el resultado no es UTF-8 válido,
// interpreta el archivo como Windows-1252.
func toUTF8(raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(xunicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return nil, err
	}
	if utf8.Valid(out) {
		return out, nil
	}
	out, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	return out, err
}

// sniffDelimiter elige entre coma, punto y coma y tabulador según la primera línea.
func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(first, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
