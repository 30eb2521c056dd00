package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
	"github.com/jhoicas/fieldstock-api/pkg/tabular"
)

// Columnas obligatorias del archivo de envíos.
var bulkColumns = []string{"brandName", "sku", "caseUnitsNumber", "pricePerCase", "totalCase", "date"}

// TableDecoder convierte el archivo cargado en filas (implementado por tabular.Decoder).
type TableDecoder interface {
	Decode(r io.Reader) (*tabular.Table, error)
}

// BulkOptions parámetros de la carga masiva.
type BulkOptions struct {
	MaxFileBytes           int64
	Workers                int
	RowsPerSecond          float64 // 0 = sin límite
	ValidateAgainstCatalog bool
	ArchivePrefix          string
	Log                    *logger.Logger // nil = logger.Nop
}

// BulkShipmentInput archivo recibido.
type BulkShipmentInput struct {
	StoreAssignmentID string
	FileName          string
	ContentType       string
	Data              []byte
}

// bulkRowFields valores crudos de una fila; la etiqueta col es el nombre reportado en los errores.
type bulkRowFields struct {
	BrandName       string `col:"brandName" validate:"required,max=200"`
	SKU             string `col:"sku" validate:"required,max=100"`
	CaseUnitsNumber string `col:"caseUnitsNumber" validate:"required,number"`
	PricePerCase    string `col:"pricePerCase" validate:"required,numeric"`
	TotalCase       string `col:"totalCase" validate:"required,numeric"`
	Date            string `col:"date" validate:"required"`
}

// BulkShipmentUseCase ingesta un archivo tabular de envíos. Cada fila válida se registra en su propia
// transacción a través de ShipmentUseCase; una fila con error nunca aborta el resto.
type BulkShipmentUseCase struct {
	shipments *ShipmentUseCase
	decoder   TableDecoder
	archive   UploadArchive // nil = sin archivo
	opts      BulkOptions
	limiter   *rate.Limiter // nil = sin límite
	validate  *validator.Validate
	log       *logger.Logger
	rows      metric.Int64Counter
}

// NewBulkShipmentUseCase construye el caso de uso.
func NewBulkShipmentUseCase(shipments *ShipmentUseCase, decoder TableDecoder, archive UploadArchive, opts BulkOptions) *BulkShipmentUseCase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 10 << 20
	}
	var limiter *rate.Limiter
	if opts.RowsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RowsPerSecond), opts.Workers)
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("col")
	})
	rows, _ := otel.Meter(instrumentationName).Int64Counter(
		"fieldstock.bulk.rows",
		metric.WithDescription("Filas procesadas en cargas masivas de envíos por estado"),
	)
	return &BulkShipmentUseCase{
		shipments: shipments,
		decoder:   decoder,
		archive:   archive,
		opts:      opts,
		limiter:   limiter,
		validate:  v,
		log:       opts.Log.Component("bulk_shipments"),
		rows:      rows,
	}
}

// Ingest valida el archivo completo (tipo, tamaño, columnas) y procesa las filas con un pool acotado
// de workers. Devuelve el reporte por fila; solo los errores que afectan a todo el archivo se devuelven como error.
func (uc *BulkShipmentUseCase) Ingest(ctx context.Context, actor entity.Actor, in BulkShipmentInput) (report *dto.BulkShipmentReport, err error) {
	ctx, span := startSpan(ctx, "inventory.IngestShipments", in.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	if !tabular.IsTabular(in.ContentType, in.FileName) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, in.ContentType)
	}
	if int64(len(in.Data)) > uc.opts.MaxFileBytes {
		return nil, fmt.Errorf("%w: el archivo supera %d bytes", domain.ErrInvalidInput, uc.opts.MaxFileBytes)
	}

	assignment, err := uc.shipments.activeAssignment(ctx, in.StoreAssignmentID)
	if err != nil {
		return nil, err
	}
	if !uc.shipments.Authorizer.CanMutate(actor, assignment.StaffID) {
		return nil, domain.ErrForbidden
	}
	var catalog []entity.BrandConfig
	if uc.opts.ValidateAgainstCatalog {
		if catalog, err = uc.shipments.Catalog.ListByInitiative(ctx, assignment.InitiativeID); err != nil {
			return nil, err
		}
	}

	table, err := uc.decoder.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if missing := table.Missing(bulkColumns...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: faltan columnas %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	report = &dto.BulkShipmentReport{
		Total:    len(table.Rows),
		Rows:     make([]dto.BulkRowOutcome, len(table.Rows)),
		Archived: uc.archiveUpload(ctx, assignment, in),
	}
	span.SetAttributes(attribute.Int("bulk.rows", report.Total))

	var g errgroup.Group
	g.SetLimit(uc.opts.Workers)
	for i, raw := range table.Rows {
		row, reason := uc.parseRow(raw)
		outcome := dto.BulkRowOutcome{Line: raw.Line, BrandName: row.BrandName, SKU: row.SKU}
		if reason == "" && catalog != nil {
			if b, ok := entity.FindBrand(catalog, row.BrandName, row.SKU); ok {
				row.BrandName, row.SKU = b.Name, b.SKU
			} else {
				reason = domain.ErrUnknownBrand.Error()
			}
		}
		if reason != "" {
			outcome.Status, outcome.Reason = dto.BulkRowSkipped, reason
			report.Rows[i] = outcome
			continue
		}
		if uc.limiter != nil {
			if err := uc.limiter.Wait(ctx); err != nil {
				outcome.Status, outcome.Reason = dto.BulkRowFailed, err.Error()
				report.Rows[i] = outcome
				continue
			}
		}
		// Cada goroutine escribe solo su posición del slice
		g.Go(func() error {
			report.Rows[i] = uc.dispatch(ctx, actor, assignment, row, outcome)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Rows {
		switch r.Status {
		case dto.BulkRowAccepted:
			report.Accepted++
		case dto.BulkRowSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		uc.rows.Add(ctx, 1, metric.WithAttributes(attribute.String("status", r.Status)))
	}
	uc.log.Ctx(ctx).Info().
		Str("store_assignment_id", assignment.ID).
		Str("actor", actor.UserID).
		Int("total", report.Total).
		Int("accepted", report.Accepted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("carga masiva de envíos procesada")
	return report, nil
}

// dispatch registra una fila y clasifica el resultado: errores de negocio quedan como skipped,
// cualquier otro como failed.
func (uc *BulkShipmentUseCase) dispatch(ctx context.Context, actor entity.Actor, assignment *entity.StoreAssignment, row ShipmentRow, outcome dto.BulkRowOutcome) dto.BulkRowOutcome {
	resp, err := uc.shipments.CreateFromRow(ctx, actor, assignment, row)
	switch {
	case err == nil:
		outcome.Status, outcome.ShipmentID = dto.BulkRowAccepted, resp.ID
	case isRowRejection(err):
		outcome.Status, outcome.Reason = dto.BulkRowSkipped, err.Error()
		uc.log.Ctx(ctx).Debug().Int("line", outcome.Line).Err(err).Msg("fila omitida")
	default:
		outcome.Status, outcome.Reason = dto.BulkRowFailed, err.Error()
		uc.log.Ctx(ctx).Warn().Int("line", outcome.Line).Err(err).Msg("fila fallida")
	}
	return outcome
}

func isRowRejection(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrDuplicate, domain.ErrUnknownBrand,
		domain.ErrInsufficientStock, domain.ErrNotFound, domain.ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseRow valida y convierte una fila. Devuelve la razón del rechazo o "" si es válida.
func (uc *BulkShipmentUseCase) parseRow(raw tabular.Row) (ShipmentRow, string) {
	f := bulkRowFields{
		BrandName:       raw.Get("brandName"),
		SKU:             raw.Get("sku"),
		CaseUnitsNumber: raw.Get("caseUnitsNumber"),
		PricePerCase:    raw.Get("pricePerCase"),
		TotalCase:       raw.Get("totalCase"),
		Date:            raw.Get("date"),
	}
	row := ShipmentRow{BrandName: f.BrandName, SKU: f.SKU}
	if err := uc.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reasons := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				reasons = append(reasons, fe.Field()+": "+fe.Tag())
			}
			return row, strings.Join(reasons, "; ")
		}
		return row, err.Error()
	}

	cu, err := strconv.Atoi(f.CaseUnitsNumber)
	if err != nil || cu < 1 {
		return row, "caseUnitsNumber: debe ser un entero mayor o igual a 1"
	}
	price, err := decimal.NewFromString(f.PricePerCase)
	if err != nil || price.IsNegative() {
		return row, "pricePerCase: debe ser un número mayor o igual a 0"
	}
	totalCase, err := decimal.NewFromString(f.TotalCase)
	if err != nil || !totalCase.IsPositive() {
		return row, "totalCase: debe ser un número mayor que 0"
	}
	date, err := stock.ParseDay(f.Date)
	if err != nil {
		return row, "date: formato inválido, se espera YYYY-MM-DD"
	}
	row.CaseUnitsNumber, row.PricePerCase, row.TotalCase, row.Date = cu, price, totalCase, date
	return row, ""
}

// archiveUpload guarda el archivo original. Un fallo se registra y no bloquea la ingesta.
func (uc *BulkShipmentUseCase) archiveUpload(ctx context.Context, assignment *entity.StoreAssignment, in BulkShipmentInput) string {
	if uc.archive == nil {
		return ""
	}
	name := path.Base(strings.ReplaceAll(in.FileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload.csv"
	}
	key := path.Join(uc.opts.ArchivePrefix, assignment.ID, time.Now().UTC().Format("20060102T150405Z")+"-"+uuid.NewString()[:8]+"-"+name)
	location, err := uc.archive.Store(ctx, key, in.ContentType, in.Data)
	if err != nil {
		uc.log.Ctx(ctx).Error().Err(err).Str("key", key).Msg("no se pudo archivar el archivo cargado")
		return ""
	}
	return location
}
