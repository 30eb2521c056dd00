package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
)

var _ inventory.LedgerEventPublisher = (*Publisher)(nil)

// MessageWriter subconjunto de *kafka.Writer usado por el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publica los eventos del ledger en un tópico. La clave del mensaje es la clave del ledger,
// de modo que los cambios de una misma entrada caen en la misma partición y conservan su orden.
type Publisher struct {
	w MessageWriter
}

// NewWriter construye el writer de kafka-go para los brokers y el tópico dados.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

// NewPublisher construye el publicador sobre un writer (en producción, NewWriter).
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish serializa el evento como JSON y lo escribe con el contexto de traza en los headers.
func (p *Publisher) Publish(ctx context.Context, event inventory.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}
	carrier := headerCarrier{{Key: "event_type", Value: []byte(event.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	msg := kafka.Message{
		Key:     []byte(event.Key().String()),
		Value:   value,
		Headers: carrier,
		Time:    event.OccurredAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write ledger event %s: %w", event.ID, err)
	}
	return nil
}

// Close vacía los mensajes pendientes y cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

// headerCarrier adapta los headers de Kafka a propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
