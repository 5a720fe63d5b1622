package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kendall-kelly/sari-inventory-api/services"

// Metrics holds the service-level instruments. A nil *Metrics records nothing.
type Metrics struct {
	movements metric.Int64Counter
	imports   metric.Int64Counter
}

// NewMetrics registers instruments on the global meter provider
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	movements, err := meter.Int64Counter("sari.movements.accepted",
		metric.WithDescription("Movements accepted into the movement log"),
		metric.WithUnit("{movement}"),
	)
	if err != nil {
		return nil, err
	}

	imports, err := meter.Int64Counter("sari.import.rows",
		metric.WithDescription("Rows processed by bulk imports"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{movements: movements, imports: imports}, nil
}

// MovementAccepted counts one accepted movement
func (m *Metrics) MovementAccepted(ctx context.Context, fromProcess, toProcess string) {
	if m == nil {
		return
	}
	m.movements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from_process", fromProcess),
		attribute.String("to_process", toProcess),
	))
}

// ImportRows counts imported rows by kind and outcome
func (m *Metrics) ImportRows(ctx context.Context, kind, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.imports.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}
