package parking

import (
	"context"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type lineStartKey struct{}

// maxInputAttributeLen bounds the raw line recorded on a span.
const maxInputAttributeLen = 256

// Instrumentation traces every session line and records OTel metrics for it.
type Instrumentation struct {
	tracer trace.Tracer

	// Metrics
	lineOperations    metric.Int64Counter
	paymentOperations metric.Int64Counter
	rollovers         metric.Int64Counter
	ledgerEntries     metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram

	sizes PartitionSizes
}

func NewInstrumentation(tracer trace.Tracer, meter metric.Meter) (*Instrumentation, error) {
	lineOperations, err := meter.Int64Counter("parking_lines_total",
		metric.WithDescription("Total number of processed input lines"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	paymentOperations, err := meter.Int64Counter("parking_payments_total",
		metric.WithDescription("Total number of accepted payments"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	rollovers, err := meter.Int64Counter("parking_day_rollovers_total",
		metric.WithDescription("Total number of day rollovers"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	ledgerEntries, err := meter.Int64UpDownCounter("parking_ledger_entries",
		metric.WithDescription("Current number of ledger entries per partition"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("line_processing_duration_seconds",
		metric.WithDescription("Duration of input line processing"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Instrumentation{
		tracer:            tracer,
		lineOperations:    lineOperations,
		paymentOperations: paymentOperations,
		rollovers:         rollovers,
		ledgerEntries:     ledgerEntries,
		operationDuration: operationDuration,
	}, nil
}

func NewTelemetryInstrumentation(telemetry *TelemetryProvider) (*Instrumentation, error) {
	return NewInstrumentation(telemetry.Tracer(), telemetry.Meter())
}

func (in *Instrumentation) LineStarted(ctx context.Context, line int, raw string) context.Context {
	ctx, _ = in.tracer.Start(ctx, "session.process_line",
		trace.WithAttributes(
			attribute.Int("line.number", line),
			attribute.String("line.input", truncateInput(raw)),
		))
	return context.WithValue(ctx, lineStartKey{}, time.Now())
}

func (in *Instrumentation) LineFinished(ctx context.Context, res Result, sizes PartitionSizes) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	labels := []attribute.KeyValue{
		attribute.String("kind", res.Kind.String()),
		attribute.String("verdict", res.Verdict.String()),
	}
	span.SetAttributes(labels...)

	if res.Registration != "" {
		span.SetAttributes(attribute.String("vehicle.registration_number", string(res.Registration)))
	}

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}

	if res.Rollover {
		span.AddEvent("day_rolled_over")
		in.rollovers.Add(ctx, 1)
	}

	if res.Kind == KindPayment && res.Verdict == VerdictOK {
		status := "recorded"
		if res.Absorbed {
			status = "absorbed"
			span.AddEvent("payment_absorbed")
		} else {
			span.AddEvent("payment_recorded", trace.WithAttributes(
				attribute.String("partition", res.Partition.String()),
			))
		}
		in.paymentOperations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("partition", res.Partition.String()),
			attribute.String("status", status),
		))
	}

	in.lineOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	in.recordSizes(ctx, sizes)

	if start, ok := ctx.Value(lineStartKey{}).(time.Time); ok {
		in.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	}
}

func (in *Instrumentation) recordSizes(ctx context.Context, sizes PartitionSizes) {
	if delta := sizes.Today - in.sizes.Today; delta != 0 {
		in.ledgerEntries.Add(ctx, int64(delta), metric.WithAttributes(
			attribute.String("partition", PartitionToday.String())))
	}
	if delta := sizes.Tomorrow - in.sizes.Tomorrow; delta != 0 {
		in.ledgerEntries.Add(ctx, int64(delta), metric.WithAttributes(
			attribute.String("partition", PartitionTomorrow.String())))
	}
	in.sizes = sizes
}

// truncateInput cuts raw to at most maxInputAttributeLen bytes without
// splitting a UTF-8 sequence.
func truncateInput(raw string) string {
	if len(raw) <= maxInputAttributeLen {
		return raw
	}
	cut := maxInputAttributeLen
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
