package parking

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestInstrumentation(t *testing.T) (*Instrumentation, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	in, err := NewInstrumentation(tp.Tracer("test"), mp.Meter("test"))
	require.NoError(t, err)
	return in, recorder, reader
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string][]metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum.DataPoints
			}
		}
	}
	return sums
}

func total(points []metricdata.DataPoint[int64], kv ...attribute.KeyValue) int64 {
	var n int64
	for _, p := range points {
		match := true
		for _, want := range kv {
			if got, ok := p.Attributes.Value(want.Key); !ok || got != want.Value {
				match = false
				break
			}
		}
		if match {
			n += p.Value
		}
	}
	return n
}

func TestInstrumentationTracesEveryLine(t *testing.T) {
	in, recorder, _ := newTestInstrumentation(t)
	s := NewSession(io.Discard, io.Discard, WithObserver(in))

	input := "ABC123 08.00 10.00\nabc 08.00\nABC123 09.00\n"
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input)))

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	for i, span := range spans {
		assert.Equal(t, "session.process_line", span.Name())
		assert.Contains(t, span.Attributes(), attribute.Int("line.number", i+1))
	}

	assert.Contains(t, spans[0].Attributes(), attribute.String("verdict", "OK"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("vehicle.registration_number", "ABC123"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("kind", "malformed"))
	assert.Contains(t, spans[2].Attributes(), attribute.String("verdict", "YES"))
}

func TestInstrumentationTruncatesLongInput(t *testing.T) {
	in, recorder, _ := newTestInstrumentation(t)
	s := NewSession(io.Discard, io.Discard, WithObserver(in))

	long := strings.Repeat("X", 1<<20)
	require.NoError(t, s.Run(context.Background(), strings.NewReader(long+"\nABC123 08.00 10.00\n")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	input, ok := attributeValue(spans[0].Attributes(), "line.input")
	require.True(t, ok)
	assert.Len(t, input.AsString(), maxInputAttributeLen)
	assert.Contains(t, spans[1].Attributes(), attribute.String("line.input", "ABC123 08.00 10.00"))
}

func TestTruncateInputKeepsRunesWhole(t *testing.T) {
	raw := strings.Repeat("a", maxInputAttributeLen-1) + "é" + "tail"

	got := truncateInput(raw)
	assert.Equal(t, strings.Repeat("a", maxInputAttributeLen-1), got)
	assert.Equal(t, "short", truncateInput("short"))
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestInstrumentationRecordsMetrics(t *testing.T) {
	in, recorder, reader := newTestInstrumentation(t)
	s := NewSession(io.Discard, io.Discard, WithObserver(in))

	input := strings.Join([]string{
		"ABC123 19.00 08.00",
		"ABC123 19.10 19.30",
		"XYZ999 08.00 09.00",
		"ABC123 08.05 08.10",
	}, "\n")
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input)))

	sums := collectSums(t, reader)

	assert.Equal(t, int64(3), total(sums["parking_lines_total"], attribute.String("verdict", "OK")))
	assert.Equal(t, int64(1), total(sums["parking_lines_total"], attribute.String("verdict", "ERROR")))
	assert.Equal(t, int64(1), total(sums["parking_payments_total"], attribute.String("status", "absorbed")))
	assert.Equal(t, int64(2), total(sums["parking_payments_total"], attribute.String("status", "recorded")))
	assert.Equal(t, int64(1), total(sums["parking_day_rollovers_total"]))
	assert.Equal(t, int64(2), total(sums["parking_ledger_entries"], attribute.String("partition", "today")))
	assert.Equal(t, int64(0), total(sums["parking_ledger_entries"], attribute.String("partition", "tomorrow")))

	var rollover bool
	for _, span := range recorder.Ended() {
		for _, ev := range span.Events() {
			if ev.Name == "day_rolled_over" {
				rollover = true
			}
		}
	}
	assert.True(t, rollover)
}
