package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "payment", "record")
	billID := uuid.New()
	SetAttributes(span, SpanAttrBillID, billID, "amount", 2500.0, 42, "ignored")
	RecordError(span, errors.New("store unavailable"))
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "payment.record", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, billID.String(), attrs[SpanAttrBillID])
	assert.Equal(t, "2500", attrs["amount"])
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestRegisterDBTracing(t *testing.T) {
	recorder := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterDBTracing(db, "water_portal"))

	type meter struct {
		ID     uint
		Number string
	}
	require.NoError(t, db.AutoMigrate(&meter{}))

	ctx, span := StartServiceSpan(context.Background(), "billing", "create")
	require.NoError(t, db.WithContext(ctx).Create(&meter{Number: "MTR-1"}).Error)
	span.End()

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "billing.create")
	assert.Greater(t, len(names), 1, "query spans are recorded as children")
}
