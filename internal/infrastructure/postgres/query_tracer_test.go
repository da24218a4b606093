package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestQueryTracer_SpanPorSentencia(t *testing.T) {
	rec := withRecorder(t)
	qt := postgres.NewQueryTracer()

	ctx := qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "\n\t\tUPDATE stock_info SET quantity = $1 WHERE id = $2",
	})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("UPDATE 1")})

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.update", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestQueryTracer_RegistraError(t *testing.T) {
	rec := withRecorder(t)
	qt := postgres.NewQueryTracer()

	ctx := qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("conexión perdida")})

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.select", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
