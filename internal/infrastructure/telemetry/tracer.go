// Package telemetry configura la exportación de trazas OpenTelemetry por OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ShutdownFunc vacía los spans pendientes y cierra el exportador.
type ShutdownFunc func(context.Context) error

// Setup instala el TracerProvider global. Con la telemetría deshabilitada no instala nada
// (el proveedor global de otel queda en no-op) y devuelve un cierre vacío.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName string, log zerolog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		log.Info().Msg("telemetría deshabilitada")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("crear exportador OTLP: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if errors.Is(err, resource.ErrPartialResource) {
		log.Warn().Err(err).Msg("recurso otel incompleto")
	} else if err != nil {
		return nil, fmt.Errorf("crear recurso otel: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Float64("sampling_ratio", cfg.SamplingRatio).
		Msg("trazas OTLP habilitadas")

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("cerrar tracer provider: %w", err)
		}
		return nil
	}, nil
}

// Sampler elige el muestreador según la proporción configurada (1 siempre, 0 nunca).
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(ratio)
	}
}
