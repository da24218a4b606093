package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logger.ParseLevel(in), "nivel %q", in)
	}
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "stock-ledger", Out: &buf})

	cache := log.Component("cache")
	cache.Info().Str("key", "all").Msg("caché invalidada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stock-ledger", line["service"])
	assert.Equal(t, "cache", line["component"])
	assert.Equal(t, "all", line["key"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "time")
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("sí sale")
	assert.Contains(t, buf.String(), "sí sale")
}

func TestNew_ConsolaEnDesarrollo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "development", Out: &buf})

	log.Info().Msg("arranque")
	out := buf.String()
	assert.Contains(t, out, "arranque")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "la consola no escribe JSON")
}
