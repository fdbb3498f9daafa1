package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func TestNew_JSONConNivelYServicio(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "aura", Output: &buf})

	l.Info().Msg("descartado")
	l.Warn().Msg("visible")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "aura", entry["service"])
	assert.Equal(t, "warn", entry["level"])
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "nivel-desconocido", Output: &buf})

	c := l.Component("digest")
	c.Info().Msg("ok")
	assert.Contains(t, buf.String(), `"component":"digest"`)
}
