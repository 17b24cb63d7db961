package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, slog.LevelWarn, "json")

	log.Info("dropped")
	log.Warn("kept", "field", "phone")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "phone", line["field"])
	assert.Equal(t, "storefront-trust", line["service"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	newWithWriter(&buf, slog.LevelInfo, "TEXT").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
