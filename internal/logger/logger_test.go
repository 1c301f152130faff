package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithContextRoundTrip(t *testing.T) {
	l := zerolog.Nop()
	ctx := WithContext(context.Background(), &l)
	assert.Same(t, &l, FromContext(ctx))
}

func TestWithValues(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithValues(&base, "bucket", "snapshots", "dangling")
	l.Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "snapshots", entry["bucket"])
	assert.Equal(t, "MISSING_VALUE", entry["dangling"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSetupJSON(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	require.NoError(t, Setup("debug", "json", &buf))
	FromContext(context.Background()).Debug().Str("k", "v").Msg("configured")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "configured", entry["message"])
	assert.Equal(t, "debug", entry["level"])
}
