package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("searched", "icons", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "searched", rec["msg"])
	assert.EqualValues(t, 3, rec["icons"])
}

func TestInitHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "text", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Get().Info("hidden")
	assert.Empty(t, buf.String())

	Get().Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
