package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStampsServiceName(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	Init("mobility-service")

	var buf bytes.Buffer
	Log.SetOutput(&buf)
	WithField("request_id", "abc").Debug("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mobility-service", entry["service"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	Init("")
	assert.Equal(t, "info", Log.GetLevel().String())
}
