package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true}).
		WithFields(map[string]interface{}{"worker": "bill_reconciler"})

	lg.Error(errors.New("boom"), "failed to notify bill", "bill_id", "b-1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bill_reconciler", entry["worker"])
	assert.Equal(t, "b-1", entry["bill_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "failed to notify bill", entry["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("loud"))
}
