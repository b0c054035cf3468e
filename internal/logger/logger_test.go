package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"storefront/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		wantJSON bool
		wantInfo bool
	}{
		{name: "production is json", env: "production", level: "info", wantJSON: true, wantInfo: true},
		{name: "development is text", env: "development", level: "debug", wantInfo: true},
		{name: "warn hides info", env: "prod", level: "warn", wantJSON: true},
		{name: "unknown level means info", env: "", level: "loud", wantInfo: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(testCase.env, testCase.level, &buf)

			log.Info("order placed", "order_id", 42)

			if !testCase.wantInfo {
				assert.Empty(t, buf.String())
				return
			}
			if testCase.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "order placed", entry["msg"])
				assert.Equal(t, float64(42), entry["order_id"])
			} else {
				assert.Contains(t, buf.String(), "msg=\"order placed\" order_id=42")
			}
		})
	}
}
