package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditry/auditry-go/common/headers"
	"github.com/auditry/auditry-go/observability"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := observability.NewConfig("billing-api")

	assert.Equal(t, "billing-api", cfg.ServiceName)
	assert.Equal(t, headers.HeaderXCorrelationID, cfg.CorrelationIDHeader)
	assert.Equal(t, observability.DefaultPayloadSizeLimit, cfg.PayloadSizeLimit)
	assert.True(t, cfg.LogRequestHeaders)
	assert.False(t, cfg.LogResponseHeaders)
	assert.True(t, cfg.LogQueryParams)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*observability.Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *observability.Config) {},
		},
		{
			name:    "blank service name",
			mutate:  func(cfg *observability.Config) { cfg.ServiceName = "  " },
			wantErr: "service_name",
		},
		{
			name:    "negative payload limit",
			mutate:  func(cfg *observability.Config) { cfg.PayloadSizeLimit = -1 },
			wantErr: "payload_size_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := observability.NewConfig("billing-api")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
