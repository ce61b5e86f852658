package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditry/auditry-go/observability/event"
)

func TestExtractFromRequestAndResponse(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"POST /workflows": {
			EventType:           "workflow.created",
			ExtractFromRequest:  []string{"file_id"},
			ExtractFromResponse: []string{"id"},
		},
	})

	got, ok := reg.Extract(
		"POST", "/workflows",
		map[string]any{"file_id": "file_123", "name": "x"},
		map[string]any{"id": "workflow_789"},
	)
	require.True(t, ok)
	assert.Equal(t, "workflow.created", got.EventType)
	assert.Equal(t, map[string]any{
		"file_id": "file_123",
		"id":      "workflow_789",
	}, got.BusinessContext)
}

func TestExtractFromPath(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"DELETE /workflows/{workflow_id}": {
			EventType:       "workflow.deleted",
			ExtractFromPath: []string{"workflow_id"},
		},
	})

	got, ok := reg.Extract("DELETE", "/workflows/abc123", nil, nil)
	require.True(t, ok)
	assert.Equal(t, "workflow.deleted", got.EventType)
	assert.Equal(t, map[string]any{"workflow_id": "abc123"}, got.BusinessContext)
}

func TestExtractNoMatch(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"POST /workflows": {EventType: "workflow.created"},
	})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"method mismatch", "GET", "/workflows"},
		{"path mismatch", "POST", "/folders"},
		{"extra segment", "POST", "/workflows/123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := reg.Extract(tt.method, tt.path, nil, nil)
			assert.False(t, ok)
		})
	}
}

func TestExtractMissingFieldsOmitted(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"POST /workflows": {
			EventType:           "workflow.created",
			ExtractFromRequest:  []string{"file_id", "missing_field"},
			ExtractFromResponse: []string{"id"},
		},
	})

	got, ok := reg.Extract(
		"POST", "/workflows",
		map[string]any{"file_id": "f1"},
		"not a mapping",
	)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"file_id": "f1"}, got.BusinessContext)
}

func TestExtractTopLevelOnly(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"POST /workflows": {
			EventType:          "workflow.created",
			ExtractFromRequest: []string{"file_id"},
		},
	})

	got, ok := reg.Extract(
		"POST", "/workflows",
		map[string]any{"nested": map[string]any{"file_id": "hidden"}},
		nil,
	)
	require.True(t, ok)
	assert.Empty(t, got.BusinessContext)
}

func TestTemplateMatching(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"GET /users/{user_id}/files/{file_id}": {
			EventType:       "file.viewed",
			ExtractFromPath: []string{"user_id", "file_id"},
		},
	})

	got, ok := reg.Extract("GET", "/users/u1/files/f2", nil, nil)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"user_id": "u1", "file_id": "f2"}, got.BusinessContext)

	_, ok = reg.Extract("GET", "/users/u1/files", nil, nil)
	assert.False(t, ok)
}

func TestGinStyleRouteKeysNormalized(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"DELETE /workflows/:workflow_id": {
			EventType:       "workflow.deleted",
			ExtractFromPath: []string{"workflow_id"},
		},
	})

	got, ok := reg.Extract("DELETE", "/workflows/abc", nil, nil)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"workflow_id": "abc"}, got.BusinessContext)
}

func TestAddReplacesExistingRule(t *testing.T) {
	reg := event.NewRegistry(map[string]event.Rule{
		"POST /workflows": {EventType: "workflow.created"},
	})
	require.True(t, reg.Has("POST /workflows"))

	reg.Add("POST /workflows", event.Rule{EventType: "workflow.created.v2"})
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Extract("POST", "/workflows", nil, nil)
	require.True(t, ok)
	assert.Equal(t, "workflow.created.v2", got.EventType)
}

func TestNormalizeTemplate(t *testing.T) {
	assert.Equal(t, "/workflows/{workflow_id}", event.NormalizeTemplate("/workflows/:workflow_id"))
	assert.Equal(t, "/plain/path", event.NormalizeTemplate("/plain/path"))
	assert.Equal(t, "/a/{b}/c", event.NormalizeTemplate("/a/{b}/c"))
}
