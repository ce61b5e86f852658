package redact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditry/auditry-go/observability/redact"
)

func TestShouldRedact(t *testing.T) {
	r := redact.NewRedactor()

	tests := []struct {
		field string
		want  bool
	}{
		{"password", true},
		{"Password", true},
		{"user_password", true},
		{"PASSWORD_HASH", true},
		{"token", true},
		{"access_token", true},
		{"api_key", true},
		{"apikey", true},
		{"x-api-key", true},
		{"authorization", true},
		{"Authorization", true},
		{"ssn", true},
		{"credit_card", true},
		{"secretary", true}, // permissive substring match, kept for log compatibility
		{"name", false},
		{"email", false},
		{"user_id", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ShouldRedact(tt.field))
		})
	}
}

func TestRedactNestedStructures(t *testing.T) {
	r := redact.NewRedactor()

	in := map[string]any{
		"name": "alice",
		"credentials": map[string]any{
			"password": "hunter2",
			"attempts": 3,
		},
		"items": []any{
			map[string]any{"token": "abc", "kind": "refresh"},
			"plain-element",
		},
		"tokens":  []any{"abc", "def"},
		"api_key": map[string]any{"nested": "should not matter"},
	}

	got, ok := r.Redact(in).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "alice", got["name"])

	creds := got["credentials"].(map[string]any)
	assert.Equal(t, redact.Marker, creds["password"])
	assert.Equal(t, 3, creds["attempts"])

	items := got["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, redact.Marker, first["token"])
	assert.Equal(t, "refresh", first["kind"])
	assert.Equal(t, "plain-element", items[1])

	// A matched key swallows its whole subtree, whatever its type.
	assert.Equal(t, redact.Marker, got["tokens"])
	assert.Equal(t, redact.Marker, got["api_key"])
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	r := redact.NewRedactor()

	in := map[string]any{"password": "hunter2"}
	_ = r.Redact(in)
	assert.Equal(t, "hunter2", in["password"])
}

func TestRedactIdempotent(t *testing.T) {
	r := redact.NewRedactor()

	in := map[string]any{
		"password": "hunter2",
		"profile":  map[string]any{"secret": "x", "bio": "hello"},
		"list":     []any{1.0, "two", map[string]any{"token": "t"}},
	}

	once := r.Redact(in)
	twice := r.Redact(once)
	assert.Equal(t, once, twice)
}

func TestRedactScalarsPassThrough(t *testing.T) {
	r := redact.NewRedactor()

	assert.Equal(t, "plain", r.Redact("plain"))
	assert.Equal(t, 42, r.Redact(42))
	assert.Equal(t, true, r.Redact(true))
	assert.Nil(t, r.Redact(nil))

	// Unclassifiable types are passed through untouched.
	type opaque struct{ V string }
	assert.Equal(t, opaque{"x"}, r.Redact(opaque{"x"}))
}

func TestRedactDepthCeiling(t *testing.T) {
	r := redact.NewRedactor()

	// Build a structure deeper than the ceiling.
	leaf := map[string]any{"value": "bottom"}
	v := any(leaf)
	for i := 0; i < redact.MaxDepth+10; i++ {
		v = map[string]any{"child": v}
	}

	got := r.Redact(v)

	// Walk down: the traversal must have bottomed out on the marker instead
	// of reaching the leaf.
	depth := 0
	for {
		m, ok := got.(map[string]any)
		if !ok {
			break
		}
		got = m["child"]
		depth++
	}
	assert.Equal(t, redact.DepthMarker, got)
	assert.LessOrEqual(t, depth, redact.MaxDepth+1)
}

func TestAdditionalPatterns(t *testing.T) {
	r := redact.NewRedactor("internal_ref", "PIN")

	got := r.Redact(map[string]any{
		"internal_ref": "r-1",
		"card_pin":     "1234",
		"name":         "bob",
	}).(map[string]any)

	assert.Equal(t, redact.Marker, got["internal_ref"])
	assert.Equal(t, redact.Marker, got["card_pin"])
	assert.Equal(t, "bob", got["name"])
}

func TestRedactStringMap(t *testing.T) {
	r := redact.NewRedactor()

	got := r.RedactStringMap(map[string]string{
		"authorization": "Bearer xyz",
		"x-api-key":     "key-123",
		"user-agent":    "curl/7.64.1",
	})

	assert.Equal(t, redact.Marker, got["authorization"])
	assert.Equal(t, redact.Marker, got["x-api-key"])
	assert.Equal(t, "curl/7.64.1", got["user-agent"])

	assert.Nil(t, r.RedactStringMap(nil))
}
