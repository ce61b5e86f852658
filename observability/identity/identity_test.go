package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auditry/auditry-go/observability/identity"
)

type principal struct{ id string }

func (p principal) GetID() string { return p.id }

type userPrincipal struct{ userID string }

func (p userPrincipal) GetUserID() string { return p.userID }

type panickyPrincipal struct{}

func (panickyPrincipal) GetID() string { panic("auth store unavailable") }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		sources []any
		want    string
	}{
		{
			name:    "no sources",
			sources: nil,
			want:    "",
		},
		{
			name:    "nil sources skipped",
			sources: []any{nil, nil},
			want:    "",
		},
		{
			name:    "principal id",
			sources: []any{principal{id: "user_1"}},
			want:    "user_1",
		},
		{
			name:    "principal user id",
			sources: []any{userPrincipal{userID: "user_2"}},
			want:    "user_2",
		},
		{
			name:    "map id key",
			sources: []any{map[string]any{"id": "user_3"}},
			want:    "user_3",
		},
		{
			name:    "map user_id key",
			sources: []any{map[string]any{"user_id": "user_4"}},
			want:    "user_4",
		},
		{
			name:    "map sub claim",
			sources: []any{map[string]any{"sub": "user_5"}},
			want:    "user_5",
		},
		{
			name:    "bare string side channel",
			sources: []any{"user_6"},
			want:    "user_6",
		},
		{
			name:    "numeric map id",
			sources: []any{map[string]any{"id": float64(42)}},
			want:    "42",
		},
		{
			name:    "unconvertible id value is no match",
			sources: []any{map[string]any{"id": []any{"x"}}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.Resolve(tt.sources...))
		})
	}
}

// GetID beats GetUserID, which beats map keys, which beat the side channel,
// regardless of source ordering.
func TestResolvePriority(t *testing.T) {
	got := identity.Resolve(
		"side-channel",
		map[string]any{"sub": "from-sub", "user_id": "from-user-id"},
		userPrincipal{userID: "from-get-user-id"},
		principal{id: "from-get-id"},
	)
	assert.Equal(t, "from-get-id", got)

	got = identity.Resolve(
		"side-channel",
		map[string]any{"sub": "from-sub", "user_id": "from-user-id", "id": "from-id"},
	)
	assert.Equal(t, "from-id", got)

	got = identity.Resolve(
		"side-channel",
		map[string]any{"sub": "from-sub"},
	)
	assert.Equal(t, "from-sub", got)
}

func TestResolveSwallowsPanics(t *testing.T) {
	got := identity.Resolve(panickyPrincipal{}, principal{id: "fallback"})
	assert.Equal(t, "fallback", got)

	assert.Empty(t, identity.Resolve(panickyPrincipal{}))
}

func TestResolveEmptyIDKeepsLooking(t *testing.T) {
	got := identity.Resolve(principal{id: ""}, map[string]any{"user_id": "user_9"})
	assert.Equal(t, "user_9", got)
}
