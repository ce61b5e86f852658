package correlation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corr "github.com/auditry/auditry-go/common/correlation"
)

func TestSetID(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		id     string
		wantID string
	}{
		{
			name:   "bind new id",
			ctx:    context.Background(),
			id:     "abc-123",
			wantID: "abc-123",
		},
		{
			name:   "empty id is a no-op",
			ctx:    context.Background(),
			id:     "",
			wantID: "",
		},
		{
			name:   "rebinding derives without mutating",
			ctx:    corr.SetID(context.Background(), "old"),
			id:     "new",
			wantID: "new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := corr.SetID(tt.ctx, tt.id)
			assert.Equal(t, tt.wantID, corr.ID(got))
		})
	}
}

func TestSetIDDoesNotMutateParent(t *testing.T) {
	parent := corr.SetID(context.Background(), "parent-id")
	child := corr.SetID(parent, "child-id")

	assert.Equal(t, "parent-id", corr.ID(parent))
	assert.Equal(t, "child-id", corr.ID(child))
}

func TestContextWithCorrelation(t *testing.T) {
	t.Run("uses supplied value", func(t *testing.T) {
		ctx := corr.ContextWithCorrelation(context.Background(), "supplied")
		assert.Equal(t, "supplied", corr.ID(ctx))
	})

	t.Run("generates when empty", func(t *testing.T) {
		ctx := corr.ContextWithCorrelation(context.Background(), "")
		require.NotEmpty(t, corr.ID(ctx))

		other := corr.ContextWithCorrelation(context.Background(), "")
		assert.NotEqual(t, corr.ID(ctx), corr.ID(other))
	})
}

func TestClear(t *testing.T) {
	ctx := corr.SetID(context.Background(), "abc")
	require.True(t, corr.Has(ctx))

	cleared := corr.Clear(ctx)
	assert.False(t, corr.Has(cleared))
	assert.Empty(t, corr.ID(cleared))

	// Clearing an unbound context is a no-op.
	assert.False(t, corr.Has(corr.Clear(context.Background())))
}

func TestID(t *testing.T) {
	assert.Empty(t, corr.ID(nil)) //nolint:staticcheck
	assert.Empty(t, corr.ID(context.Background()))
}

// Two requests handled concurrently must never observe each other's id.
func TestConcurrentIsolation(t *testing.T) {
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := corr.ContextWithCorrelation(context.Background(), "")
			id := corr.ID(ctx)
			for j := 0; j < 100; j++ {
				if got := corr.ID(ctx); got != id {
					t.Errorf("correlation id changed under concurrency: got %q, want %q", got, id)
					return
				}
			}
		}()
	}
	wg.Wait()
}
