package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driven/memory"
)

func TestStore_CredentialLifecycle(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	tok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(ctx, "abc"))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestStore_Preferences(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	v, err := s.GetPreference(ctx, "page_size")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetPreference(ctx, "page_size", "20"))
	v, err = s.GetPreference(ctx, "page_size")
	require.NoError(t, err)
	assert.Equal(t, "20", v)
}
