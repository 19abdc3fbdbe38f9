package main

import (
	"context"
	"testing"

	"classlink-portal/internal/gateway"
	"classlink-portal/internal/tester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsRepeatable(t *testing.T) {
	store := tester.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, seed(ctx, store, 8))
	require.NoError(t, seed(ctx, store, 8))

	n, err := store.CountStudents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	total, err := store.CountLinks(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(len(classNames)), total)

	res, err := gateway.New(store).Resolve(ctx, "DEMO0001")
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example/JSS1", res.URL())
}

func TestSeedRequiresDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	cmd := seedCmd()
	cmd.SetArgs([]string{"--confirm"})
	assert.Error(t, cmd.Execute())
}
