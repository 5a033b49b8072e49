package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("Should connect to a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := NewClient(context.Background(), mr.Addr(), "", 0)
		require.NoError(t, err)
		defer client.Close()

		require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
		stored, err := mr.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", stored)
	})

	t.Run("Should fail when the server is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewClient(context.Background(), addr, "", 0)
		assert.ErrorContains(t, err, "failed to ping Redis")
	})
}
