package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securegate/securegate/internal/platform/cache"
	_ "github.com/securegate/securegate/testing"
)

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := cache.New(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := client.Get(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := cache.New(context.Background(), cache.Options{
		Addr:        addr,
		PingTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
}
