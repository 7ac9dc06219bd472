package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := ConnectRedis(context.Background(), mr.Addr(), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), addr, "", zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestConnectRedis_WrongPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	_, err := ConnectRedis(context.Background(), mr.Addr(), "nope", zaptest.NewLogger(t))
	assert.Error(t, err)
}
