package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/panelctl/internal/adapter/driven/secretbox"
	"github.com/ericfisherdev/panelctl/internal/config"
	"github.com/ericfisherdev/panelctl/internal/domain/model"
)

func testBox(t *testing.T) *secretbox.Box {
	t.Helper()
	box, err := secretbox.New(bytes.Repeat([]byte{0x5a}, secretbox.KeySize))
	require.NoError(t, err)
	return box
}

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreSQLite, DBPath: filepath.Join(t.TempDir(), "panelctl.db")}

	store, closeStore, err := openStore(ctx, cfg, testBox(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeStore() })

	require.NoError(t, store.Set(ctx, model.TokenKey, "tok"))
	got, err := store.Get(ctx, model.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestOpenStore_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := &config.Config{Store: config.StoreRedis, RedisURL: "redis://" + mr.Addr() + "/0"}

	store, closeStore, err := openStore(ctx, cfg, testBox(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeStore() })

	require.NoError(t, store.Set(ctx, model.TokenKey, "tok"))
	assert.True(t, mr.Exists("panelctl:credential:token"))
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	cfg := &config.Config{Store: config.StoreRedis, RedisURL: "redis://127.0.0.1:1/0"}

	_, _, err := openStore(context.Background(), cfg, testBox(t))
	require.Error(t, err)
}
