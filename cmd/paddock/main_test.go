package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/paddock/internal/config"
	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/adapters/redis"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	cases := map[string]config.StoreConfig{
		config.BackendMemory: {Backend: config.BackendMemory},
		config.BackendFile:   {Backend: config.BackendFile, Path: filepath.Join(dir, "sessions")},
		config.BackendSQLite: {Backend: config.BackendSQLite, SQLitePath: filepath.Join(dir, "db", "paddock.db")},
		config.BackendRedis:  {Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: redis.DefaultPrefix}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := openBackend(ctx, cfg)
			require.NoError(t, err)
			defer b.Close()

			ports.RunStateStoreContract(t, b.Store)
			if name == config.BackendRedis {
				assert.NotNil(t, b.Locker)
			} else {
				assert.Nil(t, b.Locker)
			}
		})
	}

	_, err := openBackend(ctx, config.StoreConfig{Backend: "tape"})
	assert.Error(t, err)

	_, err = openBackend(ctx, config.StoreConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: "127.0.0.1:1"}})
	assert.Error(t, err)
}

func TestOpenBackend_Encrypted(t *testing.T) {
	ctx := context.Background()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	cfg := config.StoreConfig{
		Backend:       config.BackendSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "paddock.db"),
		EncryptionKey: key,
	}

	b, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	ports.RunStateStoreContract(t, b.Store)

	sess := domain.NewSession("secret")
	sess.Form.UserDetails.Email = "ada@example.com"
	require.NoError(t, b.Store.Save(ctx, "secret", sess))
	require.NoError(t, b.Close())

	cfg.EncryptionKey = ""
	plain, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	defer plain.Close()
	raw, err := plain.Store.Load(ctx, "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Form.UserDetails.Email)

	cfg.EncryptionKey = "c2hvcnQ="
	_, err = openBackend(ctx, cfg)
	assert.ErrorContains(t, err, "store.encryption_key")
}

func TestBackendManager_UsesLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.Addr = mr.Addr()

	b, err := openBackend(context.Background(), cfg.Store)
	require.NoError(t, err)
	defer b.Close()

	mgr := b.Manager(cfg, logging.NewNop())
	sess, err := mgr.LoadOrStart(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Form.Step)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "paddock version "))
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PADDOCK_STORE_BACKEND", "file")
	t.Setenv("PADDOCK_STORE_PATH", dir)
	cfgFile := filepath.Join(dir, "none.yaml")

	out, err := execute(t, "session", "ls", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	b, err := openBackend(context.Background(), config.StoreConfig{Backend: config.BackendFile, Path: dir})
	require.NoError(t, err)
	sess := domain.NewSession("abc")
	sess.Form.UserDetails.Name = "Ada"
	require.NoError(t, b.Store.Save(context.Background(), "abc", sess))

	out, err = execute(t, "session", "ls", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "- abc")

	out, err = execute(t, "session", "inspect", "abc", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ada"`)

	out, err = execute(t, "session", "rm", "abc", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'abc'")

	_, err = execute(t, "session", "inspect", "abc", "--config", cfgFile)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	out, err = execute(t, "session", "purge", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to purge")
}

func TestSessionPurge_SQLite(t *testing.T) {
	t.Setenv("PADDOCK_STORE_BACKEND", "sqlite")
	t.Setenv("PADDOCK_STORE_SQLITE_PATH", filepath.Join(t.TempDir(), "paddock.db"))

	out, err := execute(t, "session", "purge", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 0 expired session(s)")
}
