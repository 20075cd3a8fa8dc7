package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)
	path := writeFile(t, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logging.NewNop(), func(c Config) { changes <- c })
	}()

	// Give the watcher a moment to register.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  json: true\n"), 0644))

	select {
	case cfg := <-changes:
		assert.True(t, cfg.Log.JSON)
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_SkipsInvalidConfig(t *testing.T) {
	path := writeFile(t, "store:\n  backend: memory\n")

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()
	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logging.NewNop(), func(c Config) { changes <- c })
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: floppy\n"), 0644))

	require.NoError(t, <-done)
	assert.Empty(t, changes)
}
