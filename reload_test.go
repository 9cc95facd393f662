// FILE: lixenwraith/logtree/reload_test.go
package logtree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsConfig(t *testing.T) {
	tr, _ := newTestFileTransport(t, testFileConfig(t))
	path := filepath.Join(t.TempDir(), "logtree.toml")
	require.NoError(t, os.WriteFile(path, []byte("[file]\nlevel = \"information\"\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan error, 16)
	require.NoError(t, tr.Watch(ctx, path, func(err error) { reloads <- err }))

	require.NoError(t, os.WriteFile(path, []byte("[file]\nlevel = \"error\"\nmax_archive_count = 2\n"), 0644))

	require.Eventually(t, func() bool {
		return tr.Level() == LevelError
	}, 2*time.Second, minWaitTime)
	assert.Equal(t, int64(2), tr.Config().MaxArchiveCount)
	assert.Equal(t, tr.FileName(), tr.Config().FileName, "file name is kept from the running config")
	assert.NotEmpty(t, reloads)
}

func TestWatchReportsInvalidReload(t *testing.T) {
	tr, _ := newTestFileTransport(t, testFileConfig(t))
	path := filepath.Join(t.TempDir(), "logtree.toml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan error, 16)
	require.NoError(t, tr.Watch(ctx, path, func(err error) { reloads <- err }))

	require.NoError(t, os.WriteFile(path, []byte("[file]\nfile_name = \"/elsewhere/app.log\"\n"), 0644))

	// Saving may surface as several events; wait for the one carrying the new content
	timeout := time.After(2 * time.Second)
	for rejected := false; !rejected; {
		select {
		case err := <-reloads:
			rejected = err != nil
		case <-timeout:
			t.Fatal("reload was never rejected")
		}
	}
	assert.Equal(t, LevelInformation, tr.Level())
}

func TestWatchMissingDirectory(t *testing.T) {
	tr, _ := newTestFileTransport(t, testFileConfig(t))
	err := tr.Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "logtree.toml"), nil)
	assert.Error(t, err)
}
