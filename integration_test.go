// FILE: lixenwraith/logtree/integration_test.go
package logtree

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplicationGraph wires a realistic tree: a root with a console and a
// file transport, a debug-level subsystem with its own file, and a request
// logger that buffers until the request finishes.
func TestApplicationGraph(t *testing.T) {
	dir := t.TempDir()

	root := New("app", WithLevel(LevelInformation))
	var stdout, stderr bytes.Buffer
	console, err := NewConsoleTransportWriters(nil, &stdout, &stderr)
	require.NoError(t, err)
	console.Attach(root)
	defer console.Close()

	mainCfg := DefaultFileConfig()
	mainCfg.FileName = filepath.Join(dir, "app.log")
	mainFile, err := root.CreateFileTransport(mainCfg)
	require.NoError(t, err)
	defer mainFile.Close()

	db := root.CreateChild("db")
	dbFile, err := NewBuilder().
		FileName(filepath.Join(dir, "db.log")).
		Level(LevelTrace).
		AttachTo(db).
		Build()
	require.NoError(t, err)
	defer dbFile.Close()

	request := root.CreateChild("request")
	request.StartBuffering()

	db.Debug("query planned")
	db.Warning("slow query")
	request.Info("handling")
	request.Error("failed")

	assert.NotContains(t, stdout.String(), "handling", "request records are held")

	request.Flush(true)

	require.NoError(t, mainFile.Sync())
	require.NoError(t, dbFile.Sync())

	appLog, err := os.ReadFile(mainCfg.FileName)
	require.NoError(t, err)
	dbLog, err := os.ReadFile(filepath.Join(dir, "db.log"))
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(string(appLog), "\n"), "root filters the debug record")
	assert.Contains(t, string(appLog), "[db] slow query")
	assert.Contains(t, string(appLog), "[request] failed")
	assert.Equal(t, 2, strings.Count(string(dbLog), "\n"), "subsystem file sees everything from db")

	assert.Contains(t, stdout.String(), "[request] handling")
	assert.Contains(t, stderr.String(), "[db] slow query")
	assert.Contains(t, stderr.String(), "[request] failed")
}

// TestSharedRotationDir rotates two files into one archive directory. Each
// file keeps its own archive sequence.
func TestSharedRotationDir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	l := New("")

	var transports []*FileTransport
	for _, name := range []string{"a.log", "b.log"} {
		cfg := DefaultFileConfig()
		cfg.FileName = filepath.Join(dir, name)
		cfg.RotationDir = archive
		cfg.MaxFileSize = lineSize
		cfg.MaxArchiveCount = 2
		cfg.EOL = EOLLF
		tr, err := l.CreateFileTransport(cfg)
		require.NoError(t, err)
		defer tr.Close()
		transports = append(transports, tr)
	}

	for i := 1; i <= 5; i++ {
		l.Info(fmt.Sprintf("record-%d", i))
	}
	for _, tr := range transports {
		require.NoError(t, tr.Sync())
	}

	for _, base := range []string{"a.log", "b.log"} {
		archives, err := ScanArchives(transports[0].fs, archive, base)
		require.NoError(t, err)
		assert.Len(t, archives, 2, base)
	}
}
