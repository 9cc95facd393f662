// FILE: lixenwraith/logtree/heartbeat.go
package logtree

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"
)

// StartHeartbeat writes the transport's statistics into node at level every
// interval until ctx is done. The node is usually one the transport is
// attached to, so the heartbeat lands in the file it describes.
func (t *FileTransport) StartHeartbeat(ctx context.Context, node *Logger, level Level, interval time.Duration) error {
	if node == nil {
		return fmtErrorf("heartbeat logger cannot be nil")
	}
	if interval < minWaitTime {
		return fmtErrorf("heartbeat interval must be at least %v: %v", minWaitTime, interval)
	}

	var sequence atomic.Uint64
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				node.Write(level, t.heartbeatArgs(sequence.Add(1))...)
			}
		}
	}()
	return nil
}

// heartbeatArgs builds the key/value pairs of one heartbeat record
func (t *FileTransport) heartbeatArgs(sequence uint64) []any {
	stats := t.Stats()

	archiveCount := -1 // error value
	if archives, err := ScanArchives(t.fs, t.RotationDir(), filepath.Base(t.path)); err == nil {
		archiveCount = len(archives)
	} else {
		internalLog(t.cfg.Load().InternalErrorsToStderr, "heartbeat failed to scan archives: %v", err)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	args := []any{
		"type", "heartbeat",
		"sequence", sequence,
		"file", t.path,
		"current_size_mb", fmt.Sprintf("%.2f", float64(stats.CurrentSize)/(1024*1024)),
		"records", stats.Records,
		"rotations", stats.Rotations,
		"archives", archiveCount,
		"cleaned", stats.Cleaned,
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc_mb", fmt.Sprintf("%.2f", float64(mem.Alloc)/(1024*1024)),
	}

	if stats.Dropped > 0 {
		args = append(args, "dropped", stats.Dropped)
	}
	if stats.Errors > 0 {
		args = append(args, "errors", stats.Errors)
	}
	return args
}
