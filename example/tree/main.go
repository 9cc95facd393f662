// FILE: example/tree/main.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lixenwraith/logtree"
)

// main builds a small logger graph: a root with the console, a database
// subsystem with its own file, and a request node that holds its records
// until the request outcome is known.
func main() {
	root := logtree.New("", logtree.WithLevel(logtree.LevelInformation))
	console, err := root.CreateConsoleTransport(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
	defer console.Close()

	db := root.CreateChild("db")
	dbCfg := logtree.DefaultFileConfig()
	dbCfg.Level = "trace"
	dbCfg.FileName = "db.log"
	dbCfg.MaxFileSize = 1024 * 1024
	dbCfg.MaxArchiveCount = 3
	dbFile, err := db.CreateFileTransport(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db file: %v\n", err)
		os.Exit(1)
	}
	defer dbFile.Close()

	dbFile.OnRotated(func(rf logtree.RotationFile) {
		root.Info("db log rotated into", rf.Path)
	})

	// Only the file sees the debug record; the root filters it
	db.Debug("connection pool warmed", "size", 8)
	db.Info("connected")

	// Request records are held and only reach the console on failure
	for i, fail := range []bool{false, true} {
		request := root.CreateChild(fmt.Sprintf("request-%d", i))
		request.StartBuffering()
		request.Info("started")
		request.Info("queried db")

		if fail {
			request.Error("handler failed:", errors.New("timeout"))
			request.Flush(true)
			continue
		}
		// A successful request is never flushed; its held records go with it
	}

	// An audit node receives everything the db node emits
	audit := logtree.New("audit")
	if err := audit.Attach(db); err != nil {
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
	}
	audit.OnOutput(func(rec logtree.Record) {
		fmt.Printf("audit saw %s from %s\n", rec.Level, rec.Logger.Name())
	})
	db.Warning("slow query")

	// Edges that would loop are refused
	if err := db.Attach(audit); errors.Is(err, logtree.ErrCycle) {
		root.Warning("refused:", err)
	}

	// Forced records pass every level filter
	quiet := root.CreateChild("quiet", logtree.WithLevel(logtree.LevelNone))
	quiet.Force(logtree.LevelCritical, "shutting down")
}
