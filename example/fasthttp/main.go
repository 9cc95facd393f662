// FILE: example/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/logtree"
	"github.com/lixenwraith/logtree/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	// Root node with a rotating file and the console
	root := logtree.New("app")
	file, err := logtree.NewBuilder().
		FileName("/var/log/fasthttp/server.log").
		LevelString("trace").
		MaxFileSize(4 * 1024 * 1024).
		MaxArchiveCount(5).
		AttachTo(root).
		Build()
	if err != nil {
		panic(err)
	}
	defer file.Close()

	if _, err := root.CreateConsoleTransport(nil); err != nil {
		panic(err)
	}

	// The server logs through its own child node
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		root.CreateChild("http"),
		compat.WithDefaultLevel(logtree.LevelInformation),
		compat.WithLevelDetector(customLevelDetector),
	)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (logtree.Level, bool) {
	// fasthttp specific message patterns first
	if strings.Contains(msg, "connection cannot be served") {
		return logtree.LevelWarning, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return logtree.LevelError, true
	}

	return compat.DetectLogLevel(msg)
}
