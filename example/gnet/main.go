// FILE: example/gnet/main.go
package main

import (
	"github.com/lixenwraith/logtree"
	"github.com/lixenwraith/logtree/compat"
	"github.com/panjf2000/gnet/v2"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	cfg, err := logtree.DefaultFileConfig().ApplyOverrides(
		"file_name=/var/log/gnet/engine.log",
		"level=debug",
		"format=json",
	)
	if err != nil {
		panic(err)
	}

	root := logtree.New("echo")
	file, err := root.CreateFileTransport(cfg)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	// "conn=%v" style format strings become key/value arguments
	gnetAdapter, err := compat.NewBuilder().
		WithLogger(root.CreateChild("gnet")).
		BuildStructuredGnet()
	if err != nil {
		panic(err)
	}

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
