package compat

import (
	"fmt"

	"github.com/lixenwraith/logtree"
)

// Builder creates adapters for gnet, fasthttp and Fiber that share one logtree node.
// It can use an existing node or create a root node with a file transport from a
// *logtree.FileConfig.
type Builder struct {
	logger    *logtree.Logger
	fileCfg   *logtree.FileConfig
	transport *logtree.FileTransport
	err       error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing node for the adapters to write into.
// If this is set WithFileConfig is ignored.
func (b *Builder) WithLogger(l *logtree.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("logtree/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithFileConfig configures the file transport of a new root node.
// It is used only if no node is provided via WithLogger. With neither,
// a root node with a default file transport is created.
func (b *Builder) WithFileConfig(cfg *logtree.FileConfig) *Builder {
	b.fileCfg = cfg
	return b
}

// getLogger resolves the node to be used, creating one if necessary
func (b *Builder) getLogger() (*logtree.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	l := logtree.New("")
	t, err := l.CreateFileTransport(b.fileCfg)
	if err != nil {
		return nil, err
	}

	// Cache the node for subsequent builds with this builder
	b.logger = l
	b.transport = t
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that extracts key/value pairs
// from format strings
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*GnetAdapter, error) {
	return b.BuildGnet(append(opts, WithFieldExtraction())...)
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// BuildFiber creates a Fiber v2 adapter
func (b *Builder) BuildFiber(opts ...FiberOption) (*FiberAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFiberAdapter(l, opts...), nil
}

// GetLogger returns the node the adapters write into, creating it if needed
func (b *Builder) GetLogger() (*logtree.Logger, error) {
	return b.getLogger()
}

// Close closes the file transport the builder created. Nodes supplied with
// WithLogger are left alone.
func (b *Builder) Close() error {
	if b.transport == nil {
		return nil
	}
	return b.transport.Close()
}

// --- Example Usage ---
//
//	root := logtree.New("app")
//	if _, err := root.CreateFileTransport(cfg); err != nil {
//		panic(err)
//	}
//
//	builder := compat.NewBuilder().WithLogger(root.CreateChild("net"))
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	go server.ListenAndServe(":8080")
