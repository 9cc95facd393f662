// FILE: lixenwraith/logtree/benchmark_test.go
package logtree

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func BenchmarkPropagateFiltered(b *testing.B) {
	l := New("bench", WithLevel(LevelError))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Info("filtered", i)
	}
}

func BenchmarkPropagateChain(b *testing.B) {
	root := New("root")
	node := root
	for i := 0; i < 5; i++ {
		node = New("n", WithParent(node))
	}
	root.OnOutput(func(Record) {})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		node.Info("chained", i)
	}
}

func BenchmarkFileTransport(b *testing.B) {
	cfg := DefaultFileConfig()
	cfg.FileName = filepath.Join("/bench", "app.log")
	cfg.MaxFileSize = 1 << 20
	cfg.MaxArchiveCount = 3

	tr, err := NewFileTransport(cfg, WithFs(afero.NewMemMapFs()))
	if err != nil {
		b.Fatal(err)
	}
	defer tr.Close()
	l := New("bench")
	tr.Attach(l)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			l.Info("benchmark message", i, true)
			i++
		}
	})
}
