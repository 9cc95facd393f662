// FILE: example/raw/main.go
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/logtree"
)

// TestPayload defines a struct for testing complex type serialization.
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

func main() {
	fmt.Println("--- Output Format Test ---")

	byteRecord := []byte("binary\ndata\twith\x00null")
	structRecord := TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms":  15.7,
			"cpu_percent": 88.2,
		},
	}

	// One node, one console transport per format
	node := logtree.New("payloads")
	for _, format := range []string{logtree.FormatTxt, logtree.FormatJSON, logtree.FormatRaw} {
		cfg, err := logtree.DefaultConsoleConfig().ApplyOverrides(
			"destination=stdout",
			"format="+format,
			"sanitization=raw",
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid console config: %v\n", err)
			os.Exit(1)
		}
		console, err := logtree.NewConsoleTransport(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create console transport: %v\n", err)
			os.Exit(1)
		}
		console.Attach(node)
		defer console.Close()
	}

	fmt.Println("\n[1] Unsanitized byte and struct records")
	node.Info("Byte Record ->", byteRecord)
	node.Info("Struct Record ->", structRecord)

	// Same records through a file transport that hex-encodes control bytes
	fmt.Println("\n[2] Line-sanitized raw file output in ./raw.log")
	file, err := logtree.NewBuilder().
		FileName("raw.log").
		Format(logtree.FormatRaw).
		Sanitization("line").
		DisableRotation().
		AttachTo(node).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file transport: %v\n", err)
		os.Exit(1)
	}
	node.Info("Byte Record ->", byteRecord)
	if err := file.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}

	fmt.Println("\n--- Test Complete ---")
}
