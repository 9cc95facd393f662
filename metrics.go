package logtree

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports file transport counters to Prometheus. Each transport is
// labelled by its file path.
type Collector struct {
	mu         sync.RWMutex
	transports map[string]*FileTransport

	records     *prometheus.Desc
	bytes       *prometheus.Desc
	rotations   *prometheus.Desc
	cleaned     *prometheus.Desc
	dropped     *prometheus.Desc
	errors      *prometheus.Desc
	currentSize *prometheus.Desc
}

// NewCollector creates a collector over the given transports. Register it
// with prometheus.MustRegister or a custom registry.
func NewCollector(namespace string, transports ...*FileTransport) *Collector {
	labels := []string{"file"}
	c := &Collector{
		transports:  make(map[string]*FileTransport),
		records:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "records_total"), "Records appended to the log file.", labels, nil),
		bytes:       prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "bytes_total"), "Encoded bytes appended to the log file.", labels, nil),
		rotations:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "rotations_total"), "Completed log file rotations.", labels, nil),
		cleaned:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "archives_cleaned_total"), "Archives deleted by retention.", labels, nil),
		dropped:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "records_dropped_total"), "Records that could not be rendered or arrived after close.", labels, nil),
		errors:      prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "errors_total"), "Filesystem failures swallowed while writing or rotating.", labels, nil),
		currentSize: prometheus.NewDesc(prometheus.BuildFQName(namespace, "file", "current_size_bytes"), "Bytes accounted to the active log file.", labels, nil),
	}
	for _, t := range transports {
		c.Add(t)
	}
	return c
}

// Add starts exporting t
func (c *Collector) Add(t *FileTransport) {
	c.mu.Lock()
	c.transports[t.FileName()] = t
	c.mu.Unlock()
}

// Remove stops exporting t
func (c *Collector) Remove(t *FileTransport) {
	c.mu.Lock()
	delete(c.transports, t.FileName())
	c.mu.Unlock()
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.bytes
	ch <- c.rotations
	ch <- c.cleaned
	ch <- c.dropped
	ch <- c.errors
	ch <- c.currentSize
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for file, t := range c.transports {
		s := t.Stats()
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.CounterValue, float64(s.Records), file)
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Bytes), file)
		ch <- prometheus.MustNewConstMetric(c.rotations, prometheus.CounterValue, float64(s.Rotations), file)
		ch <- prometheus.MustNewConstMetric(c.cleaned, prometheus.CounterValue, float64(s.Cleaned), file)
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), file)
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors), file)
		ch <- prometheus.MustNewConstMetric(c.currentSize, prometheus.GaugeValue, float64(s.CurrentSize), file)
	}
}
