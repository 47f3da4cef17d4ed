package observability

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics is the process-wide metric registry, exposed as Prometheus text on
// /metrics. Registration is explicit: every series lives on this struct.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	cartOps      *CounterVec
	snapshotSave *CounterVec
	snapshotLoad *CounterVec
	remotePush   *CounterVec
	remotePull   *CounterVec

	sseClients *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func Init() *Metrics {
	initOnce.Do(func() {
		if !Enabled() {
			return
		}
		instance = &Metrics{
			apiRequests: NewCounterVec("storefront_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
			apiLatency:  NewHistogramVec("storefront_api_latency_seconds", "API request latency.", []string{"method", "route"}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}),
			apiInflight: NewGauge("storefront_api_inflight", "In-flight API requests."),

			cartOps:      NewCounterVec("storefront_cart_ops_total", "Cart engine operations by op and whether state changed.", []string{"op", "changed"}),
			snapshotSave: NewCounterVec("storefront_cart_snapshot_save_total", "Durable snapshot save outcomes.", []string{"outcome"}),
			snapshotLoad: NewCounterVec("storefront_cart_snapshot_load_total", "Durable snapshot load outcomes.", []string{"outcome"}),
			remotePush:   NewCounterVec("storefront_cart_remote_push_total", "Remote cart push outcomes.", []string{"outcome"}),
			remotePull:   NewCounterVec("storefront_cart_remote_pull_total", "Remote cart pull outcomes.", []string{"outcome"}),

			sseClients: NewGauge("storefront_sse_clients", "Connected SSE clients."),
		}
	})
	return instance
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveCartOp(op string, changed bool) {
	if m == nil {
		return
	}
	c := "false"
	if changed {
		c = "true"
	}
	m.cartOps.Inc(op, c)
}

func (m *Metrics) ObserveSnapshotSave(outcome string) {
	if m == nil {
		return
	}
	m.snapshotSave.Inc(outcome)
}

func (m *Metrics) ObserveSnapshotLoad(outcome string) {
	if m == nil {
		return
	}
	m.snapshotLoad.Inc(outcome)
}

func (m *Metrics) ObserveRemotePush(outcome string) {
	if m == nil {
		return
	}
	m.remotePush.Inc(outcome)
}

func (m *Metrics) ObserveRemotePull(outcome string) {
	if m == nil {
		return
	}
	m.remotePull.Inc(outcome)
}

func (m *Metrics) SSEClientsInc() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientsDec() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.cartOps, m.snapshotSave, m.snapshotLoad,
		m.remotePush, m.remotePull, m.sseClients,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names))
	for i, n := range names {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", n, v))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

type CounterVec struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl]++
	c.mu.Unlock()
}

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl] += v
	c.mu.Unlock()
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	lbl := labelString(c.labelNames, values)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[lbl]
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s counter\n", c.name); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", c.name, k, c.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type Gauge struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val = v
	g.mu.Unlock()
}

func (g *Gauge) Inc() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val++
	g.mu.Unlock()
}

func (g *Gauge) Dec() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val--
	g.mu.Unlock()
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s gauge\n", g.name); err != nil {
		return err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, err := fmt.Fprintf(w, "%s %f\n", g.name, g.val)
	return err
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	counts     map[string][]float64
	sums       map[string]float64
	totals     map[string]float64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	return &HistogramVec{
		name:       name,
		help:       help,
		labelNames: labels,
		buckets:    buckets,
		counts:     map[string][]float64{},
		sums:       map[string]float64{},
		totals:     map[string]float64{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	buckets, ok := h.counts[lbl]
	if !ok {
		buckets = make([]float64, len(h.buckets))
		h.counts[lbl] = buckets
	}
	for i, upper := range h.buckets {
		if v <= upper {
			buckets[i]++
		}
	}
	h.sums[lbl] += v
	h.totals[lbl]++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", h.name, h.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s histogram\n", h.name); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.counts))
	for k := range h.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, lbl := range keys {
		inner := strings.TrimSuffix(strings.TrimPrefix(lbl, "{"), "}")
		for i, upper := range h.buckets {
			le := fmt.Sprintf("le=%q", fmt.Sprintf("%g", upper))
			full := "{" + inner
			if inner != "" {
				full += ","
			}
			full += le + "}"
			if _, err := fmt.Fprintf(w, "%s_bucket%s %f\n", h.name, full, h.counts[lbl][i]); err != nil {
				return err
			}
		}
		infLbl := "{" + inner
		if inner != "" {
			infLbl += ","
		}
		infLbl += `le="+Inf"}`
		if _, err := fmt.Fprintf(w, "%s_bucket%s %f\n", h.name, infLbl, h.totals[lbl]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %f\n", h.name, lbl, h.sums[lbl]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_count%s %f\n", h.name, lbl, h.totals[lbl]); err != nil {
			return err
		}
	}
	return nil
}
