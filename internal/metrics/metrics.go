// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry 指标注册表
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	mu     sync.RWMutex
	values map[string]float64
}

// Gauge 仪表
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	mu     sync.RWMutex
	values map[string]float64
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	mu      sync.RWMutex
	counts  map[string][]int
	sums    map[string]float64
}

// New 创建注册表并注册服务的默认指标
func New() *Registry {
	r := &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}

	r.NewCounter("fifi_http_requests_total", "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram("fifi_http_request_duration_seconds", "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0})

	r.NewCounter("fifi_schedule_runs_total", "排班生成次数", []string{"status"})
	r.NewHistogram("fifi_solve_duration_seconds", "求解器耗时",
		[]string{"solver"},
		[]float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0})

	r.NewGauge("fifi_model_variables", "最近一次模型的变量数", nil)
	r.NewGauge("fifi_model_constraints", "最近一次模型的约束数", nil)
	r.NewGauge("fifi_fairness_gini", "最近一次排班的基尼系数", []string{"metric"})
	r.NewGauge("fifi_coverage_rate", "最近一次排班的班次覆盖率", nil)
	r.NewGauge("fifi_db_connections", "数据库连接数", []string{"state"})

	return r
}

// NewCounter 注册计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 注册仪表
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 注册直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Histogram{
		Name: name, Help: help, Labels: labels, Buckets: buckets,
		counts: make(map[string][]int),
		sums:   make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// Counter 按名取计数器，不存在返回nil
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Gauge 按名取仪表，不存在返回nil
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Histogram 按名取直方图，不存在返回nil
func (r *Registry) Histogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加1
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, ok := h.counts[key]; !ok {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}
	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
		}
	}
	h.counts[key][len(h.Buckets)]++
	h.sums[key] += value
}

// RecordRequest 记录一次HTTP请求
func (r *Registry) RecordRequest(method, path string, status int, duration time.Duration) {
	if c := r.Counter("fifi_http_requests_total"); c != nil {
		c.Inc(method, path, fmt.Sprintf("%d", status))
	}
	if h := r.Histogram("fifi_http_request_duration_seconds"); h != nil {
		h.Observe(duration.Seconds(), method, path)
	}
}

// RecordRun 记录一次排班生成
// status 取 success / infeasible / failure。
func (r *Registry) RecordRun(status, solverName string, duration time.Duration) {
	if c := r.Counter("fifi_schedule_runs_total"); c != nil {
		c.Inc(status)
	}
	if h := r.Histogram("fifi_solve_duration_seconds"); h != nil {
		h.Observe(duration.Seconds(), solverName)
	}
}

// RecordModelSize 记录最近一次模型规模
func (r *Registry) RecordModelSize(variables, constraints int) {
	if g := r.Gauge("fifi_model_variables"); g != nil {
		g.Set(float64(variables))
	}
	if g := r.Gauge("fifi_model_constraints"); g != nil {
		g.Set(float64(constraints))
	}
}

// Handler 返回Prometheus文本格式的指标HTTP处理器
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		r.mu.RLock()
		defer r.mu.RUnlock()

		for _, name := range sortedKeys(r.counters) {
			c := r.counters[name]
			fmt.Fprintf(w, "# HELP %s %s\n", c.Name, c.Help)
			fmt.Fprintf(w, "# TYPE %s counter\n", c.Name)
			c.mu.RLock()
			for _, key := range sortedKeys(c.values) {
				writeSample(w, c.Name, c.Labels, key, c.values[key])
			}
			c.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.gauges) {
			g := r.gauges[name]
			fmt.Fprintf(w, "# HELP %s %s\n", g.Name, g.Help)
			fmt.Fprintf(w, "# TYPE %s gauge\n", g.Name)
			g.mu.RLock()
			for _, key := range sortedKeys(g.values) {
				writeSample(w, g.Name, g.Labels, key, g.values[key])
			}
			g.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.histograms) {
			h := r.histograms[name]
			fmt.Fprintf(w, "# HELP %s %s\n", h.Name, h.Help)
			fmt.Fprintf(w, "# TYPE %s histogram\n", h.Name)
			h.mu.RLock()
			for _, key := range sortedKeys(h.counts) {
				writeHistogram(w, h, key)
			}
			h.mu.RUnlock()
		}
	})
}

func writeSample(w http.ResponseWriter, name string, labels []string, key string, value float64) {
	if key == "" {
		fmt.Fprintf(w, "%s %g\n", name, value)
		return
	}
	fmt.Fprintf(w, "%s{%s} %g\n", name, formatLabels(labels, key), value)
}

func writeHistogram(w http.ResponseWriter, h *Histogram, key string) {
	labels := ""
	if key != "" {
		labels = formatLabels(h.Labels, key) + ","
	}

	cumulative := 0
	for i, bucket := range h.Buckets {
		cumulative += h.counts[key][i]
		fmt.Fprintf(w, "%s_bucket{%sle=\"%g\"} %d\n", h.Name, labels, bucket, cumulative)
	}
	cumulative += h.counts[key][len(h.Buckets)]
	fmt.Fprintf(w, "%s_bucket{%sle=\"+Inf\"} %d\n", h.Name, labels, cumulative)

	suffix := ""
	if key != "" {
		suffix = "{" + formatLabels(h.Labels, key) + "}"
	}
	fmt.Fprintf(w, "%s_sum%s %g\n", h.Name, suffix, h.sums[key])
	fmt.Fprintf(w, "%s_count%s %d\n", h.Name, suffix, cumulative)
}

// labelKey 把标签值序列编码为map键
func labelKey(values []string) string {
	return strings.Join(values, "\x1f")
}

func formatLabels(names []string, key string) string {
	values := strings.Split(key, "\x1f")
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	return strings.Join(parts, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
