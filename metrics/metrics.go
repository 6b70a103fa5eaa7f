// Package metrics 求解次数、迭代次数与残差的 prometheus 指标。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"powernet/types"
)

// Failed 求解报错时的 outcome 标签
const Failed = "error"

// Metrics 指标集合,每个实例使用独立的注册表
type Metrics struct {
	Registry   *prometheus.Registry
	solves     *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	residual   *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

// New 创建并注册指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		solves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "powernet_solves_total",
			Help: "Number of solves by solver and outcome.",
		}, []string{"solver", "outcome"}),
		iterations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "powernet_iterations",
			Help:    "Iterations used per finished solve.",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15, 20, 30, 50, 100},
		}, []string{"solver"}),
		residual: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "powernet_last_residual",
			Help: "Maximum residual of the last finished solve.",
		}, []string{"solver"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "powernet_solve_seconds",
			Help:    "Wall time per solve.",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"solver"}),
	}
}

// Observe 记录一次完成的求解(收敛或不收敛)
func (m *Metrics) Observe(solver string, status types.Status, iterations int, residual float64, elapsed time.Duration) {
	m.solves.WithLabelValues(solver, status.String()).Inc()
	m.iterations.WithLabelValues(solver).Observe(float64(iterations))
	m.residual.WithLabelValues(solver).Set(residual)
	m.duration.WithLabelValues(solver).Observe(elapsed.Seconds())
}

// Fail 记录一次报错的求解
func (m *Metrics) Fail(solver string, elapsed time.Duration) {
	m.solves.WithLabelValues(solver, Failed).Inc()
	m.duration.WithLabelValues(solver).Observe(elapsed.Seconds())
}

// Solves 求解计数,供测试与汇总使用
func (m *Metrics) Solves(solver, outcome string) prometheus.Counter {
	return m.solves.WithLabelValues(solver, outcome)
}

// Handler 导出指标
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
