// Package powernet 配电网潮流计算与状态估计。
package powernet

import (
	"fmt"
	"os"
	"time"

	"powernet/estimation"
	"powernet/load"
	"powernet/loadflow"
	"powernet/metrics"
	"powernet/network"
	"powernet/types"
	"powernet/ybus"
)

// Powernet 网络计算器
type Powernet struct {
	*network.Network
	Metrics *metrics.Metrics // 求解指标,可为空
}

// NewPowernet 初始化
func NewPowernet(net *network.Network) *Powernet {
	return &Powernet{Network: net}
}

// Load 加载案例文件
func Load(filename string) (*Powernet, error) {
	net, err := load.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewPowernet(net), nil
}

// Export 导出 YAML 案例文件
func (p *Powernet) Export(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = load.Export(file, p.Network); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadFlow 潮流计算,结果写入 State
func (p *Powernet) LoadFlow(opts ...loadflow.Option) (*loadflow.Result, error) {
	start := time.Now()
	r, err := loadflow.Solve(p.Network, opts...)
	p.observe("loadflow", start, err, func() (types.Status, int, float64) {
		return r.Status, r.Iterations, r.Residual
	})
	return r, err
}

// Estimate 状态估计,结果写入 Estimate
func (p *Powernet) Estimate(opts ...estimation.Option) (*estimation.Result, error) {
	start := time.Now()
	r, err := estimation.Estimate(p.Network, opts...)
	p.observe("estimation", start, err, func() (types.Status, int, float64) {
		return r.Status, r.Iterations, r.Residual
	})
	return r, err
}

// Synthesize 以收敛的潮流结果生成量测并替换现有量测
func (p *Powernet) Synthesize(std float64) error {
	if !p.State.Solved() || !p.State.Converged {
		return fmt.Errorf("synthesize measurements: load flow has not converged: %w", types.ErrNotConverged)
	}
	model, err := ybus.Build(p.Network)
	if err != nil {
		return err
	}
	return p.UseMeasurements(estimation.Synthesize(model, p.State.Vm, p.State.Va, std))
}

// observe 记录指标
func (p *Powernet) observe(solver string, start time.Time, err error, result func() (types.Status, int, float64)) {
	if p.Metrics == nil {
		return
	}
	if err != nil {
		p.Metrics.Fail(solver, time.Since(start))
		return
	}
	status, iter, residual := result()
	p.Metrics.Observe(solver, status, iter, residual, time.Since(start))
}
