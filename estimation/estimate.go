// Package estimation 加权最小二乘(WLS)与最小绝对值(LAV)状态估计。
package estimation

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"powernet/maths"
	"powernet/network"
	"powernet/types"
	"powernet/ybus"
)

// Estimator 状态估计迭代
type Estimator struct {
	*Options
	Model        *ybus.Model   // 导纳模型
	Measurements *Measurements // 量测
	States       *States       // 状态量
	Vm           []float64     // 当前电压幅值
	Va           []float64     // 当前电压相角
	Iter         int           // 已执行迭代次数
	Residual     float64       // 最近一次最大修正量
	step         Step
}

// NewEstimator 形成导纳矩阵、组装量测并设置初值
//
// 参考母线为标记为平衡节点的母线,均未标记时取母线 0。
// 初值为平启动,参考母线取其设定值。
func NewEstimator(net *network.Network, opts ...Option) (*Estimator, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	step, err := stepFor(o.Algorithm)
	if err != nil {
		return nil, err
	}
	model, err := ybus.Build(net)
	if err != nil {
		return nil, err
	}
	ms, err := Assemble(net, model)
	if err != nil {
		return nil, err
	}
	ref := net.SlackBuses()
	if len(ref) == 0 {
		ref = []types.BusIndex{0}
	}
	e := &Estimator{
		Options:      o,
		Model:        model,
		Measurements: ms,
		States:       NewStates(net.N(), ref, o.SlackMagnitude),
		Vm:           make([]float64, net.N()),
		Va:           make([]float64, net.N()),
		step:         step,
	}
	for i := range e.Vm {
		e.Vm[i] = 1
	}
	for _, i := range ref {
		if bus := net.Buses[i]; bus.Type == types.Slack {
			e.Vm[i], e.Va[i] = bus.Setpoint()
		}
	}
	if n, m := e.States.Len(), len(ms.Z); m < n {
		return nil, fmt.Errorf("%d measurements for %d states: %w", m, n, types.ErrSingular)
	}
	return e, nil
}

// Estimate 状态估计,结果写回 net.Estimate
//
// 未收敛不是错误:返回 Status 为 Diverged 的结果,由 Result.Err 给出原因。
func Estimate(net *network.Network, opts ...Option) (*Result, error) {
	e, err := NewEstimator(net, opts...)
	if err != nil {
		return nil, err
	}
	if e.debugging() {
		e.Debug.Init(types.RunInfo{
			Solver:    "estimation",
			Algorithm: e.Algorithm.String(),
			Buses:     net.BusNames(),
			Tolerance: e.Tolerance,
			MaxIter:   e.MaxIteration,
		})
	}
	ok, residuals, err := e.Iterate()
	if err != nil {
		if e.debugging() {
			e.Debug.Error(err)
		}
		return nil, err
	}
	net.SetEstimate(e.Vm, e.Va, ok, e.Iter, e.Residual)
	r := &Result{
		RunID:      uuid.New(),
		Algorithm:  e.Algorithm,
		Status:     types.Diverged,
		Iterations: e.Iter,
		Residual:   e.Residual,
		Residuals:  residuals,
		Tolerance:  e.Tolerance,
		Vm:         append([]float64(nil), e.Vm...),
		Va:         append([]float64(nil), e.Va...),
		Objective:  e.Objective(),
	}
	if ok {
		r.Status = types.Converged
	}
	return r, nil
}

// Iterate 高斯-牛顿迭代,修正后检查 max|Δx| 是否小于容差
func (e *Estimator) Iterate() (ok bool, residuals []float64, err error) {
	if e.States.Len() == 0 {
		e.Iter, e.Residual = 1, 0
		return true, []float64{0}, nil
	}
	ms := e.Measurements
	r := make([]float64, len(ms.Z))
	for e.Iter = 1; e.Iter <= e.MaxIteration; e.Iter++ {
		v := maths.Polar(e.Vm, e.Va)
		hx, h := ms.Evaluate(e.Model, e.States, v)
		for k := range r {
			r[k] = ms.Z[k] - hx[k]
		}
		dx, err := e.step(h, ms.W, r)
		if err != nil {
			if e.Iter == 1 || maths.MaxAbs(r) >= e.Tolerance {
				return false, residuals, fmt.Errorf("%s iteration %d: %w", e.Algorithm, e.Iter, err)
			}
			// 量测已与当前状态吻合,以零修正量收敛
			dx = make([]float64, e.States.Len())
		}
		e.States.Apply(e.Vm, e.Va, dx)
		e.Residual = maths.MaxAbs(dx)
		residuals = append(residuals, e.Residual)
		if e.debugging() {
			e.Debug.Update(types.Iteration{
				Iter:     e.Iter,
				Residual: e.Residual,
				Vm:       append([]float64(nil), e.Vm...),
				Va:       append([]float64(nil), e.Va...),
			})
		}
		if e.Residual < e.Tolerance {
			return true, residuals, nil
		}
	}
	e.Iter = e.MaxIteration
	return false, residuals, nil
}

// Objective 当前状态下的目标函数值
func (e *Estimator) Objective() float64 {
	ms := e.Measurements
	hx := ms.Measure(e.Model, maths.Polar(e.Vm, e.Va))
	var j float64
	for k := range hx {
		r := ms.Z[k] - hx[k]
		if e.Algorithm == types.LAV {
			j += math.Abs(r)
		} else {
			j += ms.W[k] * r * r
		}
	}
	return j
}
