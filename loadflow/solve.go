// Package loadflow 牛顿-拉夫逊法交流潮流计算。
package loadflow

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"powernet/graph"
	"powernet/jacobian"
	"powernet/maths"
	"powernet/network"
	"powernet/types"
	"powernet/ybus"
)

// Solver 潮流迭代
type Solver struct {
	*Options
	Model    *ybus.Model      // 导纳模型
	PVPQ     []types.BusIndex // 相角待求母线
	PQ       []types.BusIndex // 幅值待求母线
	PSch     []float64        // 计划有功注入(pu)
	QSch     []float64        // 计划无功注入(pu)
	Vm       []float64        // 当前电压幅值
	Va       []float64        // 当前电压相角
	Iter     int              // 已执行迭代次数
	Residual float64          // 最近一次最大不平衡量
}

// NewSolver 校验拓扑、形成导纳矩阵并设置初值
func NewSolver(net *network.Network, opts ...Option) (*Solver, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	g, err := graph.NewGraph(net)
	if err != nil {
		return nil, err
	}
	if err = g.CheckSlack(net.Buses); err != nil {
		return nil, err
	}
	model, err := ybus.Build(net)
	if err != nil {
		return nil, err
	}
	solver := &Solver{Options: o, Model: model}
	solver.PVPQ, solver.PQ = Partition(net.Buses)
	solver.PSch, solver.QSch = Scheduled(net)
	solver.Vm, solver.Va = Initial(net, g)
	return solver, nil
}

// Solve 潮流计算,结果写回 net.State
//
// 未收敛不是错误:返回 Status 为 Diverged 的结果,由 Result.Err 给出原因。
// 配置错误在迭代前返回,雅可比矩阵奇异时中止求解。
func Solve(net *network.Network, opts ...Option) (*Result, error) {
	solver, err := NewSolver(net, opts...)
	if err != nil {
		return nil, err
	}
	if solver.debugging() {
		solver.Debug.Init(types.RunInfo{
			Solver:    "loadflow",
			Algorithm: "Newton-Raphson",
			Buses:     net.BusNames(),
			Tolerance: solver.Tolerance,
			MaxIter:   solver.MaxIteration,
		})
	}
	ok, residuals, err := solver.Iterate()
	if err != nil {
		if solver.debugging() {
			solver.Debug.Error(err)
		}
		return nil, err
	}
	net.SetState(solver.Vm, solver.Va, ok, solver.Iter, solver.Residual)
	return solver.result(net, ok, residuals), nil
}

// Iterate 牛顿迭代,先检查收敛再修正,收敛时状态即为满足容差的迭代点
func (solver *Solver) Iterate() (ok bool, residuals []float64, err error) {
	npvpq, npq := len(solver.PVPQ), len(solver.PQ)
	for solver.Iter = 1; solver.Iter <= solver.MaxIteration; solver.Iter++ {
		v := maths.Polar(solver.Vm, solver.Va)
		f := solver.Mismatch(v)
		solver.Residual = maths.MaxAbs(f)
		residuals = append(residuals, solver.Residual)
		if solver.debugging() {
			solver.Debug.Update(types.Iteration{
				Iter:     solver.Iter,
				Residual: solver.Residual,
				Vm:       append([]float64(nil), solver.Vm...),
				Va:       append([]float64(nil), solver.Va...),
			})
		}
		if solver.Residual < solver.Tolerance {
			return true, residuals, nil
		}
		// 降阶雅可比矩阵
		//	[ Re ∂S/∂Va(pvpq,pvpq)  Re ∂S/∂Vm(pvpq,pq) ]
		//	[ Im ∂S/∂Va(pq,pvpq)    Im ∂S/∂Vm(pq,pq)   ]
		dVm, dVa := jacobian.Bus(solver.Model.Y, v)
		j := mat.NewDense(npvpq+npq, npvpq+npq, nil)
		maths.FillBlock(j, 0, 0, dVa, solver.PVPQ, solver.PVPQ, maths.RealPart)
		maths.FillBlock(j, 0, npvpq, dVm, solver.PVPQ, solver.PQ, maths.RealPart)
		maths.FillBlock(j, npvpq, 0, dVa, solver.PQ, solver.PVPQ, maths.ImagPart)
		maths.FillBlock(j, npvpq, npvpq, dVm, solver.PQ, solver.PQ, maths.ImagPart)
		for k := range f {
			f[k] = -f[k]
		}
		dx, err := maths.Solve(j, f)
		if err != nil {
			return false, residuals, fmt.Errorf("load flow iteration %d: %w: %w", solver.Iter, types.ErrSingular, err)
		}
		for k, i := range solver.PVPQ {
			solver.Va[i] += dx[k]
		}
		for k, i := range solver.PQ {
			solver.Vm[i] += dx[npvpq+k]
		}
	}
	solver.Iter = solver.MaxIteration
	return false, residuals, nil
}

// Mismatch 功率不平衡量 F = [P(pvpq) − Psch; Q(pq) − Qsch]
func (solver *Solver) Mismatch(v []complex128) []float64 {
	s := solver.Model.InjectedPower(v)
	f := make([]float64, 0, len(solver.PVPQ)+len(solver.PQ))
	for _, i := range solver.PVPQ {
		f = append(f, real(s[i])-solver.PSch[i])
	}
	for _, i := range solver.PQ {
		f = append(f, imag(s[i])-solver.QSch[i])
	}
	return f
}

// result 汇总求解结果
func (solver *Solver) result(net *network.Network, ok bool, residuals []float64) *Result {
	v := maths.Polar(solver.Vm, solver.Va)
	r := &Result{
		RunID:      uuid.New(),
		Status:     types.Diverged,
		Iterations: solver.Iter,
		Residual:   solver.Residual,
		Residuals:  residuals,
		Tolerance:  solver.Tolerance,
		Vm:         append([]float64(nil), solver.Vm...),
		Va:         append([]float64(nil), solver.Va...),
		Injection:  solver.Model.InjectedPower(v),
	}
	if ok {
		r.Status = types.Converged
	}
	sf, st := solver.Model.BranchFlows(v)
	for k := range sf {
		b := solver.Model.Branch[k]
		r.Flows = append(r.Flows, Flow{Branch: b, Name: net.Branches[b].Label(), From: sf[k], To: st[k]})
	}
	return r
}
