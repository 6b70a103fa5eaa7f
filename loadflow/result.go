package loadflow

import (
	"github.com/google/uuid"

	"powernet/types"
)

// Flow 支路首末端功率(pu)
type Flow struct {
	Branch types.BranchIndex `json:"branch"` // 支路索引
	Name   string            `json:"name"`   // 支路名称
	From   complex128        `json:"-"`      // 首端流出功率
	To     complex128        `json:"-"`      // 末端流出功率
}

// Loss 支路损耗
func (f *Flow) Loss() complex128 { return f.From + f.To }

// Result 潮流计算结果,未收敛时保存最后一次迭代值
type Result struct {
	RunID      uuid.UUID    // 本次求解编号
	Status     types.Status // 求解状态
	Iterations int          // 迭代次数
	Residual   float64      // 最后一次迭代的最大不平衡量
	Residuals  []float64    // 每次迭代的最大不平衡量
	Tolerance  float64      // 收敛容差
	Vm         []float64    // 电压幅值(pu)
	Va         []float64    // 电压相角(rad)
	Injection  []complex128 // 母线注入功率(pu)
	Flows      []Flow       // 支路功率(按支路行)
}

// Converged 是否收敛
func (r *Result) Converged() bool { return r.Status == types.Converged }

// Err 未收敛时返回 *types.ConvergenceError
func (r *Result) Err() error {
	if r.Status == types.Converged {
		return nil
	}
	return &types.ConvergenceError{
		Solver:     "load flow",
		Iterations: r.Iterations,
		Residual:   r.Residual,
		Tolerance:  r.Tolerance,
	}
}
