package estimation

import (
	"github.com/google/uuid"

	"powernet/types"
)

// Result 状态估计结果,未收敛时保存最后一次迭代值
type Result struct {
	RunID      uuid.UUID       // 本次求解编号
	Algorithm  types.Algorithm // 估计算法
	Status     types.Status    // 求解状态
	Iterations int             // 迭代次数
	Residual   float64         // 最后一次迭代的最大修正量
	Residuals  []float64       // 每次迭代的最大修正量
	Tolerance  float64         // 收敛容差
	Vm         []float64       // 电压幅值(pu)
	Va         []float64       // 电压相角(rad)
	Objective  float64         // 目标函数值:WLS 为 Σw·r²,LAV 为 Σ|r|
}

// Converged 是否收敛
func (r *Result) Converged() bool { return r.Status == types.Converged }

// Err 未收敛时返回 *types.ConvergenceError
func (r *Result) Err() error {
	if r.Status == types.Converged {
		return nil
	}
	return &types.ConvergenceError{
		Solver:     string(r.Algorithm) + " state estimation",
		Iterations: r.Iterations,
		Residual:   r.Residual,
		Tolerance:  r.Tolerance,
	}
}
