package types

import "io"

// RunInfo 求解开始时的描述信息
type RunInfo struct {
	Solver    string   // 求解器名称
	Algorithm string   // 算法名称
	Buses     []string // 母线名称(按稠密索引)
	Tolerance float64  // 收敛容差
	MaxIter   int      // 最大迭代次数
}

// Iteration 单次迭代记录
type Iteration struct {
	Iter     int       // 迭代序号(从 1 开始)
	Residual float64   // 最大残差
	Vm       []float64 // 电压幅值(pu)
	Va       []float64 // 电压相角(rad)
}

// Debug 调试接口
type Debug interface {
	Init(info RunInfo)
	IsDebug() bool
	SetDebug(is bool)
	Update(it Iteration)
	Render(w io.Writer) error
	Error(err error)
}
