package network

import (
	"math"
	"slices"

	"powernet/maths"
	"powernet/types"
)

// State 求解得到的母线电压,未收敛时保存最后一次迭代值
type State struct {
	Vm         []float64 // 电压幅值(pu)
	Va         []float64 // 电压相角(rad)
	Converged  bool      // 是否收敛
	Iterations int       // 迭代次数
	Residual   float64   // 最后一次迭代的最大残差
}

// Solved 是否已写入结果
func (s *State) Solved() bool { return len(s.Vm) > 0 }

// Voltage 复电压向量
func (s *State) Voltage() []complex128 { return maths.Polar(s.Vm, s.Va) }

// AngleDeg 相角(度)
func (s *State) AngleDeg() []float64 {
	out := make([]float64, len(s.Va))
	for i, a := range s.Va {
		out[i] = types.Rad2Deg(a)
	}
	return out
}

// MaxDeviation 两组结果的最大幅值偏差与最大相角偏差
func (s *State) MaxDeviation(other *State) (dvm, dva float64) {
	for i := range s.Vm {
		dvm = math.Max(dvm, math.Abs(s.Vm[i]-other.Vm[i]))
		dva = math.Max(dva, math.Abs(s.Va[i]-other.Va[i]))
	}
	return dvm, dva
}

// set 写入结果
func (s *State) set(vm, va []float64, converged bool, iterations int, residual float64) {
	s.Vm = slices.Clone(vm)
	s.Va = slices.Clone(va)
	s.Converged = converged
	s.Iterations = iterations
	s.Residual = residual
}

// SetState 写入潮流结果
func (net *Network) SetState(vm, va []float64, converged bool, iterations int, residual float64) {
	net.State.set(vm, va, converged, iterations, residual)
}

// SetEstimate 写入状态估计结果
func (net *Network) SetEstimate(vm, va []float64, converged bool, iterations int, residual float64) {
	net.Estimate.set(vm, va, converged, iterations, residual)
}
