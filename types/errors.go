package types

import (
	"errors"
	"fmt"
)

// 配置错误在迭代开始前返回,数值错误中止本次求解,均不自动重试
var (
	ErrEmptyNetwork         = errors.New("powernet: network has no buses")
	ErrUnknownBus           = errors.New("powernet: unknown bus reference")
	ErrUnknownBranch        = errors.New("powernet: unknown branch reference")
	ErrUnknownElement       = errors.New("powernet: unknown element reference")
	ErrDuplicateID          = errors.New("powernet: duplicate element id")
	ErrInvalidBranch        = errors.New("powernet: invalid branch parameters")
	ErrMultipleSlack        = errors.New("powernet: multiple slack buses in one island")
	ErrNoSlack              = errors.New("powernet: island without slack bus")
	ErrUnsupportedAlgorithm = errors.New("powernet: unsupported estimation algorithm")
	ErrInvalidOption        = errors.New("powernet: invalid solver option")
	ErrInvalidMeasurement   = errors.New("powernet: invalid measurement")
	ErrNoMeasurements       = errors.New("powernet: no measurements")
	ErrSingular             = errors.New("powernet: singular or ill-conditioned system")
	ErrNotConverged         = errors.New("powernet: iteration did not converge")
)

// ConvergenceError 迭代达到上限仍未满足容差
type ConvergenceError struct {
	Solver     string  // 求解器名称
	Iterations int     // 已执行迭代次数
	Residual   float64 // 最后一次迭代的最大残差
	Tolerance  float64 // 收敛容差
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations (residual %.3e, tolerance %.1e)",
		e.Solver, e.Iterations, e.Residual, e.Tolerance)
}

// Unwrap 支持 errors.Is(err, ErrNotConverged)
func (e *ConvergenceError) Unwrap() error { return ErrNotConverged }
