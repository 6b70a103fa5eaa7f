// Package maths 稀疏矩阵与向量运算,稠密求解桥接到 gonum。
package maths

import (
	"math"
	"math/cmplx"
)

// Epsilon 浮点精度阈值
const Epsilon = 1e-16

// Number 是一个约束,允许任何浮点或复数类型
type Number interface {
	~float64 | ~complex128
}

// Abs 返回任意 Number 类型的绝对值(复数取模)
func Abs[T Number](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return math.Abs(x)
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// Part 复数取实部或虚部
type Part func(complex128) float64

// 常用取值函数
var (
	RealPart Part = func(c complex128) float64 { return real(c) }
	ImagPart Part = func(c complex128) float64 { return imag(c) }
)
