package maths

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// Polar 由幅值与相角构造复电压 v = Vm·e^{jVa}
func Polar(vm, va []float64) []complex128 {
	if len(vm) != len(va) {
		panic("maths: vector dimension mismatch")
	}
	v := make([]complex128, len(vm))
	for i := range vm {
		v[i] = cmplx.Rect(vm[i], va[i])
	}
	return v
}

// Normalize 返回 v/|v|,零元素保持为零
func Normalize(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		if a := cmplx.Abs(x); a > Epsilon {
			out[i] = x / complex(a, 0)
		}
	}
	return out
}

// MaxAbs 向量无穷范数,空向量返回 0
func MaxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}
