// Package jacobian 复功率对电压幅值与相角的偏导数。
//
// 记 I = Y·v, v̂ = v/|v|:
//
//	∂S/∂Vm = diag(v)·conj(Y·diag(v̂)) + conj(diag(I))·diag(v̂)
//	∂S/∂Va = j·diag(v)·conj(diag(I) − Y·diag(v))
//
// 支路一端(导纳 Ys,端母线 f):
//
//	∂S/∂Vm = diag(v_f)·conj(Ys·diag(v̂)) + conj(diag(Is))·C·diag(v̂)
//	∂S/∂Va = j·(conj(diag(Is))·C·diag(v) − diag(v_f)·conj(Ys·diag(v)))
package jacobian

import (
	"fmt"
	"math/cmplx"

	"powernet/maths"
	"powernet/types"
)

// Bus 母线注入功率的偏导数 ∂S/∂Vm, ∂S/∂Va (N×N)
func Bus(y *maths.Sparse[complex128], v []complex128) (dVm, dVa *maths.Sparse[complex128]) {
	n, _ := y.Dims()
	side := make([]types.BusIndex, n)
	for i := range side {
		side[i] = i
	}
	return derivatives(y, side, v)
}

// Branch 支路一端功率的偏导数 ∂S/∂Vm, ∂S/∂Va (M×N),side 为每行对应的端母线
func Branch(ys *maths.Sparse[complex128], side []types.BusIndex, v []complex128) (dVm, dVa *maths.Sparse[complex128]) {
	return derivatives(ys, side, v)
}

// derivatives 第 l 行功率为 v_{side[l]}·conj((Ys·v)_l)
func derivatives(ys *maths.Sparse[complex128], side []types.BusIndex, v []complex128) (dVm, dVa *maths.Sparse[complex128]) {
	m, n := ys.Dims()
	if len(side) != m || len(v) != n {
		panic(fmt.Sprintf("jacobian: dimension mismatch: Y %dx%d, side %d, v %d", m, n, len(side), len(v)))
	}
	current := ys.MulVec(v)
	vn := maths.Normalize(v)
	dVm = maths.NewSparse[complex128](m, n)
	dVa = maths.NewSparse[complex128](m, n)
	ys.Do(func(l, k int, y complex128) {
		vf := v[side[l]]
		dVm.Increment(l, k, vf*cmplx.Conj(y*vn[k]))
		dVa.Increment(l, k, -1i*vf*cmplx.Conj(y*v[k]))
	})
	for l, f := range side {
		ic := cmplx.Conj(current[l])
		dVm.Increment(l, f, ic*vn[f])
		dVa.Increment(l, f, 1i*ic*v[f])
	}
	return dVm, dVa
}
