package jacobian

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"powernet/maths"
	"powernet/types"
)

// power 第 l 行功率 v_{side[l]}·conj((Y·v)_l)
func power(y *maths.Sparse[complex128], side []types.BusIndex, vm, va []float64) []complex128 {
	v := maths.Polar(vm, va)
	i := y.MulVec(v)
	s := make([]complex128, len(side))
	for l, f := range side {
		s[l] = v[f] * cmplx.Conj(i[l])
	}
	return s
}

// checkFiniteDifference 与中心差分比较
func checkFiniteDifference(t *testing.T, y *maths.Sparse[complex128], side []types.BusIndex, dVm, dVa *maths.Sparse[complex128]) {
	t.Helper()
	vm := []float64{1.03, 0.98, 0.95}
	va := []float64{0.02, -0.05, -0.11}
	const h = 1e-6
	for k := range vm {
		for _, c := range []struct {
			x   []float64
			jac *maths.Sparse[complex128]
		}{{vm, dVm}, {va, dVa}} {
			x0 := c.x[k]
			c.x[k] = x0 + h
			sp := power(y, side, vm, va)
			c.x[k] = x0 - h
			sm := power(y, side, vm, va)
			c.x[k] = x0
			for l := range side {
				fd := (sp[l] - sm[l]) / complex(2*h, 0)
				assert.InDelta(t, 0, cmplx.Abs(fd-c.jac.At(l, k)), 1e-6, "row %d col %d", l, k)
			}
		}
	}
}

func admittance() *maths.Sparse[complex128] {
	y := maths.NewSparse[complex128](3, 3)
	y.BuildFromDense([][]complex128{
		{10 - 30i, -5 + 15i, -5 + 15.2i},
		{-5 + 15i, 8 - 24i, -3 + 9i},
		{-4.9 + 15.1i, -3 + 9i, 8 - 24.3i},
	})
	return y
}

func TestBusMatchesFiniteDifference(t *testing.T) {
	y := admittance()
	v := maths.Polar([]float64{1.03, 0.98, 0.95}, []float64{0.02, -0.05, -0.11})
	dVm, dVa := Bus(y, v)
	checkFiniteDifference(t, y, []types.BusIndex{0, 1, 2}, dVm, dVa)
}

func TestBranchMatchesFiniteDifference(t *testing.T) {
	// 两条支路 0→1, 1→2 的首端与末端导纳
	yf := maths.NewSparse[complex128](2, 3)
	yf.BuildFromDense([][]complex128{{4 - 12i, -4 + 12i, 0}, {0, 2 - 6.1i, -2 + 6i}})
	yt := maths.NewSparse[complex128](2, 3)
	yt.BuildFromDense([][]complex128{{-4 + 12i, 4 - 12i, 0}, {0, -2 + 6i, 2 - 6.1i}})
	v := maths.Polar([]float64{1.03, 0.98, 0.95}, []float64{0.02, -0.05, -0.11})

	from := []types.BusIndex{0, 1}
	dVm, dVa := Branch(yf, from, v)
	checkFiniteDifference(t, yf, from, dVm, dVa)

	to := []types.BusIndex{1, 2}
	dVm, dVa = Branch(yt, to, v)
	checkFiniteDifference(t, yt, to, dVm, dVa)
}

func TestDimensionMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Bus(admittance(), make([]complex128, 2)) })
}
