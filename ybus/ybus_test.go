package ybus

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powernet/maths"
	"powernet/network"
	"powernet/types"
)

const eps = 1e-9

// feeder 11kV 三母线线路 + 0.4kV 变压器末端,共 4 条母线
func feeder(t *testing.T, bTotal float64, tr types.Transformer) *network.Network {
	t.Helper()
	net, err := network.New("feeder", 1, 50)
	require.NoError(t, err)
	for id, kv := range []float64{11, 11, 11, 0.4} {
		_, err = net.AddBus(types.Bus{ID: id + 1, VoltageLevelKV: kv})
		require.NoError(t, err)
	}
	// 11kV, 1MVA: Z_base = 121Ω
	l1 := types.Line{ROhm: 1.21, XOhm: 12.1, BTotalMho: bTotal}
	l2 := types.Line{ROhm: 2.42, XOhm: 6.05, BTotalMho: bTotal}
	_, err = net.AddBranch(types.Branch{ID: 1, Kind: types.KindLine, Closed: true, Line: &l1}, 1, 2)
	require.NoError(t, err)
	_, err = net.AddBranch(types.Branch{ID: 2, Kind: types.KindLine, Closed: true, Line: &l2}, 2, 3)
	require.NoError(t, err)
	_, err = net.AddBranch(types.Branch{ID: 3, Kind: types.KindTransformer, Closed: true, Transformer: &tr}, 3, 4)
	require.NoError(t, err)
	return net
}

func plainTransformer() types.Transformer {
	return types.Transformer{RatedSMVA: 1, VRatedHighKV: 11, VRatedLowKV: 0.4, RPU: 0.01, XPU: 0.05}
}

func TestLineStamp(t *testing.T) {
	net := feeder(t, 2.0/121, plainTransformer())
	model, err := Build(net)
	require.NoError(t, err)
	require.Equal(t, 4, model.N)
	require.Equal(t, 3, model.M)

	y := 1 / complex(0.01, 0.1)
	assert.InDelta(t, 0, cmplx.Abs(model.Y.At(0, 0)-(y+1i)), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Y.At(0, 1)+y), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Yf.At(0, 0)-(y+1i)), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Yt.At(0, 1)-(y+1i)), eps)
	assert.Equal(t, []types.BusIndex{0, 1, 2}, model.FromBus)
	assert.Equal(t, []types.BusIndex{1, 2, 3}, model.ToBus)
}

func TestTransformerStamp(t *testing.T) {
	tr := plainTransformer()
	tr.Tap, tr.PhaseShiftDeg = 1.05, 30
	tr.GmPU, tr.BmPU = 0.001, -0.002
	model, err := Build(feeder(t, 0, tr))
	require.NoError(t, err)

	y := 1 / complex(0.01, 0.05)
	// 励磁支路按末端 0.4kV 基准: 1/Z_base_tr 与 Y_base 相同
	ysh := complex(0.001, -0.002)
	a := cmplx.Rect(1.05, types.Deg2Rad(30))
	assert.InDelta(t, 0, cmplx.Abs(model.Yf.At(2, 2)-(y/complex(1.05*1.05, 0)+ysh/2)), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Y.At(2, 3)+y/cmplx.Conj(a)), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Y.At(3, 2)+y/a), eps)
	assert.InDelta(t, 0, cmplx.Abs(model.Y.At(3, 3)-(y+ysh/2)), eps)
	// 移相变压器破坏对称性
	assert.Greater(t, cmplx.Abs(model.Y.At(2, 3)-model.Y.At(3, 2)), 1e-3)
}

func TestSymmetricWithoutPhaseShift(t *testing.T) {
	tr := plainTransformer()
	tr.Tap = 0.95
	model, err := Build(feeder(t, 1e-4, tr))
	require.NoError(t, err)
	for i := 0; i < model.N; i++ {
		for j := 0; j < model.N; j++ {
			assert.InDelta(t, 0, cmplx.Abs(model.Y.At(i, j)-model.Y.At(j, i)), eps, "Y[%d,%d]", i, j)
		}
	}
}

func TestRowSumsZero(t *testing.T) {
	model, err := Build(feeder(t, 0, plainTransformer()))
	require.NoError(t, err)
	ones := []complex128{1, 1, 1, 1}
	for i, s := range model.Y.MulVec(ones) {
		assert.InDelta(t, 0, cmplx.Abs(s), 1e-9, "row %d", i)
	}
}

func TestShunt(t *testing.T) {
	net := feeder(t, 0, plainTransformer())
	require.NoError(t, net.AddShunt(types.Shunt{ID: 1, PMW: 0.2, QMVAr: 0.5}, 4))
	model, err := Build(net)
	require.NoError(t, err)
	ones := []complex128{1, 1, 1, 1}
	assert.InDelta(t, 0, cmplx.Abs(model.Y.MulVec(ones)[3]-complex(0.2, -0.5)), 1e-9)
}

func TestBranchRowsRebuildY(t *testing.T) {
	tr := plainTransformer()
	tr.Tap, tr.PhaseShiftDeg, tr.BmPU = 1.02, -5, 0.003
	model, err := Build(feeder(t, 1e-4, tr))
	require.NoError(t, err)
	sum := maths.NewSparse[complex128](model.N, model.N)
	for k := 0; k < model.M; k++ {
		for _, side := range []types.Side{types.FromSide, types.ToSide} {
			ys, bus := model.Side(side)
			cols, vals := ys.Row(k)
			for p, j := range cols {
				sum.Increment(bus[k], j, vals[p])
			}
		}
	}
	for i := 0; i < model.N; i++ {
		for j := 0; j < model.N; j++ {
			assert.InDelta(t, 0, cmplx.Abs(sum.At(i, j)-model.Y.At(i, j)), eps)
		}
	}

	// 母线注入功率之和等于支路损耗之和
	v := maths.Polar([]float64{1.02, 0.99, 0.97, 0.95}, []float64{0, -0.02, -0.05, -0.1})
	var bus, loss complex128
	for _, s := range model.InjectedPower(v) {
		bus += s
	}
	sf, st := model.BranchFlows(v)
	for k := range sf {
		loss += sf[k] + st[k]
	}
	assert.InDelta(t, 0, cmplx.Abs(bus-loss), 1e-9)
}

func TestOpenBranchKeepsZeroRow(t *testing.T) {
	net := feeder(t, 1e-4, plainTransformer())
	sop := types.SOP{PMW: 0.1}
	_, err := net.AddBranch(types.Branch{ID: 9, Kind: types.KindSOP, Closed: true, SOP: &sop}, 1, 3)
	require.NoError(t, err)
	require.NoError(t, net.Apply(&network.Case{Switching: map[types.BranchID]bool{2: false}}))
	model, err := Build(net)
	require.NoError(t, err)
	assert.Equal(t, 3, model.M)
	assert.Equal(t, []int{0, 1, 2, types.NoRow}, model.BranchRow)
	cols, _ := model.Yf.Row(1)
	assert.Empty(t, cols)
	assert.Equal(t, complex128(0), model.Y.At(1, 2))
}

func TestUnknownBus(t *testing.T) {
	net := feeder(t, 0, plainTransformer())
	net.Branches[0].To = 17
	_, err := Build(net)
	assert.ErrorIs(t, err, types.ErrUnknownBus)
}
