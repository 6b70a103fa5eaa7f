package estimation

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"powernet/loadflow"
	"powernet/maths"
	"powernet/network"
	"powernet/types"
	"powernet/ybus"
)

// meshed 11kV 三母线环网,母线 3 经变压器接 0.4kV 母线 4
func meshed(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New("meshed", 1, 50)
	require.NoError(t, err)
	buses := []types.Bus{
		{ID: 1, VoltageLevelKV: 11, Type: types.Slack, SetVoltagePU: 1.02},
		{ID: 2, VoltageLevelKV: 11},
		{ID: 3, VoltageLevelKV: 11},
		{ID: 4, VoltageLevelKV: 0.4},
	}
	for _, b := range buses {
		_, err = net.AddBus(b)
		require.NoError(t, err)
	}
	lines := []struct {
		id, from, to int
		r, x         float64
	}{{1, 1, 2, 0.01, 0.03}, {2, 2, 3, 0.015, 0.04}, {3, 1, 3, 0.02, 0.05}}
	for _, l := range lines {
		p := types.Line{ROhm: l.r * 121, XOhm: l.x * 121, BTotalMho: 1e-5}
		_, err = net.AddBranch(types.Branch{ID: l.id, Kind: types.KindLine, Closed: true, Line: &p}, l.from, l.to)
		require.NoError(t, err)
	}
	tr := types.Transformer{RatedSMVA: 1, VRatedHighKV: 11, VRatedLowKV: 0.4, RPU: 0.01, XPU: 0.05, Tap: 1.02}
	_, err = net.AddBranch(types.Branch{ID: 4, Kind: types.KindTransformer, Closed: true, Transformer: &tr}, 3, 4)
	require.NoError(t, err)
	require.NoError(t, net.AddLoad(types.Load{ID: 1, PMW: 0.4, QMVAr: 0.15}, 2))
	require.NoError(t, net.AddLoad(types.Load{ID: 2, PMW: 0.3, QMVAr: 0.1}, 4))
	return net
}

// solved 潮流求解后用精确量测替换网络量测
func solved(t *testing.T) *network.Network {
	t.Helper()
	net := meshed(t)
	exact(t, net, false)
	require.Len(t, net.Measurements, 3*4+2*4)
	return net
}

// exact 求解潮流并写入精确量测,toSide 时为每条支路补充末端无功量测
func exact(t *testing.T, net *network.Network, toSide bool) {
	t.Helper()
	res, err := loadflow.Solve(net)
	require.NoError(t, err)
	require.True(t, res.Converged())
	model, err := ybus.Build(net)
	require.NoError(t, err)
	ms := Synthesize(model, net.State.Vm, net.State.Va, 0.01)
	if toSide {
		_, st := model.BranchFlows(maths.Polar(net.State.Vm, net.State.Va))
		for k, branch := range model.Branch {
			ms = append(ms, types.Measurement{
				ID:      len(ms) + 1,
				Kind:    types.BranchMeasurement,
				Type:    types.QFlow,
				Bus:     types.NoBus,
				Branch:  branch,
				Side:    types.ToSide,
				ValuePU: imag(st[k]),
				StdDev:  0.01,
			})
		}
	}
	require.NoError(t, net.UseMeasurements(ms))
}

func assertRecovered(t *testing.T, net *network.Network, tol float64) {
	t.Helper()
	dvm, dva := net.Estimate.MaxDeviation(&net.State)
	assert.Less(t, dvm, tol)
	assert.Less(t, dva, tol)
}

func TestWLSRoundTrip(t *testing.T) {
	net := solved(t)
	res, err := Estimate(net, WithAlgorithm(types.WLS))
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, types.WLS, res.Algorithm)
	assert.Len(t, res.Residuals, res.Iterations)
	assert.True(t, net.Estimate.Converged)
	assert.Less(t, res.Objective, 1e-10)
	assertRecovered(t, net, 1e-6)
}

func TestLAVRoundTrip(t *testing.T) {
	net := solved(t)
	res, err := Estimate(net, WithAlgorithm(types.LAV))
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, types.LAV, res.Algorithm)
	assertRecovered(t, net, 1e-6)
}

func TestLAVRedundantSets(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(net *network.Network)
		toSide bool
	}{
		{"to side reactive flows", func(*network.Network) {}, true},
		{"open line with to side flows", func(net *network.Network) {
			net.Branches[2].Closed = false
		}, true},
		{"phase shifting transformer", func(net *network.Network) {
			net.Branches[3].Transformer.PhaseShiftDeg = 5
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := meshed(t)
			tt.edit(net)
			exact(t, net, tt.toSide)
			res, err := Estimate(net, WithAlgorithm(types.LAV))
			require.NoError(t, err)
			require.NoError(t, res.Err())
			assertRecovered(t, net, 1e-6)
		})
	}
}

func TestLAVPresolve(t *testing.T) {
	h := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 0,
		-2, 0,
		0, 1,
	})
	// 第 3 行是第 1 行的 -2 倍,合并后系数加倍
	rows, scale := presolve(h, []float64{0.5, 0.3, -1, 0.25})
	require.Len(t, rows, 2)
	assert.Equal(t, 0.5, scale)
	assert.Equal(t, []float64{1, 0}, rows[0].h)
	assert.InDelta(t, 1, rows[0].b, 1e-15)
	assert.InDelta(t, 1, rows[0].c, 1e-15)
	assert.InDelta(t, 1.0/3, rows[1].c, 1e-15)

	dx, err := LAV(h, nil, []float64{0.5, 0.3, -1, 0.25})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, dx, 1e-9)
}

func TestLAVRejectsOutlier(t *testing.T) {
	h := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	dx, err := LAV(h, nil, []float64{1, 1, 1, 5})
	require.NoError(t, err)
	assert.InDelta(t, 1, dx[0], 1e-9)

	// 重加权解受残差下限影响,只逼近 L1 解
	dx, err = reweighted(h, []float64{1, 1, 1, 5})
	require.NoError(t, err)
	assert.InDelta(t, 1, dx[0], 1e-2)
}

func TestStepFailureNearSolution(t *testing.T) {
	net := solved(t)
	e, err := NewEstimator(net)
	require.NoError(t, err)
	// 量测残差足够小后修正量求解失败
	e.step = func(h *mat.Dense, w, r []float64) ([]float64, error) {
		if maths.MaxAbs(r) < 1e-10 {
			return nil, types.ErrSingular
		}
		return WLS(h, w, r)
	}
	ok, residuals, err := e.Iterate()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, residuals, e.Iter)

	e, err = NewEstimator(net)
	require.NoError(t, err)
	e.step = func(*mat.Dense, []float64, []float64) ([]float64, error) {
		return nil, types.ErrSingular
	}
	_, _, err = e.Iterate()
	assert.ErrorIs(t, err, types.ErrSingular)
}

func TestReferenceMagnitudeEstimated(t *testing.T) {
	net := solved(t)
	// 参考母线从 1.0 开始,幅值由量测确定
	net.Buses[0].SetVoltagePU = 0
	res, err := Estimate(net, WithSlackMagnitude(true))
	require.NoError(t, err)
	require.True(t, res.Converged())
	assert.InDelta(t, 1.02, net.Estimate.Vm[0], 1e-6)
	assertRecovered(t, net, 1e-6)
}

func TestBusZeroIsReferenceWithoutSlack(t *testing.T) {
	net := solved(t)
	for _, bus := range net.Buses {
		bus.Type = types.PQ
	}
	res, err := Estimate(net, WithSlackMagnitude(true))
	require.NoError(t, err)
	require.True(t, res.Converged())
	assert.Equal(t, 0.0, net.Estimate.Va[0])
	assert.InDelta(t, 1.02, net.Estimate.Vm[0], 1e-6)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	net := solved(t)
	_, err := Estimate(net, WithAlgorithm("LMS"))
	assert.ErrorIs(t, err, types.ErrUnsupportedAlgorithm)
	assert.False(t, net.Estimate.Solved())
}

func TestInvalidMeasurement(t *testing.T) {
	net := solved(t)
	net.Measurements[3].StdDev = 0
	_, err := Estimate(net)
	assert.ErrorIs(t, err, types.ErrInvalidMeasurement)
}

func TestNoMeasurements(t *testing.T) {
	_, err := Estimate(meshed(t))
	assert.ErrorIs(t, err, types.ErrNoMeasurements)
}

func TestTooFewMeasurements(t *testing.T) {
	net := meshed(t)
	require.NoError(t, net.AddBusMeasurement(types.Measurement{ID: 1, Type: types.VMagnitude, ValuePU: 1, StdDev: 0.01}, 2))
	_, err := Estimate(net)
	assert.ErrorIs(t, err, types.ErrSingular)
}

func TestDivergedKeepsLastIterate(t *testing.T) {
	net := solved(t)
	res, err := Estimate(net, WithMaxIteration(1))
	require.NoError(t, err)
	assert.Equal(t, types.Diverged, res.Status)
	assert.True(t, errors.Is(res.Err(), types.ErrNotConverged))
	assert.False(t, net.Estimate.Converged)
	assert.Equal(t, res.Vm, net.Estimate.Vm)
	assert.Equal(t, 1, net.Estimate.Iterations)
}

func TestMeasurementGrouping(t *testing.T) {
	net := meshed(t)
	add := func(id int, typ types.MeasurementType, bus int) {
		require.NoError(t, net.AddBusMeasurement(types.Measurement{ID: id, Type: typ, StdDev: 0.1}, bus))
	}
	require.NoError(t, net.AddBranchMeasurement(types.Measurement{ID: 1, Type: types.QFlow, StdDev: 0.1}, 4, types.ToSide))
	add(2, types.QInjection, 1)
	add(3, types.VMagnitude, 2)
	add(4, types.PInjection, 3)
	require.NoError(t, net.AddBranchMeasurement(types.Measurement{ID: 5, Type: types.PFlow, StdDev: 0.1}, 2, types.FromSide))
	add(6, types.VMagnitude, 1)
	add(7, types.PInjection, 1)

	model, err := ybus.Build(net)
	require.NoError(t, err)
	ms, err := Assemble(net, model)
	require.NoError(t, err)
	var ids []int
	for _, m := range ms.List {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int{3, 6, 4, 7, 2, 5, 1}, ids)
	assert.Equal(t, []int{types.NoRow, types.NoRow, types.NoRow, types.NoRow, types.NoRow, 1, 3}, ms.Rows)
	assert.InDelta(t, 100, ms.W[0], 1e-9)
}

func TestStatesTrimReference(t *testing.T) {
	s := NewStates(4, []int{0, 2}, false)
	assert.Equal(t, []int{1, 3}, s.Angle)
	assert.Equal(t, []int{1, 3}, s.Magnitude)
	s = NewStates(4, []int{0}, true)
	assert.Equal(t, []int{1, 2, 3}, s.Angle)
	assert.Equal(t, []int{0, 1, 2, 3}, s.Magnitude)
	assert.Equal(t, 7, s.Len())
}

func TestDebugRecorder(t *testing.T) {
	rec := &recorder{}
	res, err := Estimate(solved(t), WithDebug(rec))
	require.NoError(t, err)
	assert.Equal(t, "WLS", rec.info.Algorithm)
	assert.Equal(t, res.Iterations, rec.updates)
}

// recorder 记录迭代回调
type recorder struct {
	info    types.RunInfo
	updates int
}

func (r *recorder) Init(info types.RunInfo) { r.info = info }
func (*recorder) IsDebug() bool { return true }
func (*recorder) SetDebug(bool) {}
func (r *recorder) Update(types.Iteration) { r.updates++ }
func (*recorder) Render(io.Writer) error { return nil }
func (*recorder) Error(error) {}
