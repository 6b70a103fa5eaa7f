package powernet

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powernet/estimation"
	"powernet/loadflow"
	"powernet/metrics"
	"powernet/types"
)

// TestFlowAndEstimate 潮流、生成量测、估计
func TestFlowAndEstimate(t *testing.T) {
	p, err := Load("testdata/radial.yaml")
	require.NoError(t, err)
	p.Metrics = metrics.New()

	require.ErrorIs(t, p.Synthesize(0.01), types.ErrNotConverged)

	lf, err := p.LoadFlow(loadflow.WithTolerance(1e-10))
	require.NoError(t, err)
	require.True(t, lf.Converged())
	assert.True(t, p.State.Converged)
	assert.InDelta(t, 1.02, p.State.Vm[0], 1e-12)
	for i := 1; i < p.N(); i++ {
		assert.Less(t, p.State.Vm[i], 1.02)
	}
	assert.Len(t, lf.Flows, 3)

	require.NoError(t, p.Synthesize(0.01))
	assert.Len(t, p.Measurements, 3*4+2*3)

	for _, alg := range []types.Algorithm{types.WLS, types.LAV} {
		se, err := p.Estimate(estimation.WithAlgorithm(alg), estimation.WithTolerance(1e-8))
		require.NoError(t, err, alg)
		require.True(t, se.Converged(), alg)
		dvm, dva := p.Network.Estimate.MaxDeviation(&p.State)
		assert.Less(t, dvm, 1e-6, alg)
		assert.Less(t, dva, 1e-6, alg)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.Solves("loadflow", "converged")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.Metrics.Solves("estimation", "converged")))

	_, err = p.Estimate(estimation.WithAlgorithm("LMS"))
	require.ErrorIs(t, err, types.ErrUnsupportedAlgorithm)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.Solves("estimation", metrics.Failed)))
}

// TestExport 导出再读取
func TestExport(t *testing.T) {
	p, err := Load("testdata/radial.yaml")
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "radial.yaml")
	require.NoError(t, p.Export(file))
	q, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, p.Buses, q.Buses)
	assert.Equal(t, p.Branches, q.Branches)
	assert.Equal(t, p.Shunts, q.Shunts)
}
