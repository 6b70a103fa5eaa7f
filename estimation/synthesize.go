package estimation

import (
	"powernet/maths"
	"powernet/types"
	"powernet/ybus"
)

// Synthesize 由已求解的电压生成完整量测集:每条母线 P、Q、|v|,每条线路与变压器首端 P、Q
//
// std ≤ 0 时使用 types.DefaultStdDev。母线量测使用稠密母线索引,支路量测使用支路索引。
func Synthesize(model *ybus.Model, vm, va []float64, std float64) []types.Measurement {
	if std <= 0 {
		std = types.DefaultStdDev
	}
	v := maths.Polar(vm, va)
	sBus := model.InjectedPower(v)
	sf, _ := model.BranchFlows(v)
	out := make([]types.Measurement, 0, 3*model.N+2*model.M)
	id := 0
	add := func(m types.Measurement) {
		id++
		m.ID, m.StdDev = id, std
		out = append(out, m)
	}
	for i := 0; i < model.N; i++ {
		bus := types.Measurement{Kind: types.BusMeasurement, Bus: i, Branch: types.NoBranch}
		bus.Type, bus.ValuePU = types.PInjection, real(sBus[i])
		add(bus)
		bus.Type, bus.ValuePU = types.QInjection, imag(sBus[i])
		add(bus)
		bus.Type, bus.ValuePU = types.VMagnitude, vm[i]
		add(bus)
	}
	for k := 0; k < model.M; k++ {
		flow := types.Measurement{Kind: types.BranchMeasurement, Bus: types.NoBus, Branch: model.Branch[k], Side: types.FromSide}
		flow.Type, flow.ValuePU = types.PFlow, real(sf[k])
		add(flow)
		flow.Type, flow.ValuePU = types.QFlow, imag(sf[k])
		add(flow)
	}
	return out
}
