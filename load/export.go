package load

import (
	"io"

	"gopkg.in/yaml.v3"

	"powernet/load/ast"
	"powernet/network"
	"powernet/types"
)

// Export 将网络写为 YAML 案例,可被 LoadReader 重新读取
func Export(w io.Writer, net *network.Network) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document(net)); err != nil {
		return err
	}
	return enc.Close()
}

// Document 由网络生成文档
func Document(net *network.Network) *ast.Document {
	doc := &ast.Document{
		System: ast.System{
			NetworkName: net.Name,
			SBaseMVA:    net.Base.SBaseMVA,
			FrequencyHz: net.FrequencyHz,
		},
	}
	busID := func(i types.BusIndex) int { return net.Buses[i].ID }
	for _, bus := range net.Buses {
		doc.Buses = append(doc.Buses, ast.Bus{
			Idx:            bus.ID,
			Name:           bus.Name,
			VoltageLevelKV: bus.VoltageLevelKV,
			LoadFlowType:   bus.Type.String(),
			SetVoltagePU:   bus.SetVoltagePU,
			SetAngleDeg:    bus.SetAngleDeg,
			Coordinates:    bus.Coordinates,
		})
	}
	for _, b := range net.Branches {
		var closed *bool
		if !b.Closed {
			closed = new(bool)
		}
		switch b.Kind {
		case types.KindLine:
			doc.Lines = append(doc.Lines, ast.Line{
				Idx: b.ID, Name: b.Name, FromBus: busID(b.From), ToBus: busID(b.To), Closed: closed,
				ROhm: b.Line.ROhm, XOhm: b.Line.XOhm, BTotalMho: b.Line.BTotalMho,
			})
		case types.KindTransformer:
			t := b.Transformer
			doc.Transformers = append(doc.Transformers, ast.Transformer{
				Idx: b.ID, Name: b.Name, FromBus: busID(b.From), ToBus: busID(b.To), Closed: closed,
				RatedSMVA: t.RatedSMVA, VRatedHighKV: t.VRatedHighKV, VRatedLowKV: t.VRatedLowKV,
				RPU: t.RPU, XPU: t.XPU, GmPU: t.GmPU, BmPU: t.BmPU, Tap: t.Tap, PhaseShift: t.PhaseShiftDeg,
			})
		case types.KindSOP:
			s := b.SOP
			doc.SOPs = append(doc.SOPs, ast.SOP{
				Idx: b.ID, Name: b.Name, FromBus: busID(b.From), ToBus: busID(b.To), Closed: closed,
				RatedS: s.RatedSMVA, PMW: s.PMW, QFromMVAr: s.QFromMVAr, QToMVAr: s.QToMVAr, Efficiency: s.EfficiencyPct,
			})
		}
	}
	for _, l := range net.Loads {
		doc.Loads = append(doc.Loads, ast.Load{Idx: l.ID, Name: l.Name, Bus: busID(l.Bus), PMW: l.PMW, QMVAr: l.QMVAr})
	}
	for _, g := range net.Generations {
		doc.Generations = append(doc.Generations, ast.Generation{Idx: g.ID, Name: g.Name, Bus: busID(g.Bus), PMW: g.PMW, VoltageKV: g.VoltageKV})
	}
	for _, s := range net.Shunts {
		doc.Shunts = append(doc.Shunts, ast.Shunt{Idx: s.ID, Name: s.Name, Bus: busID(s.Bus), PMW: s.PMW, QMVAr: s.QMVAr})
	}
	for _, b := range net.Batteries {
		doc.Batteries = append(doc.Batteries, ast.Battery{
			Idx: b.ID, Name: b.Name, Bus: busID(b.Bus), PMW: b.PMW,
			PChargeMaxMW: b.PChargeMaxMW, PDischargeMaxMW: b.PDischargeMaxMW, SOC: b.SOC, CapacityMWh: b.CapacityMWh,
		})
	}
	for _, m := range net.Measurements {
		if m.Kind == types.BusMeasurement {
			doc.BusMeasurements = append(doc.BusMeasurements, ast.BusMeasurement{
				Idx: m.ID, Bus: busID(m.Bus), Type: m.Type.String(), ValuePU: m.ValuePU, StdDev: m.StdDev,
			})
			continue
		}
		b := net.Branches[m.Branch]
		id := b.ID
		doc.BranchMeasurements = append(doc.BranchMeasurements, ast.BranchMeasurement{
			Idx: m.ID, Branch: &id, FromBus: busID(b.From), ToBus: busID(b.To),
			Side: m.Side.String(), Type: m.Type.String(), ValuePU: m.ValuePU, StdDev: m.StdDev,
		})
	}
	return doc
}
