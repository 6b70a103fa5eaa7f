// Package load 读取网络案例文件(YAML 或按编号索引的 JSON)与运行方式文件。
package load

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"powernet/load/ast"
	"powernet/network"
	"powernet/pu"
	"powernet/types"
)

// LoadFile 加载案例文件
func LoadFile(filename string) (*network.Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	net, err := LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return net, nil
}

// LoadString 加载案例文本
func LoadString(s string) (*network.Network, error) {
	return LoadReader(strings.NewReader(s))
}

// LoadReader 加载案例,JSON 作为 YAML 的子集解析
func LoadReader(r io.Reader) (*network.Network, error) {
	var doc ast.Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, types.ErrEmptyNetwork
		}
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return LoadDocument(&doc)
}

// LoadDocument 由文档创建网络,外部编号在此解析为稠密索引
func LoadDocument(doc *ast.Document) (*network.Network, error) {
	net, err := network.New(doc.System.NetworkName, doc.System.SBaseMVA, doc.System.FrequencyHz)
	if err != nil {
		return nil, err
	}
	if len(doc.Buses) == 0 {
		return nil, types.ErrEmptyNetwork
	}
	for _, b := range doc.Buses {
		typ, err := types.ParseLoadFlowType(b.LoadFlowType)
		if err != nil {
			return nil, fmt.Errorf("bus %d: %w", b.Idx, err)
		}
		bus := types.Bus{
			ID:             b.Idx,
			Name:           b.Name,
			VoltageLevelKV: b.VoltageLevelKV,
			Type:           typ,
			SetVoltagePU:   b.SetVoltagePU,
			SetAngleDeg:    b.SetAngleDeg,
			Coordinates:    b.Coordinates,
		}
		if bus.SetVoltagePU == 0 && b.SetVoltageKV > 0 {
			bus.SetVoltagePU = pu.KVToPU(b.SetVoltageKV, b.VoltageLevelKV)
		}
		if _, err = net.AddBus(bus); err != nil {
			return nil, err
		}
	}
	if err = addBranches(net, doc); err != nil {
		return nil, err
	}
	if err = addElements(net, doc); err != nil {
		return nil, err
	}
	if err = addMeasurements(net, doc); err != nil {
		return nil, err
	}
	switching := map[types.BranchID]bool{}
	for key, closed := range doc.Switching {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("switching %q: %w", key, types.ErrUnknownBranch)
		}
		switching[id] = closed
	}
	if err = net.Apply(&network.Case{Switching: switching}); err != nil {
		return nil, err
	}
	return net, nil
}

// addBranches 线路、变压器、SOP 依次加入,编号在三类支路间唯一
func addBranches(net *network.Network, doc *ast.Document) error {
	for _, l := range doc.Lines {
		line := types.Line{ROhm: l.ROhm, XOhm: l.XOhm, BTotalMho: l.BTotalMho}
		branch := types.Branch{ID: l.Idx, Name: l.Name, Kind: types.KindLine, Closed: ast.Closed(l.Closed), Line: &line}
		if _, err := net.AddBranch(branch, l.FromBus, l.ToBus); err != nil {
			return err
		}
	}
	for _, t := range doc.Transformers {
		tr := types.Transformer{
			RatedSMVA:     t.RatedSMVA,
			VRatedHighKV:  t.VRatedHighKV,
			VRatedLowKV:   t.VRatedLowKV,
			RPU:           t.RPU,
			XPU:           t.XPU,
			GmPU:          t.GmPU,
			BmPU:          t.BmPU,
			Tap:           t.Tap,
			PhaseShiftDeg: t.PhaseShift,
		}
		branch := types.Branch{ID: t.Idx, Name: t.Name, Kind: types.KindTransformer, Closed: ast.Closed(t.Closed), Transformer: &tr}
		if _, err := net.AddBranch(branch, t.FromBus, t.ToBus); err != nil {
			return err
		}
	}
	for _, s := range doc.SOPs {
		sop := types.SOP{
			RatedSMVA:     s.RatedS,
			PMW:           s.PMW,
			QFromMVAr:     s.QFromMVAr,
			QToMVAr:       s.QToMVAr,
			EfficiencyPct: s.Efficiency,
		}
		branch := types.Branch{ID: s.Idx, Name: s.Name, Kind: types.KindSOP, Closed: ast.Closed(s.Closed), SOP: &sop}
		if _, err := net.AddBranch(branch, s.FromBus, s.ToBus); err != nil {
			return err
		}
	}
	return nil
}

// addElements 负荷、电源、并联补偿、储能
func addElements(net *network.Network, doc *ast.Document) error {
	for _, l := range doc.Loads {
		if err := net.AddLoad(types.Load{ID: l.Idx, Name: l.Name, PMW: l.PMW, QMVAr: l.QMVAr}, l.Bus); err != nil {
			return err
		}
	}
	for _, g := range doc.Generations {
		if err := net.AddGeneration(types.Generation{ID: g.Idx, Name: g.Name, PMW: g.PMW, VoltageKV: g.VoltageKV}, g.Bus); err != nil {
			return err
		}
	}
	for _, s := range doc.Shunts {
		if err := net.AddShunt(types.Shunt{ID: s.Idx, Name: s.Name, PMW: s.PMW, QMVAr: s.QMVAr}, s.Bus); err != nil {
			return err
		}
	}
	for _, b := range doc.Batteries {
		battery := types.Battery{
			ID:              b.Idx,
			Name:            b.Name,
			PMW:             b.PMW,
			PChargeMaxMW:    b.PChargeMaxMW,
			PDischargeMaxMW: b.PDischargeMaxMW,
			SOC:             b.SOC,
			CapacityMWh:     b.CapacityMWh,
		}
		if err := net.AddBattery(battery, b.Bus); err != nil {
			return err
		}
	}
	return nil
}

// addMeasurements 母线与支路量测
func addMeasurements(net *network.Network, doc *ast.Document) error {
	for _, m := range doc.BusMeasurements {
		typ, err := types.ParseMeasurementType(m.Type)
		if err != nil {
			return fmt.Errorf("measurement %d: %w", m.Idx, err)
		}
		meas := types.Measurement{ID: m.Idx, Type: typ, ValuePU: m.ValuePU, StdDev: m.StdDev}
		if err = net.AddBusMeasurement(meas, m.Bus); err != nil {
			return err
		}
	}
	for _, m := range doc.BranchMeasurements {
		typ, err := types.ParseMeasurementType(m.Type)
		if err != nil {
			return fmt.Errorf("measurement %d: %w", m.Idx, err)
		}
		id, side, err := locate(net, m)
		if err != nil {
			return err
		}
		meas := types.Measurement{ID: m.Idx, Type: typ, ValuePU: m.ValuePU, StdDev: m.StdDev}
		if err = net.AddBranchMeasurement(meas, id, side); err != nil {
			return err
		}
	}
	return nil
}

// locate 支路量测定位:优先 branch_idx,否则按首末母线查找线路或变压器
func locate(net *network.Network, m ast.BranchMeasurement) (types.BranchID, types.Side, error) {
	side := types.FromSide
	switch strings.ToLower(m.Side) {
	case "", "from":
	case "to":
		side = types.ToSide
	default:
		return 0, side, fmt.Errorf("measurement %d: side %q: %w", m.Idx, m.Side, types.ErrInvalidMeasurement)
	}
	if m.Branch != nil {
		return *m.Branch, side, nil
	}
	from, err := net.BusIndex(m.FromBus)
	if err != nil {
		return 0, side, fmt.Errorf("measurement %d: %w", m.Idx, err)
	}
	to, err := net.BusIndex(m.ToBus)
	if err != nil {
		return 0, side, fmt.Errorf("measurement %d: %w", m.Idx, err)
	}
	for _, b := range net.Branches {
		if !b.IsAdmittance() {
			continue
		}
		switch {
		case b.From == from && b.To == to:
			return b.ID, side, nil
		case b.From == to && b.To == from && m.Side == "":
			return b.ID, types.ToSide, nil
		}
	}
	return 0, side, fmt.Errorf("measurement %d: no branch between bus %d and %d: %w", m.Idx, m.FromBus, m.ToBus, types.ErrUnknownBranch)
}

// LoadCase 读取运行方式文件
func LoadCase(r io.Reader) (*network.Case, error) {
	var c network.Case
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return &c, nil
}
