// Package network 电网数据容器:母线、支路、并联元件与量测的编号映射和求解结果。
package network

import (
	"fmt"

	"powernet/pu"
	"powernet/types"
)

// Network 电网,元素按声明顺序存放,支路通过稠密母线索引引用母线
type Network struct {
	Name         string               // 名称
	Base         pu.Base              // 系统基准
	FrequencyHz  float64              // 系统频率(Hz)
	Buses        []*types.Bus         // 母线(按稠密索引)
	Branches     []*types.Branch      // 支路(按声明顺序)
	Shunts       []*types.Shunt       // 并联补偿
	Loads        []*types.Load        // 负荷
	Generations  []*types.Generation  // 电源
	Batteries    []*types.Battery     // 储能
	Measurements []*types.Measurement // 量测
	State        State                // 潮流结果
	Estimate     State                // 状态估计结果
	busIndex     map[types.BusID]types.BusIndex
	branchIndex  map[types.BranchID]types.BranchIndex
	elementIDs   map[string]map[int]struct{}
}

// New 创建空网络,sBaseMVA 与 frequencyHz 为零时使用默认值
func New(name string, sBaseMVA, frequencyHz float64) (*Network, error) {
	if sBaseMVA == 0 {
		sBaseMVA = types.DefaultSBaseMVA
	}
	if frequencyHz == 0 {
		frequencyHz = types.DefaultFrequencyHz
	}
	base, err := pu.NewBase(sBaseMVA)
	if err != nil {
		return nil, err
	}
	return &Network{
		Name:        name,
		Base:        base,
		FrequencyHz: frequencyHz,
		busIndex:    map[types.BusID]types.BusIndex{},
		branchIndex: map[types.BranchID]types.BranchIndex{},
		elementIDs:  map[string]map[int]struct{}{},
	}, nil
}

// N 母线数量
func (net *Network) N() int { return len(net.Buses) }

// AddBus 添加母线并分配稠密索引
func (net *Network) AddBus(bus types.Bus) (types.BusIndex, error) {
	if _, ok := net.busIndex[bus.ID]; ok {
		return types.NoBus, fmt.Errorf("bus %d: %w", bus.ID, types.ErrDuplicateID)
	}
	bus.Index = len(net.Buses)
	net.busIndex[bus.ID] = bus.Index
	net.Buses = append(net.Buses, &bus)
	return bus.Index, nil
}

// BusIndex 外部编号到稠密索引
func (net *Network) BusIndex(id types.BusID) (types.BusIndex, error) {
	if i, ok := net.busIndex[id]; ok {
		return i, nil
	}
	return types.NoBus, fmt.Errorf("bus %d: %w", id, types.ErrUnknownBus)
}

// Bus 按外部编号获取母线
func (net *Network) Bus(id types.BusID) (*types.Bus, error) {
	i, err := net.BusIndex(id)
	if err != nil {
		return nil, err
	}
	return net.Buses[i], nil
}

// BranchIndex 外部编号到支路索引
func (net *Network) BranchIndex(id types.BranchID) (types.BranchIndex, error) {
	if i, ok := net.branchIndex[id]; ok {
		return i, nil
	}
	return types.NoBranch, fmt.Errorf("branch %d: %w", id, types.ErrUnknownBranch)
}

// AddBranch 添加支路,from/to 为母线外部编号
func (net *Network) AddBranch(branch types.Branch, from, to types.BusID) (types.BranchIndex, error) {
	if _, ok := net.branchIndex[branch.ID]; ok {
		return types.NoBranch, fmt.Errorf("branch %d: %w", branch.ID, types.ErrDuplicateID)
	}
	var err error
	if branch.From, err = net.BusIndex(from); err != nil {
		return types.NoBranch, fmt.Errorf("branch %d from: %w", branch.ID, err)
	}
	if branch.To, err = net.BusIndex(to); err != nil {
		return types.NoBranch, fmt.Errorf("branch %d to: %w", branch.ID, err)
	}
	if err = branch.Validate(); err != nil {
		return types.NoBranch, err
	}
	branch.Index = len(net.Branches)
	net.branchIndex[branch.ID] = branch.Index
	net.Branches = append(net.Branches, &branch)
	return branch.Index, nil
}

// claim 登记元件编号,同类元件编号不可重复
func (net *Network) claim(kind string, id int) error {
	ids, ok := net.elementIDs[kind]
	if !ok {
		ids = map[int]struct{}{}
		net.elementIDs[kind] = ids
	}
	if _, ok := ids[id]; ok {
		return fmt.Errorf("%s %d: %w", kind, id, types.ErrDuplicateID)
	}
	ids[id] = struct{}{}
	return nil
}

// attach 解析元件所在母线并登记编号
func (net *Network) attach(kind string, id int, bus types.BusID) (types.BusIndex, error) {
	i, err := net.BusIndex(bus)
	if err != nil {
		return types.NoBus, fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if err = net.claim(kind, id); err != nil {
		return types.NoBus, err
	}
	return i, nil
}

// AddShunt 添加并联补偿
func (net *Network) AddShunt(shunt types.Shunt, bus types.BusID) (err error) {
	if shunt.Bus, err = net.attach("shunt", shunt.ID, bus); err == nil {
		net.Shunts = append(net.Shunts, &shunt)
	}
	return err
}

// AddLoad 添加负荷
func (net *Network) AddLoad(load types.Load, bus types.BusID) (err error) {
	if load.Bus, err = net.attach("load", load.ID, bus); err == nil {
		net.Loads = append(net.Loads, &load)
	}
	return err
}

// AddGeneration 添加电源
func (net *Network) AddGeneration(gen types.Generation, bus types.BusID) (err error) {
	if gen.Bus, err = net.attach("generation", gen.ID, bus); err == nil {
		net.Generations = append(net.Generations, &gen)
	}
	return err
}

// AddBattery 添加储能
func (net *Network) AddBattery(battery types.Battery, bus types.BusID) (err error) {
	if battery.Bus, err = net.attach("battery", battery.ID, bus); err == nil {
		net.Batteries = append(net.Batteries, &battery)
	}
	return err
}

// AddBusMeasurement 添加母线量测
func (net *Network) AddBusMeasurement(m types.Measurement, bus types.BusID) (err error) {
	m.Kind, m.Branch = types.BusMeasurement, types.NoBranch
	if err = m.Validate(); err != nil {
		return err
	}
	if m.Bus, err = net.attach("measurement", m.ID, bus); err != nil {
		return err
	}
	net.Measurements = append(net.Measurements, &m)
	return nil
}

// AddBranchMeasurement 添加支路量测,只接受线路与变压器
func (net *Network) AddBranchMeasurement(m types.Measurement, branch types.BranchID, side types.Side) (err error) {
	m.Kind, m.Bus, m.Side = types.BranchMeasurement, types.NoBus, side
	if m.Branch, err = net.BranchIndex(branch); err != nil {
		return fmt.Errorf("measurement %d: %w", m.ID, err)
	}
	if !net.Branches[m.Branch].IsAdmittance() {
		return fmt.Errorf("measurement %d on %s: %w", m.ID, net.Branches[m.Branch].Label(), types.ErrInvalidMeasurement)
	}
	if err = m.Validate(); err != nil {
		return err
	}
	if err = net.claim("measurement", m.ID); err != nil {
		return err
	}
	net.Measurements = append(net.Measurements, &m)
	return nil
}

// Validate 检查网络非空且所有元素引用的索引有效
func (net *Network) Validate() error {
	n := len(net.Buses)
	if n == 0 {
		return types.ErrEmptyNetwork
	}
	for i, bus := range net.Buses {
		if bus.Index != i {
			return fmt.Errorf("bus %d has index %d at position %d: %w", bus.ID, bus.Index, i, types.ErrUnknownBus)
		}
	}
	valid := func(i types.BusIndex) bool { return i >= 0 && i < n }
	for _, b := range net.Branches {
		if !valid(b.From) || !valid(b.To) {
			return fmt.Errorf("%s: %w", b.Label(), types.ErrUnknownBus)
		}
	}
	for _, s := range net.Shunts {
		if !valid(s.Bus) {
			return fmt.Errorf("shunt %d: %w", s.ID, types.ErrUnknownBus)
		}
	}
	for _, l := range net.Loads {
		if !valid(l.Bus) {
			return fmt.Errorf("load %d: %w", l.ID, types.ErrUnknownBus)
		}
	}
	for _, g := range net.Generations {
		if !valid(g.Bus) {
			return fmt.Errorf("generation %d: %w", g.ID, types.ErrUnknownBus)
		}
	}
	for _, b := range net.Batteries {
		if !valid(b.Bus) {
			return fmt.Errorf("battery %d: %w", b.ID, types.ErrUnknownBus)
		}
	}
	return nil
}

// BusNames 母线显示名称(按稠密索引)
func (net *Network) BusNames() []string {
	names := make([]string, len(net.Buses))
	for i, bus := range net.Buses {
		names[i] = bus.Label()
	}
	return names
}

// SlackBuses 标记为平衡节点的母线索引
func (net *Network) SlackBuses() []types.BusIndex {
	var out []types.BusIndex
	for _, bus := range net.Buses {
		if bus.Type == types.Slack {
			out = append(out, bus.Index)
		}
	}
	return out
}

// UseMeasurements 以稠密索引给出的量测替换现有量测
func (net *Network) UseMeasurements(ms []types.Measurement) error {
	list := make([]*types.Measurement, 0, len(ms))
	ids := map[int]struct{}{}
	for k := range ms {
		m := ms[k]
		if err := m.Validate(); err != nil {
			return err
		}
		switch m.Kind {
		case types.BusMeasurement:
			if m.Bus < 0 || m.Bus >= len(net.Buses) {
				return fmt.Errorf("measurement %d: %w", m.ID, types.ErrUnknownBus)
			}
		case types.BranchMeasurement:
			if m.Branch < 0 || m.Branch >= len(net.Branches) {
				return fmt.Errorf("measurement %d: %w", m.ID, types.ErrUnknownBranch)
			}
		}
		if _, ok := ids[m.ID]; ok {
			return fmt.Errorf("measurement %d: %w", m.ID, types.ErrDuplicateID)
		}
		ids[m.ID] = struct{}{}
		list = append(list, &m)
	}
	net.elementIDs["measurement"] = ids
	net.Measurements = list
	return nil
}
