package network

import (
	"fmt"

	"powernet/types"
)

// Setpoint 母线电压设定值
type Setpoint struct {
	VoltagePU float64 `json:"voltage_pu" yaml:"voltage_pu"`
	AngleDeg  float64 `json:"angle_deg" yaml:"angle_deg"`
}

// Power 复功率(有名值)
type Power struct {
	PMW   float64 `json:"p_mw" yaml:"p_mw"`
	QMVAr float64 `json:"q_mvar" yaml:"q_mvar"`
}

// Case 单次求解的运行方式,按外部编号覆盖网络中的数据
type Case struct {
	Types       map[types.BusID]types.LoadFlowType `json:"types,omitempty" yaml:"types,omitempty"`             // 母线潮流类型
	Setpoints   map[types.BusID]Setpoint           `json:"setpoints,omitempty" yaml:"setpoints,omitempty"`     // 电压设定值
	Loads       map[types.ElementID]Power          `json:"loads,omitempty" yaml:"loads,omitempty"`             // 负荷功率
	Generations map[types.ElementID]float64        `json:"generations,omitempty" yaml:"generations,omitempty"` // 电源有功(MW)
	Batteries   map[types.ElementID]float64        `json:"batteries,omitempty" yaml:"batteries,omitempty"`     // 储能有功(MW)
	Switching   map[types.BranchID]bool            `json:"switching,omitempty" yaml:"switching,omitempty"`     // 支路开关状态
}

// Apply 将运行方式写入网络,引用不存在的元件时不做任何修改
func (net *Network) Apply(c *Case) error {
	if c == nil {
		return nil
	}
	var edits []func()
	for id, t := range c.Types {
		t := t // per-iteration copy; the module targets go 1.21 loop semantics
		bus, err := net.Bus(id)
		if err != nil {
			return err
		}
		edits = append(edits, func() { bus.Type = t })
	}
	for id, sp := range c.Setpoints {
		sp := sp // per-iteration copy; the module targets go 1.21 loop semantics
		bus, err := net.Bus(id)
		if err != nil {
			return err
		}
		edits = append(edits, func() { bus.SetVoltagePU, bus.SetAngleDeg = sp.VoltagePU, sp.AngleDeg })
	}
	for id, closed := range c.Switching {
		closed := closed // per-iteration copy; the module targets go 1.21 loop semantics
		i, err := net.BranchIndex(id)
		if err != nil {
			return err
		}
		edits = append(edits, func() { net.Branches[i].Closed = closed })
	}
	for id, p := range c.Loads {
		p := p // per-iteration copy; the module targets go 1.21 loop semantics
		load := findElement(net.Loads, id, func(l *types.Load) int { return l.ID })
		if load == nil {
			return fmt.Errorf("load %d: %w", id, types.ErrUnknownElement)
		}
		edits = append(edits, func() { load.PMW, load.QMVAr = p.PMW, p.QMVAr })
	}
	for id, p := range c.Generations {
		p := p // per-iteration copy; the module targets go 1.21 loop semantics
		gen := findElement(net.Generations, id, func(g *types.Generation) int { return g.ID })
		if gen == nil {
			return fmt.Errorf("generation %d: %w", id, types.ErrUnknownElement)
		}
		edits = append(edits, func() { gen.PMW = p })
	}
	for id, p := range c.Batteries {
		p := p // per-iteration copy; the module targets go 1.21 loop semantics
		battery := findElement(net.Batteries, id, func(b *types.Battery) int { return b.ID })
		if battery == nil {
			return fmt.Errorf("battery %d: %w", id, types.ErrUnknownElement)
		}
		edits = append(edits, func() { battery.PMW = p })
	}
	for _, edit := range edits {
		edit()
	}
	return nil
}

// findElement 按编号线性查找元件
func findElement[T any](list []*T, id int, key func(*T) int) *T {
	for _, e := range list {
		if key(e) == id {
			return e
		}
	}
	return nil
}
