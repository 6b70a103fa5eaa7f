package types

import (
	"fmt"
	"strings"
)

// LoadFlowType 母线潮流类型
type LoadFlowType uint8

// 母线潮流类型常量定义
const (
	PQ    LoadFlowType = iota // 给定有功无功
	PV                        // 给定有功与电压幅值
	Slack                     // 平衡节点,给定电压幅值与相角
)

// loadFlowTypeString 类型名称映射
var loadFlowTypeString = map[LoadFlowType]string{
	PQ:    "PQ",
	PV:    "PV",
	Slack: "Slack",
}

// String 返回潮流类型的字符串表示
func (t LoadFlowType) String() string {
	if s, ok := loadFlowTypeString[t]; ok {
		return s
	}
	return fmt.Sprintf("LoadFlowType(%d)", uint8(t))
}

// ParseLoadFlowType 通过名称获取潮流类型,空字符串视为 PQ
func ParseLoadFlowType(name string) (LoadFlowType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "PQ":
		return PQ, nil
	case "PV":
		return PV, nil
	case "SLACK", "SL", "REF":
		return Slack, nil
	}
	return PQ, fmt.Errorf("unknown load flow type %q", name)
}

// MarshalText 文本编码
func (t LoadFlowType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText 文本解码
func (t *LoadFlowType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseLoadFlowType(string(b))
	return err
}

// Bus 母线
type Bus struct {
	ID             BusID        // 外部编号
	Index          BusIndex     // 稠密索引,由网络分配
	Name           string       // 名称
	VoltageLevelKV float64      // 额定电压等级(kV)
	Type           LoadFlowType // 潮流类型
	SetVoltagePU   float64      // 电压幅值设定值(pu),0 表示未设定
	SetAngleDeg    float64      // 电压相角设定值(度)
	Coordinates    [2]float64   // 图形坐标
}

// Setpoint 返回非 PQ 母线的电压设定值(pu, rad),未设定的幅值按 1.0 处理
func (bus *Bus) Setpoint() (vm, va float64) {
	vm = bus.SetVoltagePU
	if vm <= 0 {
		vm = 1
	}
	return vm, Deg2Rad(bus.SetAngleDeg)
}

// Label 母线显示名称
func (bus *Bus) Label() string {
	if bus.Name != "" {
		return bus.Name
	}
	return fmt.Sprintf("Bus %d", bus.ID)
}
