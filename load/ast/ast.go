// Package ast 网络案例文件的文档结构。
package ast

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// List 按文件中出现顺序保存的记录,接受序列或以编号为键的映射
type List[T any] []T

// UnmarshalYAML 解码序列或映射,映射按键出现顺序展开
func (list *List[T]) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]T, 0, len(node.Content))
		for _, n := range node.Content {
			var item T
			if err := n.Decode(&item); err != nil {
				return err
			}
			items = append(items, item)
		}
		*list = items
	case yaml.MappingNode:
		items := make([]T, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var item T
			if err := node.Content[i+1].Decode(&item); err != nil {
				return fmt.Errorf("key %q: %w", node.Content[i].Value, err)
			}
			items = append(items, item)
		}
		*list = items
	case yaml.ScalarNode:
		// null
		if node.Tag != "!!null" {
			return fmt.Errorf("line %d: expected list or mapping, got %q", node.Line, node.Value)
		}
		*list = nil
	default:
		return fmt.Errorf("line %d: expected list or mapping", node.Line)
	}
	return nil
}

// Document 网络案例文件
type Document struct {
	System             System                  `yaml:"system_data"`
	Buses              List[Bus]               `yaml:"bus_data"`
	Lines              List[Line]              `yaml:"line_data,omitempty"`
	Transformers       List[Transformer]       `yaml:"transformer_data,omitempty"`
	SOPs               List[SOP]               `yaml:"sop_data,omitempty"`
	Loads              List[Load]              `yaml:"load_data,omitempty"`
	Generations        List[Generation]        `yaml:"generation_data,omitempty"`
	Shunts             List[Shunt]             `yaml:"shunt_data,omitempty"`
	Batteries          List[Battery]           `yaml:"battery_data,omitempty"`
	BusMeasurements    List[BusMeasurement]    `yaml:"bus_measurement_data,omitempty"`
	BranchMeasurements List[BranchMeasurement] `yaml:"branch_measurement_data,omitempty"`
	Switching          map[string]bool         `yaml:"switching,omitempty"`
}

// System 系统参数
type System struct {
	NetworkName string  `yaml:"network_name"`
	SBaseMVA    float64 `yaml:"s_base_mva"`
	FrequencyHz float64 `yaml:"frequency_hz"`
}

// Bus 母线
type Bus struct {
	Idx            int        `yaml:"bus_idx"`
	Name           string     `yaml:"bus_name,omitempty"`
	VoltageLevelKV float64    `yaml:"voltage_level_kv"`
	LoadFlowType   string     `yaml:"load_flow_type,omitempty"`
	SetVoltageKV   float64    `yaml:"set_voltage_magnitude_kv,omitempty"`
	SetVoltagePU   float64    `yaml:"set_voltage_magnitude_pu,omitempty"`
	SetAngleDeg    float64    `yaml:"set_voltage_angle_degree,omitempty"`
	Coordinates    [2]float64 `yaml:"coordinates,flow"`
}

// Line 线路
type Line struct {
	Idx       int     `yaml:"line_idx"`
	Name      string  `yaml:"line_name,omitempty"`
	FromBus   int     `yaml:"from_bus_idx"`
	ToBus     int     `yaml:"to_bus_idx"`
	Closed    *bool   `yaml:"closed,omitempty"`
	ROhm      float64 `yaml:"r_ohm"`
	XOhm      float64 `yaml:"x_ohm"`
	BTotalMho float64 `yaml:"b_total_mho"`
}

// Transformer 变压器
type Transformer struct {
	Idx          int     `yaml:"transformer_idx"`
	Name         string  `yaml:"transformer_name,omitempty"`
	FromBus      int     `yaml:"from_bus_idx"`
	ToBus        int     `yaml:"to_bus_idx"`
	Closed       *bool   `yaml:"closed,omitempty"`
	RatedSMVA    float64 `yaml:"rated_s_mva"`
	VRatedHighKV float64 `yaml:"v_rated_high_kv"`
	VRatedLowKV  float64 `yaml:"v_rated_low_kv"`
	RPU          float64 `yaml:"r_pu"`
	XPU          float64 `yaml:"x_pu"`
	GmPU         float64 `yaml:"gm_pu,omitempty"`
	BmPU         float64 `yaml:"bm_pu,omitempty"`
	Tap          float64 `yaml:"tap,omitempty"`
	PhaseShift   float64 `yaml:"phase_shift,omitempty"`
}

// SOP 柔性开关
type SOP struct {
	Idx        int     `yaml:"sop_idx"`
	Name       string  `yaml:"sop_name,omitempty"`
	FromBus    int     `yaml:"from_bus_idx"`
	ToBus      int     `yaml:"to_bus_idx"`
	Closed     *bool   `yaml:"closed,omitempty"`
	RatedS     float64 `yaml:"rated_s"`
	PMW        float64 `yaml:"p_mw"`
	QFromMVAr  float64 `yaml:"q_mvar_from_to"`
	QToMVAr    float64 `yaml:"q_mvar_to_from"`
	Efficiency float64 `yaml:"efficiency,omitempty"`
}

// Load 负荷
type Load struct {
	Idx   int     `yaml:"load_idx"`
	Name  string  `yaml:"load_name,omitempty"`
	Bus   int     `yaml:"bus_idx"`
	PMW   float64 `yaml:"p_mw"`
	QMVAr float64 `yaml:"q_mvar"`
}

// Generation 电源
type Generation struct {
	Idx       int     `yaml:"generation_idx"`
	Name      string  `yaml:"generation_name,omitempty"`
	Bus       int     `yaml:"bus_idx"`
	PMW       float64 `yaml:"p_mw"`
	VoltageKV float64 `yaml:"voltage_magnitude_kv,omitempty"`
}

// Shunt 并联补偿
type Shunt struct {
	Idx   int     `yaml:"shunt_idx"`
	Name  string  `yaml:"shunt_name,omitempty"`
	Bus   int     `yaml:"bus_idx"`
	PMW   float64 `yaml:"p_mw"`
	QMVAr float64 `yaml:"q_mvar"`
}

// Battery 储能
type Battery struct {
	Idx             int     `yaml:"battery_idx"`
	Name            string  `yaml:"battery_name,omitempty"`
	Bus             int     `yaml:"bus_idx"`
	PMW             float64 `yaml:"p_mw"`
	PChargeMaxMW    float64 `yaml:"p_charge_max_mw"`
	PDischargeMaxMW float64 `yaml:"p_discharge_max_mw"`
	SOC             float64 `yaml:"soc"`
	CapacityMWh     float64 `yaml:"capacity_mwh"`
}

// BusMeasurement 母线量测
type BusMeasurement struct {
	Idx     int     `yaml:"measurement_idx"`
	Bus     int     `yaml:"bus_idx"`
	Type    string  `yaml:"measurement_type"`
	ValuePU float64 `yaml:"value_pu"`
	StdDev  float64 `yaml:"std_dev"`
}

// BranchMeasurement 支路量测,按 branch_idx 或首末母线定位支路
type BranchMeasurement struct {
	Idx     int     `yaml:"measurement_idx"`
	Branch  *int    `yaml:"branch_idx,omitempty"`
	FromBus int     `yaml:"from_bus_idx"`
	ToBus   int     `yaml:"to_bus_idx"`
	Side    string  `yaml:"side,omitempty"`
	Type    string  `yaml:"measurement_type"`
	ValuePU float64 `yaml:"value_pu"`
	StdDev  float64 `yaml:"std_dev"`
}

// Closed 开关状态,缺省为投入
func Closed(c *bool) bool { return c == nil || *c }
