package types

import (
	"fmt"
	"strings"
)

// MeasurementKind 量测类别
type MeasurementKind uint8

// 量测类别常量定义
const (
	BusMeasurement    MeasurementKind = iota // 母线量测
	BranchMeasurement                        // 支路量测
)

// MeasurementType 量测量类型,数值顺序即量测向量分组顺序
type MeasurementType uint8

// 量测量类型常量定义
const (
	VMagnitude MeasurementType = iota // 电压幅值
	PInjection                        // 有功注入
	QInjection                        // 无功注入
	PFlow                             // 有功潮流
	QFlow                             // 无功潮流
)

// measurementTypeString 类型名称映射(与案例文件一致)
var measurementTypeString = map[MeasurementType]string{
	VMagnitude: "v_magnitude",
	PInjection: "p_injection",
	QInjection: "q_injection",
	PFlow:      "p_flow",
	QFlow:      "q_flow",
}

// String 返回量测量类型的字符串表示
func (t MeasurementType) String() string {
	if s, ok := measurementTypeString[t]; ok {
		return s
	}
	return fmt.Sprintf("MeasurementType(%d)", uint8(t))
}

// ParseMeasurementType 通过名称获取量测量类型
func ParseMeasurementType(name string) (MeasurementType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, s := range measurementTypeString {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown measurement type %q: %w", name, ErrInvalidMeasurement)
}

// MarshalText 文本编码
func (t MeasurementType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText 文本解码
func (t *MeasurementType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseMeasurementType(string(b))
	return err
}

// Kind 量测量所属类别
func (t MeasurementType) Kind() MeasurementKind {
	if t == PFlow || t == QFlow {
		return BranchMeasurement
	}
	return BusMeasurement
}

// Side 支路量测所在端
type Side uint8

// 支路端常量定义
const (
	FromSide Side = iota // 首端
	ToSide               // 末端
)

// String 返回支路端名称
func (s Side) String() string {
	if s == ToSide {
		return "to"
	}
	return "from"
}

// Measurement 量测,按 Kind 使用 Bus 或 Branch/Side
type Measurement struct {
	ID      MeasurementID   // 外部编号
	Kind    MeasurementKind // 量测类别
	Type    MeasurementType // 量测量类型
	Bus     BusIndex        // Kind == BusMeasurement
	Branch  BranchIndex     // Kind == BranchMeasurement
	Side    Side            // 支路量测所在端
	ValuePU float64         // 量测值(pu)
	StdDev  float64         // 标准差(pu)
}

// Weight 量测权重 1/σ²
func (m *Measurement) Weight() float64 {
	return 1 / (m.StdDev * m.StdDev)
}

// Validate 检查量测是否完整
func (m *Measurement) Validate() error {
	if m.StdDev <= 0 {
		return fmt.Errorf("measurement %d: standard deviation %g must be positive: %w", m.ID, m.StdDev, ErrInvalidMeasurement)
	}
	if m.Type.Kind() != m.Kind {
		return fmt.Errorf("measurement %d: %s is not a %s quantity: %w", m.ID, m.Type, m.Kind, ErrInvalidMeasurement)
	}
	return nil
}

// String 返回量测类别名称
func (k MeasurementKind) String() string {
	if k == BranchMeasurement {
		return "branch"
	}
	return "bus"
}
