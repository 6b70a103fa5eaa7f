package types

import "fmt"

// BranchKind 支路类型
type BranchKind uint8

// 支路类型常量定义
const (
	KindLine        BranchKind = iota // 线路
	KindTransformer                   // 双绕组变压器
	KindSOP                           // 柔性开关(软开环点)
)

// branchKindString 类型名称映射
var branchKindString = map[BranchKind]string{
	KindLine:        "Line",
	KindTransformer: "Transformer",
	KindSOP:         "SOP",
}

// String 返回支路类型的字符串表示
func (k BranchKind) String() string {
	if s, ok := branchKindString[k]; ok {
		return s
	}
	return fmt.Sprintf("BranchKind(%d)", uint8(k))
}

// Line 线路参数(有名值)
type Line struct {
	ROhm      float64 // 串联电阻(Ω)
	XOhm      float64 // 串联电抗(Ω)
	BTotalMho float64 // 总充电电纳(S)
}

// Transformer 变压器参数,首端为高压侧,末端为低压侧
type Transformer struct {
	RatedSMVA     float64 // 额定容量(MVA)
	VRatedHighKV  float64 // 高压侧额定电压(kV)
	VRatedLowKV   float64 // 低压侧额定电压(kV)
	RPU           float64 // 绕组电阻(变压器自身基准 pu)
	XPU           float64 // 绕组电抗(变压器自身基准 pu)
	GmPU          float64 // 励磁电导(变压器自身基准 pu)
	BmPU          float64 // 励磁电纳(变压器自身基准 pu)
	Tap           float64 // 非标准变比,0 视为 1
	PhaseShiftDeg float64 // 移相角(度)
}

// EffectiveTap 返回有效变比
func (t *Transformer) EffectiveTap() float64 {
	if t.Tap == 0 {
		return 1
	}
	return t.Tap
}

// SOP 柔性开关参数,以受控注入功率建模
type SOP struct {
	RatedSMVA     float64 // 额定容量(MVA)
	PMW           float64 // 首端流向末端的有功(MW)
	QFromMVAr     float64 // 首端换流器注入无功(MVAr)
	QToMVAr       float64 // 末端换流器注入无功(MVAr)
	EfficiencyPct float64 // 传输效率(%),0 视为 100
}

// Efficiency 返回传输效率(0..1)
func (s *SOP) Efficiency() float64 {
	if s.EfficiencyPct <= 0 {
		return 1
	}
	return s.EfficiencyPct / 100
}

// Branch 支路,按 Kind 选择对应参数块
type Branch struct {
	ID          BranchID     // 外部编号
	Index       BranchIndex  // 稠密索引,由网络分配
	Name        string       // 名称
	Kind        BranchKind   // 支路类型
	From        BusIndex     // 首端母线稠密索引
	To          BusIndex     // 末端母线稠密索引
	Closed      bool         // 开关状态,true 为投入
	Line        *Line        // Kind == KindLine
	Transformer *Transformer // Kind == KindTransformer
	SOP         *SOP         // Kind == KindSOP
}

// Validate 检查参数块与类型是否一致
func (b *Branch) Validate() error {
	var ok bool
	switch b.Kind {
	case KindLine:
		ok = b.Line != nil && b.Transformer == nil && b.SOP == nil
		if ok && b.Line.ROhm == 0 && b.Line.XOhm == 0 {
			return fmt.Errorf("line %d has zero impedance: %w", b.ID, ErrInvalidBranch)
		}
	case KindTransformer:
		ok = b.Transformer != nil && b.Line == nil && b.SOP == nil
		if ok {
			t := b.Transformer
			if t.RatedSMVA <= 0 || t.VRatedLowKV <= 0 {
				return fmt.Errorf("transformer %d needs rated power and low side voltage: %w", b.ID, ErrInvalidBranch)
			}
			if t.RPU == 0 && t.XPU == 0 {
				return fmt.Errorf("transformer %d has zero impedance: %w", b.ID, ErrInvalidBranch)
			}
		}
	case KindSOP:
		ok = b.SOP != nil && b.Line == nil && b.Transformer == nil
	default:
		return fmt.Errorf("branch %d: unknown kind %s: %w", b.ID, b.Kind, ErrInvalidBranch)
	}
	if !ok {
		return fmt.Errorf("branch %d: parameters do not match kind %s: %w", b.ID, b.Kind, ErrInvalidBranch)
	}
	if b.From == b.To {
		return fmt.Errorf("branch %d connects bus %d to itself: %w", b.ID, b.From, ErrInvalidBranch)
	}
	return nil
}

// IsAdmittance 线路与变压器参与导纳矩阵并占用支路行
func (b *Branch) IsAdmittance() bool {
	return b.Kind == KindLine || b.Kind == KindTransformer
}

// Label 支路显示名称
func (b *Branch) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%s %d", b.Kind, b.ID)
}
