package estimation

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"powernet/jacobian"
	"powernet/maths"
	"powernet/network"
	"powernet/types"
	"powernet/ybus"
)

// Measurements 按 |v|、母线 P、母线 Q、支路 P、支路 Q 分组排列的量测
type Measurements struct {
	List []*types.Measurement // 排序后的量测
	Z    []float64            // 量测值
	W    []float64            // 权重 1/σ²
	Rows []int                // 支路量测对应的支路行,母线量测为 NoRow
}

// Assemble 组装量测向量,组内保持声明顺序
func Assemble(net *network.Network, model *ybus.Model) (*Measurements, error) {
	if len(net.Measurements) == 0 {
		return nil, types.ErrNoMeasurements
	}
	list := slices.Clone(net.Measurements)
	slices.SortStableFunc(list, func(a, b *types.Measurement) int { return cmp.Compare(a.Type, b.Type) })
	ms := &Measurements{
		List: list,
		Z:    make([]float64, len(list)),
		W:    make([]float64, len(list)),
		Rows: make([]int, len(list)),
	}
	for k, m := range list {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		ms.Rows[k] = types.NoRow
		switch m.Kind {
		case types.BusMeasurement:
			if m.Bus < 0 || m.Bus >= model.N {
				return nil, fmt.Errorf("measurement %d: %w", m.ID, types.ErrUnknownBus)
			}
		case types.BranchMeasurement:
			if m.Side != types.FromSide && m.Side != types.ToSide {
				return nil, fmt.Errorf("measurement %d: side %d: %w", m.ID, m.Side, types.ErrInvalidMeasurement)
			}
			if m.Branch < 0 || m.Branch >= len(model.BranchRow) || model.BranchRow[m.Branch] == types.NoRow {
				return nil, fmt.Errorf("measurement %d: branch %d has no admittance row: %w", m.ID, m.Branch, types.ErrInvalidMeasurement)
			}
			ms.Rows[k] = model.BranchRow[m.Branch]
		}
		ms.Z[k] = m.ValuePU
		ms.W[k] = m.Weight()
	}
	return ms, nil
}

// States 状态量列:非参考母线相角在前,幅值在后
type States struct {
	Angle     []types.BusIndex // 相角列对应母线
	Magnitude []types.BusIndex // 幅值列对应母线
	angPos    []int
	magPos    []int
}

// NewStates 去除参考母线的相角列,estimateRef 为假时同时去除其幅值列
func NewStates(n int, ref []types.BusIndex, estimateRef bool) *States {
	isRef := make([]bool, n)
	for _, i := range ref {
		isRef[i] = true
	}
	s := &States{}
	for i := 0; i < n; i++ {
		if !isRef[i] {
			s.Angle = append(s.Angle, i)
		}
		if !isRef[i] || estimateRef {
			s.Magnitude = append(s.Magnitude, i)
		}
	}
	s.angPos = maths.Index(n, s.Angle)
	s.magPos = maths.Index(n, s.Magnitude)
	return s
}

// Len 状态量个数
func (s *States) Len() int { return len(s.Angle) + len(s.Magnitude) }

// Apply 按状态修正量更新电压
func (s *States) Apply(vm, va, dx []float64) {
	na := len(s.Angle)
	for k, i := range s.Angle {
		va[i] += dx[k]
	}
	for k, i := range s.Magnitude {
		vm[i] += dx[na+k]
	}
}

// fillRow 将复偏导数矩阵第 row 行的实部或虚部写入 H 第 r 行
func (s *States) fillRow(h *mat.Dense, r int, dVa, dVm *maths.Sparse[complex128], row int, part maths.Part) {
	na := len(s.Angle)
	cols, vals := dVa.Row(row)
	for p, j := range cols {
		if c := s.angPos[j]; c >= 0 {
			h.Set(r, c, part(vals[p]))
		}
	}
	cols, vals = dVm.Row(row)
	for p, j := range cols {
		if c := s.magPos[j]; c >= 0 {
			h.Set(r, na+c, part(vals[p]))
		}
	}
}

// partOf 有功取实部,无功取虚部
func partOf(t types.MeasurementType) maths.Part {
	if t == types.QInjection || t == types.QFlow {
		return maths.ImagPart
	}
	return maths.RealPart
}

// Evaluate 计算量测函数 h(v) 与雅可比矩阵 H
func (ms *Measurements) Evaluate(model *ybus.Model, s *States, v []complex128) (hx []float64, h *mat.Dense) {
	var (
		sBus           []complex128
		busVm, busVa   *maths.Sparse[complex128]
		flow           [2][]complex128 // 首端, 末端
		flowVm, flowVa [2]*maths.Sparse[complex128]
	)
	hx = make([]float64, len(ms.List))
	h = mat.NewDense(len(ms.List), s.Len(), nil)
	for r, m := range ms.List {
		part := partOf(m.Type)
		switch m.Type {
		case types.VMagnitude:
			hx[r] = maths.Abs(v[m.Bus])
			if c := s.magPos[m.Bus]; c >= 0 {
				h.Set(r, len(s.Angle)+c, 1)
			}
		case types.PInjection, types.QInjection:
			if sBus == nil {
				sBus = model.InjectedPower(v)
				busVm, busVa = jacobian.Bus(model.Y, v)
			}
			hx[r] = part(sBus[m.Bus])
			s.fillRow(h, r, busVa, busVm, m.Bus, part)
		case types.PFlow, types.QFlow:
			side := m.Side
			if flow[side] == nil {
				flow[types.FromSide], flow[types.ToSide] = model.BranchFlows(v)
			}
			if flowVm[side] == nil {
				ys, buses := model.Side(side)
				flowVm[side], flowVa[side] = jacobian.Branch(ys, buses, v)
			}
			hx[r] = part(flow[side][ms.Rows[r]])
			s.fillRow(h, r, flowVa[side], flowVm[side], ms.Rows[r], part)
		}
	}
	return hx, h
}

// Measure 只计算量测函数 h(v)
func (ms *Measurements) Measure(model *ybus.Model, v []complex128) []float64 {
	sBus := model.InjectedPower(v)
	sf, st := model.BranchFlows(v)
	hx := make([]float64, len(ms.List))
	for r, m := range ms.List {
		part := partOf(m.Type)
		switch m.Type {
		case types.VMagnitude:
			hx[r] = maths.Abs(v[m.Bus])
		case types.PInjection, types.QInjection:
			hx[r] = part(sBus[m.Bus])
		case types.PFlow, types.QFlow:
			if m.Side == types.ToSide {
				hx[r] = part(st[ms.Rows[r]])
			} else {
				hx[r] = part(sf[ms.Rows[r]])
			}
		}
	}
	return hx
}
