// Package ybus 节点导纳矩阵与支路导纳矩阵的形成。
package ybus

import (
	"fmt"
	"math/cmplx"

	"powernet/maths"
	"powernet/network"
	"powernet/types"
)

// Model 导纳模型,每次求解重新形成
type Model struct {
	N, M      int                       // 母线数, 支路行数(线路+变压器)
	Y         *maths.Sparse[complex128] // 节点导纳矩阵 N×N
	Yf        *maths.Sparse[complex128] // 首端支路导纳矩阵 M×N, I_from = Yf·v
	Yt        *maths.Sparse[complex128] // 末端支路导纳矩阵 M×N, I_to = Yt·v
	FromBus   []types.BusIndex          // 支路行首端母线
	ToBus     []types.BusIndex          // 支路行末端母线
	Branch    []types.BranchIndex       // 支路行对应的支路索引
	BranchRow []int                     // 支路索引对应的支路行,SOP 为 NoRow
}

// Build 由网络参数形成导纳模型,断开的支路保留零行
func Build(net *network.Network) (*Model, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}
	n := net.N()
	model := &Model{N: n, BranchRow: make([]int, len(net.Branches))}
	for k, b := range net.Branches {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		model.BranchRow[k] = types.NoRow
		if b.IsAdmittance() {
			model.BranchRow[k] = model.M
			model.FromBus = append(model.FromBus, b.From)
			model.ToBus = append(model.ToBus, b.To)
			model.Branch = append(model.Branch, k)
			model.M++
		}
	}
	model.Y = maths.NewSparse[complex128](n, n)
	model.Yf = maths.NewSparse[complex128](model.M, n)
	model.Yt = maths.NewSparse[complex128](model.M, n)

	for _, s := range net.Shunts {
		model.Y.Increment(s.Bus, s.Bus, complex(net.Base.MWToPU(s.PMW), -net.Base.MWToPU(s.QMVAr)))
	}
	for k, b := range net.Branches {
		row := model.BranchRow[k]
		if row == types.NoRow || !b.Closed {
			continue
		}
		var err error
		switch b.Kind {
		case types.KindLine:
			err = model.stampLine(net, row, b)
		case types.KindTransformer:
			err = model.stampTransformer(net, row, b)
		}
		if err != nil {
			return nil, err
		}
	}
	return model, nil
}

// stamp 写入支路二端口导纳
//
//	[I_i]   [yii yij] [v_i]
//	[I_j] = [yji yjj] [v_j]
func (model *Model) stamp(row int, i, j types.BusIndex, yii, yij, yji, yjj complex128) {
	model.Y.Increment(i, i, yii)
	model.Y.Increment(i, j, yij)
	model.Y.Increment(j, i, yji)
	model.Y.Increment(j, j, yjj)
	model.Yf.Increment(row, i, yii)
	model.Yf.Increment(row, j, yij)
	model.Yt.Increment(row, i, yji)
	model.Yt.Increment(row, j, yjj)
}

// stampLine 线路 π 型等值,有名值按首端母线电压等级换算
func (model *Model) stampLine(net *network.Network, row int, b *types.Branch) error {
	vn := net.Buses[b.From].VoltageLevelKV
	if vn <= 0 {
		return fmt.Errorf("%s: from bus has no voltage level: %w", b.Label(), types.ErrInvalidBranch)
	}
	z := complex(net.Base.OhmToPU(b.Line.ROhm, vn), net.Base.OhmToPU(b.Line.XOhm, vn))
	y := 1 / z
	ych := complex(0, net.Base.MhoToPU(b.Line.BTotalMho, vn)/2)
	model.stamp(row, b.From, b.To, y+ych, -y, -y, y+ych)
	return nil
}

// stampTransformer 变压器等值,理想变比 a = tap·e^{jθ} 位于首端
func (model *Model) stampTransformer(net *network.Network, row int, b *types.Branch) error {
	t := b.Transformer
	vt := net.Buses[b.To].VoltageLevelKV
	if vt <= 0 {
		return fmt.Errorf("%s: to bus has no voltage level: %w", b.Label(), types.ErrInvalidBranch)
	}
	// 变压器自身基准阻抗(Ω)
	zBase := t.VRatedLowKV * t.VRatedLowKV / t.RatedSMVA
	z := complex(net.Base.OhmToPU(t.RPU*zBase, t.VRatedLowKV), net.Base.OhmToPU(t.XPU*zBase, t.VRatedLowKV))
	y := 1 / z
	ysh := complex(net.Base.MhoToPU(t.GmPU/zBase, vt), net.Base.MhoToPU(t.BmPU/zBase, vt))
	tap := t.EffectiveTap()
	a := cmplx.Rect(tap, types.Deg2Rad(t.PhaseShiftDeg))
	model.stamp(row, b.From, b.To,
		y/complex(tap*tap, 0)+ysh/2, -y/cmplx.Conj(a),
		-y/a, y+ysh/2)
	return nil
}

// Currents 母线注入电流 I = Y·v
func (model *Model) Currents(v []complex128) []complex128 {
	return model.Y.MulVec(v)
}

// InjectedPower 母线注入功率 S = v∘conj(Y·v)
func (model *Model) InjectedPower(v []complex128) []complex128 {
	i := model.Currents(v)
	s := make([]complex128, model.N)
	for k := range s {
		s[k] = v[k] * cmplx.Conj(i[k])
	}
	return s
}

// BranchFlows 支路首末端功率 S_f = v_f∘conj(Yf·v), S_t = v_t∘conj(Yt·v)
func (model *Model) BranchFlows(v []complex128) (sf, st []complex128) {
	iF, iT := model.Yf.MulVec(v), model.Yt.MulVec(v)
	sf = make([]complex128, model.M)
	st = make([]complex128, model.M)
	for k := 0; k < model.M; k++ {
		sf[k] = v[model.FromBus[k]] * cmplx.Conj(iF[k])
		st[k] = v[model.ToBus[k]] * cmplx.Conj(iT[k])
	}
	return sf, st
}

// Side 支路某一端的导纳矩阵与母线映射
func (model *Model) Side(side types.Side) (*maths.Sparse[complex128], []types.BusIndex) {
	if side == types.ToSide {
		return model.Yt, model.ToBus
	}
	return model.Yf, model.FromBus
}
