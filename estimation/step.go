package estimation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"powernet/maths"
	"powernet/types"
)

const (
	duplicateTolerance  = 1e-12 // 重复量测行判定
	reweightIterations  = 50    // 重加权最小二乘内迭代上限
	reweightFloor       = 1e-3  // 残差下限相对 max|r| 的比例
	reweightConvergence = 1e-12 // 重加权修正量收敛判据
)

// Step 单次迭代的状态修正量求解
type Step func(h *mat.Dense, w, r []float64) ([]float64, error)

// stepFor 按算法选择修正量求解方法
func stepFor(a types.Algorithm) (Step, error) {
	switch a {
	case types.WLS:
		return WLS, nil
	case types.LAV:
		return LAV, nil
	}
	return nil, fmt.Errorf("%q: %w", a, types.ErrUnsupportedAlgorithm)
}

// WLS 加权最小二乘 (HᵗWH)·Δx = HᵗW·r
func WLS(h *mat.Dense, w, r []float64) ([]float64, error) {
	dx, err := maths.SolveNormal(h, w, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSingular, err)
	}
	return dx, nil
}

// LAV 最小绝对值估计,线性规划
//
//	min Σ c·(r⁺ + r⁻)  s.t.  H·Δx⁺ − H·Δx⁻ + r⁺ − r⁻ = r,  Δx⁺, Δx⁻, r⁺, r⁻ ≥ 0
//
// 单纯形法失败或所得解不优于 Δx = 0 时,改用迭代重加权最小二乘逼近同一 L1 解。
func LAV(h *mat.Dense, _ []float64, r []float64) ([]float64, error) {
	dx, err := simplex(h, r)
	if err == nil {
		return dx, nil
	}
	dx, rerr := reweighted(h, r)
	if rerr != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSingular, errors.Join(err, rerr))
	}
	return dx, nil
}

// lpRow 预处理后的量测行,c 为该行残差在目标函数中的系数
type lpRow struct {
	h    []float64
	b, c float64
}

// presolve 行归一化、合并重复行、去掉与状态无关的零行,并按 max|b| 缩放右端项
//
// 零行的残差与 Δx 无关,只给目标函数加常数。
func presolve(h *mat.Dense, r []float64) (rows []lpRow, scale float64) {
	m, n := h.Dims()
	for i := 0; i < m; i++ {
		raw := h.RawRowView(i)
		s := floats.Norm(raw, math.Inf(1))
		if s == 0 {
			continue
		}
		// 首个非零元取正号,使 ±h 两行可比较
		for _, v := range raw {
			if v != 0 {
				if v < 0 {
					s = -s
				}
				break
			}
		}
		row := lpRow{h: make([]float64, n), b: r[i] / s, c: math.Abs(s)}
		floats.ScaleTo(row.h, 1/s, raw)
		merged := false
		for k := range rows {
			if math.Abs(rows[k].b-row.b) <= duplicateTolerance && floats.EqualApprox(rows[k].h, row.h, duplicateTolerance) {
				rows[k].c += row.c
				merged = true
				break
			}
		}
		if !merged {
			rows = append(rows, row)
		}
	}
	var cmax float64
	for _, row := range rows {
		scale = math.Max(scale, math.Abs(row.b))
		cmax = math.Max(cmax, row.c)
	}
	for k := range rows {
		if scale > 0 {
			rows[k].b /= scale
		}
		rows[k].c /= cmax
	}
	return rows, scale
}

// simplex 以残差松弛变量为初始基求解 LAV 线性规划
func simplex(h *mat.Dense, r []float64) ([]float64, error) {
	_, n := h.Dims()
	rows, scale := presolve(h, r)
	dx := make([]float64, n)
	if scale == 0 {
		return dx, nil
	}
	m := len(rows)
	cols := 2*n + 2*m
	c := make([]float64, cols)
	b := make([]float64, m)
	a := mat.NewDense(m, cols, nil)
	basic := make([]int, m)
	for i, row := range rows {
		for j, v := range row.h {
			a.Set(i, j, v)
			a.Set(i, n+j, -v)
		}
		a.Set(i, 2*n+i, 1)
		a.Set(i, 2*n+m+i, -1)
		c[2*n+i], c[2*n+m+i] = row.c, row.c
		b[i] = row.b
		// 基矩阵为 ±I,基解 |b| 可行
		if row.b >= 0 {
			basic[i] = 2*n + i
		} else {
			basic[i] = 2*n + m + i
		}
	}
	_, x, err := lp.Simplex(c, a, b, types.LPTolerance, basic)
	if err != nil {
		if errors.Is(err, lp.ErrZeroColumn) {
			err = fmt.Errorf("unobservable state: %w", err)
		}
		return nil, err
	}
	for j := range dx {
		dx[j] = x[j] - x[n+j]
	}
	// 最优解的目标值不会高于 Δx = 0 时的值
	var got, start float64
	for _, row := range rows {
		got += row.c * math.Abs(row.b-floats.Dot(row.h, dx))
		start += row.c * math.Abs(row.b)
	}
	if math.IsNaN(got) || got > start+types.LPTolerance*(1+start) {
		return nil, fmt.Errorf("lp: objective %g above starting point %g", got, start)
	}
	floats.Scale(scale, dx)
	return dx, nil
}

// reweighted 迭代重加权最小二乘,权重 1/max(|rᵢ − hᵢ·Δx|, δ)
func reweighted(h *mat.Dense, r []float64) ([]float64, error) {
	m, n := h.Dims()
	w := make([]float64, m)
	for i := range w {
		w[i] = 1
	}
	dx, err := maths.SolveNormal(h, w, r)
	if err != nil {
		return nil, err
	}
	res := make([]float64, m)
	var hx mat.VecDense
	for k := 0; k < reweightIterations; k++ {
		hx.MulVec(h, mat.NewVecDense(n, dx))
		for i := range res {
			res[i] = r[i] - hx.AtVec(i)
		}
		delta := math.Max(reweightFloor*maths.MaxAbs(res), maths.Epsilon)
		for i := range w {
			w[i] = 1 / math.Max(math.Abs(res[i]), delta)
		}
		next, err := maths.SolveNormal(h, w, r)
		if err != nil {
			break
		}
		change := floats.Distance(next, dx, math.Inf(1))
		dx = next
		if change <= reweightConvergence*(1+maths.MaxAbs(dx)) {
			break
		}
	}
	return dx, nil
}
