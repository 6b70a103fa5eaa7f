package maths

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular 稠密求解失败(奇异或病态)
var ErrSingular = errors.New("maths: singular or ill-conditioned matrix")

// Index 将子集索引映射为位置,不在子集中的返回 -1
func Index(n int, subset []int) []int {
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	for k, i := range subset {
		pos[i] = k
	}
	return pos
}

// FillBlock 将复稀疏矩阵的 rows×cols 子块取实部或虚部后写入 dst 的 (r0,c0) 位置
func FillBlock(dst *mat.Dense, r0, c0 int, m *Sparse[complex128], rows, cols []int, part Part) {
	if len(rows) == 0 || len(cols) == 0 {
		return
	}
	colPos := Index(m.Cols(), cols)
	for k, i := range rows {
		ci, vi := m.Row(i)
		for p, j := range ci {
			if c := colPos[j]; c >= 0 {
				dst.Set(r0+k, c0+c, part(vi[p]))
			}
		}
	}
}

// Solve 求解稠密线性方程组 A·x = b,维度为零时返回空解
func Solve(a *mat.Dense, b []float64) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	r, c := a.Dims()
	if r != c || r != len(b) {
		panic(fmt.Sprintf("maths: solve dimension mismatch: A %dx%d, b %d", r, c, len(b)))
	}
	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(len(b), append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return x.RawVector().Data, nil
}

// SolveNormal 用 Cholesky 分解求解正规方程 (AᵗWA)·x = AᵗW·b,w 为对角权重
func SolveNormal(a *mat.Dense, w, b []float64) ([]float64, error) {
	m, n := a.Dims()
	if len(w) != m || len(b) != m {
		panic(fmt.Sprintf("maths: normal equation dimension mismatch: A %dx%d, w %d, b %d", m, n, len(w), len(b)))
	}
	if n == 0 {
		return nil, nil
	}
	// 加权: Aw = diag(√w)·A, bw = diag(√w)·b
	aw := mat.DenseCopyOf(a)
	bw := make([]float64, m)
	for i := 0; i < m; i++ {
		s := math.Sqrt(w[i])
		row := aw.RawRowView(i)
		for j := range row {
			row[j] *= s
		}
		bw[i] = s * b[i]
	}
	var g mat.SymDense
	g.SymOuterK(1, aw.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&g); !ok {
		return nil, fmt.Errorf("%w: gain matrix is not positive definite", ErrSingular)
	}
	var rhs mat.VecDense
	rhs.MulVec(aw.T(), mat.NewVecDense(m, bw))
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, &rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return x.RawVector().Data, nil
}
