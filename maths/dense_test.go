package maths

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestSolveDense 验证稠密线性方程组求解
func TestSolveDense(t *testing.T) {
	// 预期解 x = [35/18, 29/18, 5/18]
	a := mat.NewDense(3, 3, []float64{2, 3, 1, 1, 2, 3, 3, 1, 2})
	x, err := Solve(a, []float64{9, 6, 8})
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	expected := []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}
	for i := range expected {
		if math.Abs(x[i]-expected[i]) > 1e-9 {
			t.Errorf("x[%d] 不正确. 得到 %f, 期望 %f", i, x[i], expected[i])
		}
	}
}

// TestSolveSingular 验证奇异矩阵返回错误
func TestSolveSingular(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 0, 0, 0})
	if _, err := Solve(a, []float64{1, 2, 3}); !errors.Is(err, ErrSingular) {
		t.Errorf("奇异矩阵应返回 ErrSingular, 得到 %v", err)
	}
}

// TestSolveNormal 验证加权最小二乘正规方程
func TestSolveNormal(t *testing.T) {
	// 超定但相容的方程组,任意正权重都应得到精确解 x = [1, 2]
	a := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	x, err := SolveNormal(a, []float64{1, 4, 9}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if math.Abs(x[0]-1) > 1e-12 || math.Abs(x[1]-2) > 1e-12 {
		t.Errorf("解不正确: %v", x)
	}
	// 列相关时增益矩阵奇异
	b := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	if _, err := SolveNormal(b, []float64{1, 1}, []float64{1, 1}); !errors.Is(err, ErrSingular) {
		t.Errorf("增益矩阵奇异时应返回 ErrSingular, 得到 %v", err)
	}
}

// TestFillBlock 验证复稀疏子块提取
func TestFillBlock(t *testing.T) {
	sm := NewSparse[complex128](3, 3)
	sm.Set(0, 0, 1+2i)
	sm.Set(1, 2, 3+4i)
	sm.Set(2, 1, 5+6i)
	dst := mat.NewDense(2, 2, nil)
	FillBlock(dst, 0, 0, sm, []int{1, 2}, []int{1, 2}, ImagPart)
	want := mat.NewDense(2, 2, []float64{0, 4, 6, 0})
	if !mat.Equal(dst, want) {
		t.Errorf("子块不正确: %v", mat.Formatted(dst))
	}
}

// TestPolarRoundTrip 验证极坐标构造与分解
func TestPolarRoundTrip(t *testing.T) {
	vm := []float64{1.02, 0.98}
	va := []float64{0.1, -0.2}
	v := Polar(vm, va)
	for i := range vm {
		m, a := cmplx.Abs(v[i]), cmplx.Phase(v[i])
		if math.Abs(m-vm[i]) > 1e-12 || math.Abs(a-va[i]) > 1e-12 {
			t.Errorf("第%d个元素往返错误: %v %v", i, m, a)
		}
	}
	if MaxAbs([]float64{1, -3, 2}) != 3 || MaxAbs(nil) != 0 {
		t.Errorf("无穷范数不正确")
	}
}
