package maths

import (
	"reflect"
	"testing"
)

// TestSparseSetGet 验证稀疏矩阵的设置、读取与删除
func TestSparseSetGet(t *testing.T) {
	sm := NewSparse[float64](3, 3)
	sm.Set(0, 0, 1.0)
	sm.Set(1, 1, 2.0)
	sm.Set(2, 2, 3.0)
	sm.Set(0, 2, 4.0)

	if sm.NonZeroCount() != 4 {
		t.Fatalf("希望有4个非零元素, 得到 %d", sm.NonZeroCount())
	}
	if sm.At(0, 2) != 4.0 || sm.At(2, 0) != 0 {
		t.Errorf("元素读取错误: (0,2)=%v (2,0)=%v", sm.At(0, 2), sm.At(2, 0))
	}

	// 设置为零应删除元素
	sm.Set(0, 2, 0)
	if sm.NonZeroCount() != 3 {
		t.Errorf("希望删除后有3个非零元素, 得到 %d", sm.NonZeroCount())
	}
	cols, vals := sm.Row(0)
	if !reflect.DeepEqual(cols, []int{0}) || !reflect.DeepEqual(vals, []float64{1}) {
		t.Errorf("第0行不正确: cols=%v vals=%v", cols, vals)
	}
}

// TestSparseIncrement 验证增量更新保留结构位置
func TestSparseIncrement(t *testing.T) {
	sm := NewSparse[complex128](2, 2)
	sm.Increment(0, 1, 1+2i)
	sm.Increment(0, 1, -1-2i)
	if sm.NonZeroCount() != 1 {
		t.Fatalf("增量为零时应保留结构位置, 得到 %d", sm.NonZeroCount())
	}
	if sm.At(0, 1) != 0 {
		t.Errorf("累加结果应为0, 得到 %v", sm.At(0, 1))
	}
	sm.Increment(1, 0, 3i)
	sm.Increment(0, 0, 1)
	cols, _ := sm.Row(0)
	if !reflect.DeepEqual(cols, []int{0, 1}) {
		t.Errorf("行内列索引应有序, 得到 %v", cols)
	}
}

// TestSparseMulVec 验证矩阵向量乘法
func TestSparseMulVec(t *testing.T) {
	// A = [[2, 3, 1],
	//      [1, 2, 3],
	//      [3, 1, 2]]
	sm := NewSparse[float64](3, 3)
	sm.BuildFromDense([][]float64{{2, 3, 1}, {1, 2, 3}, {3, 1, 2}})
	got := sm.MulVec([]float64{1, 1, 1})
	want := []float64{6, 6, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("乘法结果不正确: 期望 %v, 实际 %v", want, got)
	}
	if sm.At(0, 1) != 3 || sm.At(2, 0) != 3 || sm.NonZeroCount() != 9 {
		t.Errorf("稠密构建不正确: %v", sm)
	}
}

// TestSparseCloneIndependent 验证深拷贝互不影响
func TestSparseCloneIndependent(t *testing.T) {
	sm := NewSparse[float64](2, 2)
	sm.Set(0, 0, 1)
	c := sm.Clone()
	c.Set(0, 0, 5)
	c.Set(1, 1, 7)
	if sm.At(0, 0) != 1 || sm.At(1, 1) != 0 {
		t.Errorf("原矩阵被修改: %v", sm)
	}
	sm.Clear()
	if sm.NonZeroCount() != 0 || c.NonZeroCount() != 2 {
		t.Errorf("清空后计数错误: %d %d", sm.NonZeroCount(), c.NonZeroCount())
	}
}

// TestSparseOutOfRange 验证越界访问触发 panic
func TestSparseOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("越界访问应触发 panic")
		}
	}()
	NewSparse[float64](2, 2).At(2, 0)
}
