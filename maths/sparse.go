package maths

import (
	"fmt"
	"sort"
	"strings"
)

// Sparse 稀疏矩阵数据结构
// 使用CSR (Compressed Sparse Row) 格式存储,行内列索引有序
type Sparse[T Number] struct {
	rows, cols int
	rowPtr     []int // 行指针数组
	colInd     []int // 列索引数组
	values     []T   // 非零元素值
}

// NewSparse 创建新的稀疏矩阵
func NewSparse[T Number](rows, cols int) *Sparse[T] {
	if rows < 0 || cols < 0 {
		panic("maths: invalid matrix dimensions: cannot be negative")
	}
	return &Sparse[T]{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1), // 多一个元素用于存储结束位置
	}
}

// Dims 返回行数与列数
func (m *Sparse[T]) Dims() (int, int) { return m.rows, m.cols }

// Rows 返回行数
func (m *Sparse[T]) Rows() int { return m.rows }

// Cols 返回列数
func (m *Sparse[T]) Cols() int { return m.cols }

// NonZeroCount 返回已存储元素数量
func (m *Sparse[T]) NonZeroCount() int { return len(m.values) }

// search 二分查找列索引在当前行的位置
func (m *Sparse[T]) search(row, col int) (pos int, found bool) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("maths: index out of range: row=%d, col=%d (rows=%d, cols=%d)", row, col, m.rows, m.cols))
	}
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	pos = sort.Search(end-start, func(i int) bool {
		return m.colInd[start+i] >= col
	}) + start
	return pos, pos < end && m.colInd[pos] == col
}

// At 获取矩阵元素
func (m *Sparse[T]) At(row, col int) T {
	pos, ok := m.search(row, col)
	if ok {
		return m.values[pos]
	}
	var zero T
	return zero
}

// Set 设置矩阵元素,零值删除已有元素
func (m *Sparse[T]) Set(row, col int, value T) {
	pos, ok := m.search(row, col)
	var zero T
	switch {
	case ok && value == zero:
		m.deleteElement(row, pos)
	case ok:
		m.values[pos] = value
	case value != zero:
		m.insertElement(row, col, value, pos)
	}
}

// Increment 增量设置矩阵元素,结构位置保留(即使累加结果为零)
func (m *Sparse[T]) Increment(row, col int, value T) {
	pos, ok := m.search(row, col)
	if ok {
		m.values[pos] += value
		return
	}
	m.insertElement(row, col, value, pos)
}

// deleteElement 删除指定位置的元素
func (m *Sparse[T]) deleteElement(row, pos int) {
	m.colInd = append(m.colInd[:pos], m.colInd[pos+1:]...)
	m.values = append(m.values[:pos], m.values[pos+1:]...)
	// 更新后续行的指针
	for i := row + 1; i <= m.rows; i++ {
		m.rowPtr[i]--
	}
}

// insertElement 在指定位置插入元素
func (m *Sparse[T]) insertElement(row, col int, value T, pos int) {
	m.colInd = append(m.colInd, 0)
	copy(m.colInd[pos+1:], m.colInd[pos:])
	m.colInd[pos] = col
	var zero T
	m.values = append(m.values, zero)
	copy(m.values[pos+1:], m.values[pos:])
	m.values[pos] = value
	// 更新后续行的指针
	for i := row + 1; i <= m.rows; i++ {
		m.rowPtr[i]++
	}
}

// Do 按行优先顺序遍历所有已存储元素
func (m *Sparse[T]) Do(fn func(row, col int, v T)) {
	for i := 0; i < m.rows; i++ {
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			fn(i, m.colInd[p], m.values[p])
		}
	}
}

// Row 获取指定行的列索引与值(共享底层存储,只读)
func (m *Sparse[T]) Row(row int) ([]int, []T) {
	if row < 0 || row >= m.rows {
		panic("maths: row index out of range")
	}
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	return m.colInd[start:end], m.values[start:end]
}

// MulVec 矩阵向量乘法 A*x
func (m *Sparse[T]) MulVec(x []T) []T {
	if len(x) != m.cols {
		panic(fmt.Sprintf("maths: vector dimension mismatch: x length=%d, matrix cols=%d", len(x), m.cols))
	}
	result := make([]T, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum T
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			sum += m.values[p] * x[m.colInd[p]]
		}
		result[i] = sum
	}
	return result
}

// Clone 深拷贝
func (m *Sparse[T]) Clone() *Sparse[T] {
	return &Sparse[T]{
		rows:   m.rows,
		cols:   m.cols,
		rowPtr: append([]int(nil), m.rowPtr...),
		colInd: append([]int(nil), m.colInd...),
		values: append([]T(nil), m.values...),
	}
}

// Clear 将矩阵重置为零矩阵
func (m *Sparse[T]) Clear() {
	m.colInd = m.colInd[:0]
	m.values = m.values[:0]
	clear(m.rowPtr)
}

// BuildFromDense 从稠密矩阵构建(覆盖原有数据)
func (m *Sparse[T]) BuildFromDense(dense [][]T) {
	if len(dense) != m.rows || (len(dense) > 0 && len(dense[0]) != m.cols) {
		panic("maths: dimension mismatch")
	}
	m.Clear()
	var zero T
	for i := 0; i < m.rows; i++ {
		m.rowPtr[i] = len(m.values)
		for j := 0; j < m.cols; j++ {
			if dense[i][j] != zero {
				m.colInd = append(m.colInd, j)
				m.values = append(m.values, dense[i][j])
			}
		}
	}
	m.rowPtr[m.rows] = len(m.values)
}

// String 字符串表示
func (m *Sparse[T]) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			fmt.Fprintf(&sb, "%v ", m.At(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
