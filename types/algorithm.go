package types

import (
	"fmt"
	"strings"
)

// Algorithm 状态估计算法
type Algorithm string

// 状态估计算法常量定义
const (
	WLS Algorithm = "WLS" // 加权最小二乘
	LAV Algorithm = "LAV" // 最小绝对值
)

// ParseAlgorithm 通过名称获取算法(不区分大小写)
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToUpper(strings.TrimSpace(name)))
	if !a.Valid() {
		return "", fmt.Errorf("%q: %w", name, ErrUnsupportedAlgorithm)
	}
	return a, nil
}

// Valid 是否为支持的算法
func (a Algorithm) Valid() bool {
	return a == WLS || a == LAV
}

// String 返回算法名称
func (a Algorithm) String() string { return string(a) }
