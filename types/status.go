package types

import "fmt"

// Status 求解状态
type Status uint8

// 求解状态常量定义
const (
	Converged Status = iota // 已收敛
	Diverged                // 达到最大迭代次数仍未收敛
)

// String 返回状态名称
func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "diverged"
}

// MarshalText 文本编码
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText 文本解码
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "converged":
		*s = Converged
	case "diverged":
		*s = Diverged
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}
