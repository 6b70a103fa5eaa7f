package loadflow

import (
	"fmt"
	"math"

	"powernet/types"
)

// Options 潮流计算参数
type Options struct {
	Tolerance    float64     // 功率不平衡量收敛容差(pu)
	MaxIteration int         // 最大迭代次数
	Debug        types.Debug // 迭代记录,可为空
}

// Option 参数设置函数
type Option func(*Options)

// WithTolerance 设置收敛容差
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithMaxIteration 设置最大迭代次数
func WithMaxIteration(n int) Option {
	return func(o *Options) { o.MaxIteration = n }
}

// WithDebug 设置迭代记录
func WithDebug(d types.Debug) Option {
	return func(o *Options) { o.Debug = d }
}

// newOptions 默认参数并应用设置
func newOptions(opts []Option) (*Options, error) {
	o := &Options{
		Tolerance:    types.Tolerance,
		MaxIteration: types.MaxIterations,
	}
	for _, opt := range opts {
		opt(o)
	}
	if !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0) {
		return nil, fmt.Errorf("tolerance %g: %w", o.Tolerance, types.ErrInvalidOption)
	}
	if o.MaxIteration < 1 {
		return nil, fmt.Errorf("max iteration %d: %w", o.MaxIteration, types.ErrInvalidOption)
	}
	return o, nil
}

// debugging 是否记录迭代
func (o *Options) debugging() bool {
	return o.Debug != nil && o.Debug.IsDebug()
}
