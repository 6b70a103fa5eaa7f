package estimation

import (
	"fmt"
	"math"

	"powernet/types"
)

// Options 状态估计参数
type Options struct {
	Tolerance      float64         // 状态修正量收敛容差
	MaxIteration   int             // 最大迭代次数
	Algorithm      types.Algorithm // 估计算法
	SlackMagnitude bool            // 是否估计参考母线电压幅值
	Debug          types.Debug     // 迭代记录,可为空
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

// WithAlgorithm 设置估计算法
func WithAlgorithm(a types.Algorithm) Option {
	return func(o *Options) { o.Algorithm = a }
}

// WithSlackMagnitude 参考母线电压幅值作为状态量参与估计
func WithSlackMagnitude(estimate bool) Option {
	return func(o *Options) { o.SlackMagnitude = estimate }
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
		Algorithm:    types.DefaultAlgorithm,
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.Algorithm.Valid() {
		return nil, fmt.Errorf("%q: %w", o.Algorithm, types.ErrUnsupportedAlgorithm)
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
