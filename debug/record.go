// Package debug 迭代过程记录,可输出为 JSON、网页曲线或 PNG 图片。
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"powernet/types"
)

// Record 记录历史状态
type Record struct {
	RunID      uuid.UUID         `json:"run_id"`
	Info       types.RunInfo     `json:"info"`
	Iterations []types.Iteration `json:"iterations"`
	Errors     []string          `json:"errors,omitempty"`
	off        bool
}

// Init 初始化,每次求解开始时清空历史
func (list *Record) Init(info types.RunInfo) {
	list.RunID = uuid.New()
	list.Info = info
	list.Iterations = list.Iterations[:0]
	list.Errors = nil
}

func (list *Record) IsDebug() bool    { return !list.off }
func (list *Record) SetDebug(is bool) { list.off = !is }

// Update 记录数据
func (list *Record) Update(it types.Iteration) {
	it.Vm = append([]float64(nil), it.Vm...)
	it.Va = append([]float64(nil), it.Va...)
	list.Iterations = append(list.Iterations, it)
}

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func (list *Record) Error(err error) {
	log.Printf("%s %s: %v", list.Info.Solver, list.RunID, err)
	list.Errors = append(list.Errors, err.Error())
}

// Residuals 各次迭代的最大残差
func (list *Record) Residuals() []float64 {
	out := make([]float64, len(list.Iterations))
	for i, it := range list.Iterations {
		out[i] = it.Residual
	}
	return out
}

// Last 最后一次迭代,无记录时返回 false
func (list *Record) Last() (types.Iteration, bool) {
	if len(list.Iterations) == 0 {
		return types.Iteration{}, false
	}
	return list.Iterations[len(list.Iterations)-1], true
}

// New 按输出格式创建记录器:json、html 或 png
func New(format string) (types.Debug, error) {
	switch strings.ToLower(format) {
	case "json":
		return &Record{}, nil
	case "html":
		return &Charts{}, nil
	case "png", "svg", "pdf":
		return &Plot{Format: strings.ToLower(format)}, nil
	}
	return nil, fmt.Errorf("debug format %q: %w", format, types.ErrInvalidOption)
}
