package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

// legend 图例放在右侧并可滚动
var legend = opts.Legend{
	Type:   "scroll",
	Orient: "vertical",
	Right:  "10",
	Top:    "20",
	Bottom: "20",
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	iters := make([]int, len(c.Iterations))
	for i, it := range c.Iterations {
		iters[i] = it.Iter
	}
	// 残差曲线
	lineR := charts.NewLine()
	lineR.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "收敛曲线",
			Subtitle: fmt.Sprintf("%s %s 最大残差,容差 %g", c.Info.Solver, c.Info.Algorithm, c.Info.Tolerance),
		}),
		charts.WithLegendOpts(legend),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "log",
			Scale: opts.Bool(true),
		}),
		charts.WithAnimation(true),
	)
	lineR.SetXAxis(iters)
	items := make([]opts.LineData, len(c.Iterations))
	for i, it := range c.Iterations {
		items[i] = opts.LineData{Value: it.Residual}
	}
	lineR.AddSeries("残差", items)

	// 电压幅值曲线
	lineV := charts.NewLine()
	lineV.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "电压曲线",
			Subtitle: "各母线电压幅值随迭代变化(pu)",
		}),
		charts.WithLegendOpts(legend),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	lineV.SetXAxis(iters)
	for bus, name := range c.Info.Buses {
		data := make([]opts.LineData, len(c.Iterations))
		for i, it := range c.Iterations {
			if bus < len(it.Vm) {
				data[i] = opts.LineData{Value: it.Vm[bus]}
			}
		}
		lineV.AddSeries(name, data)
	}

	page := components.NewPage()
	page.PageTitle = c.Info.Solver
	page.AddCharts(
		lineR,
		lineV,
	)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(w); err != nil {
		c.Error(err)
	}
}
