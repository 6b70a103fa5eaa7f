package debug

import (
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// floor 对数坐标下残差的下限
const floor = 1e-16

// Plot 收敛曲线图片
type Plot struct {
	Record
	Width, Height vg.Length // 图片尺寸,0 使用默认值
	Format        string    // png、svg、pdf,空为 png
}

// Render 绘制残差随迭代次数的变化
func (p *Plot) Render(w io.Writer) error {
	pl := plot.New()
	pl.Title.Text = p.Info.Solver + " " + p.Info.Algorithm
	pl.X.Label.Text = "iteration"
	pl.Y.Label.Text = "max residual"
	pl.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(p.Iterations))
	for i, it := range p.Iterations {
		pts[i].X = float64(it.Iter)
		pts[i].Y = math.Max(it.Residual, floor)
	}
	if len(pts) > 0 {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		pl.Add(line, points)
		pl.Legend.Add("residual", line, points)
	}
	if p.Info.Tolerance > 0 && len(pts) > 0 {
		tol, err := plotter.NewLine(plotter.XYs{
			{X: pts[0].X, Y: p.Info.Tolerance},
			{X: pts[len(pts)-1].X, Y: p.Info.Tolerance},
		})
		if err != nil {
			return err
		}
		tol.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		pl.Add(tol)
		pl.Legend.Add("tolerance", tol)
	}
	if len(pts) > 0 {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		if pl.Y.Min == pl.Y.Max {
			pl.Y.Min, pl.Y.Max = pl.Y.Min/10, pl.Y.Max*10
		}
	}

	width, height := p.Width, p.Height
	if width == 0 {
		width = 6 * vg.Inch
	}
	if height == 0 {
		height = 4 * vg.Inch
	}
	format := p.Format
	if format == "" {
		format = "png"
	}
	wt, err := pl.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
