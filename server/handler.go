package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"powernet"
	"powernet/debug"
	"powernet/estimation"
	"powernet/load"
	"powernet/loadflow"
	"powernet/network"
	"powernet/types"
)

// Request 求解请求,network 为案例文件内容(JSON 形式)
type Request struct {
	Network        json.RawMessage `json:"network"`
	Case           *network.Case   `json:"case,omitempty"`
	Tolerance      float64         `json:"tolerance,omitempty"`
	MaxIteration   int             `json:"max_iteration,omitempty"`
	Algorithm      string          `json:"algorithm,omitempty"`
	SlackMagnitude *bool           `json:"slack_magnitude,omitempty"`
	Synthesize     float64         `json:"synthesize,omitempty"` // >0 时先做潮流并以此标准差生成量测
}

// contentType 调试输出格式对应的类型
var contentType = map[string]string{
	"html": "text/html; charset=utf-8",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
}

// LoadFlow POST /v1/loadflow
func (s *Server) LoadFlow(c *gin.Context) {
	p, req, ok := s.prepare(c)
	if !ok {
		return
	}
	var opts []loadflow.Option
	if req.Tolerance != 0 {
		opts = append(opts, loadflow.WithTolerance(req.Tolerance))
	}
	if req.MaxIteration != 0 {
		opts = append(opts, loadflow.WithMaxIteration(req.MaxIteration))
	}
	d, ok := s.recorder(c)
	if !ok {
		return
	}
	if d != nil {
		opts = append(opts, loadflow.WithDebug(d))
	}
	r, err := p.LoadFlow(s.cfg.LoadFlow(opts...)...)
	if err != nil {
		fail(c, err)
		return
	}
	resp := flowResponse(p.Network, r)
	s.respond(c, d, resp)
}

// Estimate POST /v1/estimate
func (s *Server) Estimate(c *gin.Context) {
	p, req, ok := s.prepare(c)
	if !ok {
		return
	}
	if req.Synthesize > 0 {
		lf, err := p.LoadFlow(s.cfg.LoadFlow()...)
		if err == nil {
			err = lf.Err()
		}
		if err == nil {
			err = p.Synthesize(req.Synthesize)
		}
		if err != nil {
			fail(c, err)
			return
		}
	}
	var opts []estimation.Option
	if req.Tolerance != 0 {
		opts = append(opts, estimation.WithTolerance(req.Tolerance))
	}
	if req.MaxIteration != 0 {
		opts = append(opts, estimation.WithMaxIteration(req.MaxIteration))
	}
	if req.Algorithm != "" {
		a, err := types.ParseAlgorithm(req.Algorithm)
		if err != nil {
			fail(c, err)
			return
		}
		opts = append(opts, estimation.WithAlgorithm(a))
	}
	if req.SlackMagnitude != nil {
		opts = append(opts, estimation.WithSlackMagnitude(*req.SlackMagnitude))
	}
	d, ok := s.recorder(c)
	if !ok {
		return
	}
	if d != nil {
		opts = append(opts, estimation.WithDebug(d))
	}
	r, err := p.Estimate(s.cfg.Estimation(opts...)...)
	if err != nil {
		fail(c, err)
		return
	}
	s.respond(c, d, estimateResponse(p.Network, r))
}

// prepare 解析请求并建网
func (s *Server) prepare(c *gin.Context) (*powernet.Powernet, *Request, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return nil, nil, false
	}
	if len(req.Network) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "network is required",
		})
		return nil, nil, false
	}
	net, err := load.LoadReader(bytes.NewReader(req.Network))
	if err == nil {
		err = net.Apply(req.Case)
	}
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	p := powernet.NewPowernet(net)
	p.Metrics = s.metrics
	return p, &req, true
}

// recorder 由 debug 查询参数创建迭代记录
func (s *Server) recorder(c *gin.Context) (types.Debug, bool) {
	format := c.Query("debug")
	if format == "" {
		return nil, true
	}
	d, err := debug.New(format)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return d, true
}

// respond 输出结果;图形格式的调试记录直接作为响应体
func (s *Server) respond(c *gin.Context, d types.Debug, resp *Response) {
	if d == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "render_error",
			"message": err.Error(),
		})
		return
	}
	if ct, ok := contentType[strings.ToLower(c.Query("debug"))]; ok {
		c.Data(http.StatusOK, ct, buf.Bytes())
		return
	}
	resp.Debug = json.RawMessage(buf.Bytes())
	c.JSON(http.StatusOK, resp)
}

// fail 错误响应,数值奇异与输入错误分开标记
func fail(c *gin.Context, err error) {
	code := "invalid_network"
	switch {
	case errors.Is(err, types.ErrSingular):
		code = "singular"
	case errors.Is(err, types.ErrNotConverged):
		code = "not_converged"
	case errors.Is(err, types.ErrUnsupportedAlgorithm), errors.Is(err, types.ErrInvalidOption):
		code = "invalid_option"
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   code,
		"message": err.Error(),
	})
}
