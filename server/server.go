// Package server 潮流计算与状态估计的 HTTP 接口。
package server

import (
	"log"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"powernet/config"
	"powernet/metrics"
)

// Server HTTP 服务,每个请求独立建网求解
type Server struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *gin.Engine
}

// New 创建服务并注册路由
func New(cfg *config.Config, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	s := &Server{cfg: cfg, metrics: m, router: gin.New()}
	s.router.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * 3600,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	s.router.Use(cors.New(corsCfg))

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(m.Handler()))
	v1 := s.router.Group("/v1")
	{
		v1.POST("/loadflow", s.LoadFlow)
		v1.POST("/estimate", s.Estimate)
	}
	return s
}

// Handler 路由
func (s *Server) Handler() http.Handler { return s.router }

// Run 监听配置地址
func (s *Server) Run() error {
	log.Printf("powernet listening on %s", s.cfg.Addr)
	return s.router.Run(s.cfg.Addr)
}
