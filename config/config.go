// Package config 进程级配置,读取 .env 文件与 POWERNET_* 环境变量。
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"powernet/estimation"
	"powernet/loadflow"
	"powernet/types"
)

// Config 命令行与服务共用的配置
type Config struct {
	Addr           string          // 服务监听地址
	Tolerance      float64         // 收敛容差
	MaxIteration   int             // 最大迭代次数
	Algorithm      types.Algorithm // 状态估计算法
	SlackMagnitude bool            // 估计参考母线电压幅值
	Debug          string          // 迭代记录格式 json/html/png,空为不记录
	PlotDir        string          // 迭代记录输出目录
	AllowOrigins   []string        // 跨域来源
}

// LoadEnv 读取 .env 文件,已存在的环境变量不被覆盖
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// LoadConfig 由环境变量生成配置,无效值回落到默认值
func LoadConfig() *Config {
	cfg := &Config{
		Addr:           getEnv("POWERNET_ADDR", ":8080"),
		Tolerance:      parseFloat("POWERNET_TOLERANCE", types.Tolerance),
		MaxIteration:   parseInt("POWERNET_MAX_ITERATION", types.MaxIterations),
		Algorithm:      types.DefaultAlgorithm,
		SlackMagnitude: parseBool("POWERNET_SLACK_MAGNITUDE", false),
		Debug:          strings.ToLower(getEnv("POWERNET_DEBUG", "")),
		PlotDir:        getEnv("POWERNET_PLOT_DIR", "."),
		AllowOrigins:   strings.Split(getEnv("POWERNET_ALLOW_ORIGINS", "*"), ","),
	}
	if s := getEnv("POWERNET_ALGORITHM", ""); s != "" {
		a, err := types.ParseAlgorithm(s)
		if err != nil {
			log.Printf("POWERNET_ALGORITHM: %v, using %s", err, cfg.Algorithm)
		} else {
			cfg.Algorithm = a
		}
	}
	return cfg
}

// LoadFlow 潮流计算参数
func (cfg *Config) LoadFlow(opts ...loadflow.Option) []loadflow.Option {
	return append([]loadflow.Option{
		loadflow.WithTolerance(cfg.Tolerance),
		loadflow.WithMaxIteration(cfg.MaxIteration),
	}, opts...)
}

// Estimation 状态估计参数
func (cfg *Config) Estimation(opts ...estimation.Option) []estimation.Option {
	return append([]estimation.Option{
		estimation.WithTolerance(cfg.Tolerance),
		estimation.WithMaxIteration(cfg.MaxIteration),
		estimation.WithAlgorithm(cfg.Algorithm),
		estimation.WithSlackMagnitude(cfg.SlackMagnitude),
	}, opts...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || !(v > 0) {
		return defaultValue
	}
	return v
}

func parseInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < 1 {
		return defaultValue
	}
	return v
}

func parseBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
