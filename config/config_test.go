package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powernet/types"
)

var keys = []string{
	"POWERNET_ADDR", "POWERNET_TOLERANCE", "POWERNET_MAX_ITERATION", "POWERNET_ALGORITHM",
	"POWERNET_SLACK_MAGNITUDE", "POWERNET_DEBUG", "POWERNET_PLOT_DIR", "POWERNET_ALLOW_ORIGINS",
}

// unset 清空相关环境变量,测试结束后恢复
func unset(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// TestDefaults 无环境变量时使用默认值
func TestDefaults(t *testing.T) {
	unset(t)
	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, types.Tolerance, cfg.Tolerance)
	assert.Equal(t, types.MaxIterations, cfg.MaxIteration)
	assert.Equal(t, types.DefaultAlgorithm, cfg.Algorithm)
	assert.False(t, cfg.SlackMagnitude)
	assert.Empty(t, cfg.Debug)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Len(t, cfg.LoadFlow(), 2)
	assert.Len(t, cfg.Estimation(), 4)
}

// TestEnv 环境变量覆盖默认值,无效值被忽略
func TestEnv(t *testing.T) {
	unset(t)
	t.Setenv("POWERNET_TOLERANCE", "1e-8")
	t.Setenv("POWERNET_MAX_ITERATION", "-3")
	t.Setenv("POWERNET_ALGORITHM", "lav")
	t.Setenv("POWERNET_SLACK_MAGNITUDE", "true")
	t.Setenv("POWERNET_DEBUG", "HTML")
	cfg := LoadConfig()
	assert.Equal(t, 1e-8, cfg.Tolerance)
	assert.Equal(t, types.MaxIterations, cfg.MaxIteration)
	assert.Equal(t, types.LAV, cfg.Algorithm)
	assert.True(t, cfg.SlackMagnitude)
	assert.Equal(t, "html", cfg.Debug)

	t.Setenv("POWERNET_ALGORITHM", "LMS")
	assert.Equal(t, types.DefaultAlgorithm, LoadConfig().Algorithm)
}

// TestLoadEnv 读取 .env 文件
func TestLoadEnv(t *testing.T) {
	unset(t)
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("POWERNET_ADDR=:9090\nPOWERNET_ALLOW_ORIGINS=http://a,http://b\n"), 0o644))
	require.NoError(t, LoadEnv(file))
	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowOrigins)

	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}
