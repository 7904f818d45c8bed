package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfigDefaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	// 嵌入的默认配置可解析
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)

	// JWT 过期时间有默认值
	assert.Greater(t, cfg.JWT.ExpireHours, 0)
	assert.NotZero(t, cfg.JWT.ExpireTime)

	// 银行授权有效期默认 90 天
	assert.Equal(t, 90, cfg.Banking.ConsentDays)
}

func TestLoadConfigMissingExternalFile(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	// 指定不存在的外部配置文件时退回内置默认配置，不报错
	cfg, err := LoadConfig("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
}
