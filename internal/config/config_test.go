package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3000, cfg.APIPort)
	assert.Equal(t, 30000, cfg.Maintenance.EngineOilLifeKm)
	assert.Equal(t, 100000, cfg.Maintenance.GearboxOilLifeKm)
	assert.Equal(t, 4, cfg.Maintenance.PositionsPerAxle)
	assert.Equal(t, 2000, cfg.Maintenance.TireUsedThresholdKm)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "8080")
	t.Setenv("OIL_ENGINE_LIFE_KM", "25000")
	t.Setenv("TIRE_POSITIONS_PER_AXLE", "2")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 25000, cfg.Maintenance.EngineOilLifeKm)
	assert.Equal(t, 2, cfg.Maintenance.PositionsPerAxle)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 3000, cfg.APIPort)
}

func TestGetRateLimitRuleForPath(t *testing.T) {
	cfg := Load()

	rule := cfg.GetRateLimitRuleForPath("/api/v1/trips")
	assert.Equal(t, 30, rule.Limit)
	assert.Equal(t, time.Minute, rule.Window)

	// 前缀匹配覆盖子路径
	rule = cfg.GetRateLimitRuleForPath("/api/v1/tires/mount")
	assert.Equal(t, 20, rule.Limit)

	// 未命中走默认规则
	rule = cfg.GetRateLimitRuleForPath("/api/v1/vehicles")
	assert.Equal(t, cfg.RateLimit.DefaultRule.Limit, rule.Limit)
}
