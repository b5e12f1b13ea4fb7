package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the variables that win over the YAML file.
type envOverrides struct {
	Port             int      `envconfig:"PORT"`
	NodeEnv          string   `envconfig:"NODE_ENV"`
	RedisURL         string   `envconfig:"REDIS_URL"`
	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
	LogDir           string   `envconfig:"LOG_DIR"`
	StatsEnable      *bool    `envconfig:"STATS_ENABLE"`
	DisconnectPolicy string   `envconfig:"PRESENCE_DISCONNECT_POLICY"`
}

func applyEnv(cfg *AppConfig) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	if env.Port != 0 {
		cfg.Port = env.Port
	}
	if v := strings.TrimSpace(env.NodeEnv); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := strings.TrimSpace(env.RedisURL); v != "" {
		cfg.Redis.URL = normalizeRedisRawURL(v)
		cfg.RedisURL = cfg.Redis.URLValue()
	}
	if env.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(env.AllowedOrigins)
	}
	if v := strings.TrimSpace(env.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if env.StatsEnable != nil {
		cfg.Stats.Enable = *env.StatsEnable
	}
	if v := strings.TrimSpace(env.DisconnectPolicy); v != "" {
		cfg.Presence = normalizePresenceConfig(PresenceConfig{DisconnectPolicy: v})
	}
	return nil
}
