package config

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                `yaml:"port" validate:"min=1,max=65535"`
	RedisURL       string             `yaml:"redis_url"`
	Redis          RedisRuntimeConfig `yaml:"redis"`
	Env            string             `yaml:"env"` // "development" | "production"
	Paths          RuntimePathsConfig `yaml:"paths"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Timezone       string             `yaml:"timezone"`
	Presence       PresenceConfig     `yaml:"presence"`
	Stats          StatsConfig        `yaml:"stats"`
}

// RedisRuntimeConfig locates the Redis used for daily stats. URL wins over
// the discrete fields.
type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
	TLS      bool   `yaml:"tls"`
}

// PresenceConfig tunes the presence registry.
type PresenceConfig struct {
	// DisconnectPolicy is "user" (drop by user id) or "handle" (drop only the
	// matching socket).
	DisconnectPolicy string `yaml:"disconnect_policy" validate:"oneof=user handle"`
}

// StatsConfig toggles the Redis backed daily counters.
type StatsConfig struct {
	Enable bool `yaml:"enable"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port               int               `yaml:"port"`
	RedisURL           string            `yaml:"redis_url"`
	Redis              rawRedisConfig    `yaml:"redis"`
	Env                string            `yaml:"env"`
	NodeEnv            string            `yaml:"node_env"`
	Paths              rawPathsConfig    `yaml:"paths"`
	LogDir             string            `yaml:"log_dir"`
	LogsDir            string            `yaml:"logs_dir"`
	AllowedOrigins     []string          `yaml:"allowed_origins"`
	CORSAllowedOrigins []string          `yaml:"cors_allowed_origins"`
	Timezone           string            `yaml:"timezone"`
	TimeZone           string            `yaml:"time_zone"`
	TZ                 string            `yaml:"tz"`
	Presence           rawPresenceConfig `yaml:"presence"`
	Stats              rawStatsConfig    `yaml:"stats"`
	StatsEnable        *bool             `yaml:"stats_enable"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawPresenceConfig struct {
	DisconnectPolicy string `yaml:"disconnect_policy"`
}

type rawStatsConfig struct {
	Enable *bool `yaml:"enable"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}
