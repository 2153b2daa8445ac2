package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AssignmentConfig struct {
	BatchLimit              int     `mapstructure:"batch_limit"`
	TrimLinearFeetThreshold float64 `mapstructure:"trim_linear_feet_threshold"`
	StairRiserThreshold     int     `mapstructure:"stair_riser_threshold"`
	DoorCountThreshold      int     `mapstructure:"door_count_threshold"`
	// SerializeSlots locks each (date, trade) pair while a slot is filled.
	SerializeSlots bool `mapstructure:"serialize_slots"`
}

type WorkerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type TemporalConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	HostPort           string        `mapstructure:"host_port"`
	Namespace          string        `mapstructure:"namespace"`
	TaskQueue          string        `mapstructure:"task_queue"`
	MaxAttempts        int32         `mapstructure:"max_attempts"`
	InitialInterval    time.Duration `mapstructure:"initial_interval"`
	BackoffCoefficient float64       `mapstructure:"backoff_coefficient"`
	MaximumInterval    time.Duration `mapstructure:"maximum_interval"`
}

type EmailConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	From            string   `mapstructure:"from"`
	SMTPHost        string   `mapstructure:"smtp_host"`
	SMTPPort        int      `mapstructure:"smtp_port"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	AlertRecipients []string `mapstructure:"alert_recipients"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

type Config struct {
	DatabaseURL    string           `mapstructure:"database_url"`
	ServerPort     string           `mapstructure:"server_port"`
	LogLevel       string           `mapstructure:"log_level"`
	AllowedOrigins []string         `mapstructure:"allowed_origins"`
	Assignment     AssignmentConfig `mapstructure:"assignment"`
	Worker         WorkerConfig     `mapstructure:"worker"`
	Temporal       TemporalConfig   `mapstructure:"temporal"`
	Email          EmailConfig      `mapstructure:"email"`
	Redis          RedisConfig      `mapstructure:"redis"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	cfg, err := LoadFrom("")
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

// LoadFrom reads the given file, or searches . and ./config for config.yaml
// when path is empty. DISPATCH_* environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("dispatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		return nil, errors.New("database_url must be set in the config file")
	}
	if config.Assignment.BatchLimit <= 0 {
		config.Assignment.BatchLimit = 10
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("assignment.batch_limit", 10)
	v.SetDefault("assignment.trim_linear_feet_threshold", 400)
	v.SetDefault("assignment.stair_riser_threshold", 25)
	v.SetDefault("assignment.door_count_threshold", 15)
	v.SetDefault("assignment.serialize_slots", true)

	v.SetDefault("worker.enabled", false)
	v.SetDefault("worker.sweep_interval", 5*time.Minute)

	v.SetDefault("temporal.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "DISPATCH_ASSIGNMENT")
	v.SetDefault("temporal.max_attempts", 5)
	v.SetDefault("temporal.initial_interval", 2*time.Second)
	v.SetDefault("temporal.backoff_coefficient", 2.0)
	v.SetDefault("temporal.maximum_interval", time.Minute)

	v.SetDefault("email.smtp_port", 587)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.stream", "dispatch:events")
}
