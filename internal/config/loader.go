package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a yaml file. ${ENV_VAR}
// references in the file are expanded before parsing, so secrets can stay
// in the environment. When a .checksums manifest exists next to the file,
// the file is verified against it before use.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if err := verifyIfLocked(absPath); err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string, which validation catches
// for required fields.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// Defaults returns a Config with baseline values set.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "dmrelay",
			LogLevel: "INFO",
		},
		Server: ServerConfig{
			Listen: ":5000",
		},
		Platform: PlatformConfig{
			HeartbeatInterval: 45 * time.Second,
		},
		Guild: GuildConfig{
			RequiredRole:   "Cool guy",
			DefaultMessage: "Hello World",
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Service.Name == "" {
		cfg.Service.Name = def.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = def.Service.LogLevel
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = def.Server.Listen
	}
	if cfg.Platform.HeartbeatInterval <= 0 {
		cfg.Platform.HeartbeatInterval = def.Platform.HeartbeatInterval
	}
	if cfg.Guild.RequiredRole == "" {
		cfg.Guild.RequiredRole = def.Guild.RequiredRole
	}
	if cfg.Guild.DefaultMessage == "" {
		cfg.Guild.DefaultMessage = def.Guild.DefaultMessage
	}
	if cfg.Snapshots.Enabled && cfg.Snapshots.Path == "" {
		cfg.Snapshots.Path = "./dmrelay.db"
	}
}

// Validate checks that everything required at startup is present.
func Validate(cfg *Config) error {
	if cfg.Platform.Token == "" {
		return fmt.Errorf("platform.token is required")
	}
	if cfg.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url is required")
	}
	if cfg.Auth.Username == "" {
		return fmt.Errorf("auth.username is required")
	}
	if cfg.Auth.Password == "" {
		return fmt.Errorf("auth.password is required")
	}
	if cfg.Guild.ID == "" {
		return fmt.Errorf("guild.id is required")
	}
	if cfg.Guild.RequiredRole == "" {
		return fmt.Errorf("guild.required_role is required")
	}
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Dispatch.MaxInFlight < 0 {
		return fmt.Errorf("dispatch.max_in_flight must not be negative")
	}
	return nil
}
