package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envProfile is the flat environment-only configuration surface, used when
// the service runs without a config file (e.g. containers). All variables
// carry the DMRELAY_ prefix.
type envProfile struct {
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"INFO"`
	Listen            string        `env:"LISTEN" envDefault:":5000"`
	AuthUsername      string        `env:"AUTH_USERNAME"`
	AuthPassword      string        `env:"AUTH_PASSWORD"`
	PlatformToken     string        `env:"PLATFORM_TOKEN"`
	PlatformBaseURL   string        `env:"PLATFORM_API_BASE"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"45s"`
	GuildID           string        `env:"GUILD_ID"`
	RequiredRole      string        `env:"REQUIRED_ROLE" envDefault:"Cool guy"`
	DefaultMessage    string        `env:"DEFAULT_MESSAGE" envDefault:"Hello World"`
	MaxInFlight       int           `env:"DISPATCH_MAX_IN_FLIGHT" envDefault:"0"`
	SnapshotPath      string        `env:"SNAPSHOT_DB_PATH"`
}

// FromEnv builds a Config purely from DMRELAY_* environment variables.
func FromEnv() (*Config, error) {
	var p envProfile
	if err := env.ParseWithOptions(&p, env.Options{Prefix: "DMRELAY_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg := Defaults()
	cfg.Service.LogLevel = p.LogLevel
	cfg.Server.Listen = p.Listen
	cfg.Auth.Username = p.AuthUsername
	cfg.Auth.Password = p.AuthPassword
	cfg.Platform.Token = p.PlatformToken
	cfg.Platform.BaseURL = p.PlatformBaseURL
	cfg.Platform.HeartbeatInterval = p.HeartbeatInterval
	cfg.Guild.ID = p.GuildID
	cfg.Guild.RequiredRole = p.RequiredRole
	cfg.Guild.DefaultMessage = p.DefaultMessage
	cfg.Dispatch.MaxInFlight = p.MaxInFlight
	if p.SnapshotPath != "" {
		cfg.Snapshots.Enabled = true
		cfg.Snapshots.Path = p.SnapshotPath
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
