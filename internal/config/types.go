package config

import "time"

// Config is the complete dmrelay configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Platform  PlatformConfig  `yaml:"platform"`
	Guild     GuildConfig     `yaml:"guild"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// ServerConfig defines HTTP listener settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// AuthConfig defines the basic-auth credentials expected on inbound
// requests. Both values are required at startup.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// PlatformConfig defines the chat-platform session settings. Token is
// required; the process refuses to start without it.
type PlatformConfig struct {
	Token             string        `yaml:"token"`
	BaseURL           string        `yaml:"base_url"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// GuildConfig defines the target guild and the delivery gate.
type GuildConfig struct {
	ID             string `yaml:"id"`
	RequiredRole   string `yaml:"required_role"`
	DefaultMessage string `yaml:"default_message"`
}

// DispatchConfig defines delivery pipeline settings.
type DispatchConfig struct {
	// MaxInFlight bounds concurrent deliveries; 0 means unbounded.
	MaxInFlight int `yaml:"max_in_flight"`
}

// SnapshotsConfig defines roster snapshot persistence.
type SnapshotsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
