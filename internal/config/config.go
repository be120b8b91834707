// Package config defines the configuration structure for the dispatch
// agent. Configuration is organized into logical sections (Server,
// Dispatch, Storage, Auth) and uses code generation via optgen to create
// functional option helpers, the way the teacher's own internal/config
// package documents doing (see doc.go and zz_generated.configuration.go).
package config

import (
	"time"

	"github.com/creasty/defaults"

	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// Configuration is the root of the agent's settings tree.
type Configuration struct {
	Server   Server   `debugmap:"visible"`
	Dispatch Dispatch `debugmap:"visible"`
	Storage  Storage  `debugmap:"visible"`
	Auth     Auth     `debugmap:"visible"`

	LogFormat string `default:"text" debugmap:"visible"`
	LogLevel  string `default:"info" debugmap:"visible"`
}

// Server holds HTTP listener settings.
type Server struct {
	ServerMode     string `default:"dev" debugmap:"visible"`
	HTTPPort       int    `default:"8080" debugmap:"visible"`
	StaticsFolder  string `default:"" debugmap:"visible"`
	TLSCertificate string `default:"" debugmap:"visible"`
}

// Dispatch holds the tunables the priority queue, worker pool and
// dispatch loop consult. Bounds mirror the CenterConfig validation rules
// confirmed against the original implementation:
//
//	field                 minimum   default
//	TaskTimeout            10s        300s
//	QueueTimeout           60s        600s
//	MaxQueueSize           1          100
//	MaxRetries             0          3
//	RetryDelay             1s         5s
//	HealthCheckInterval    5s         30s
//	InstanceTimeout        1s         10s
type Dispatch struct {
	TaskTimeout         time.Duration `default:"300s" debugmap:"visible"`
	QueueTimeout        time.Duration `default:"600s" debugmap:"visible"`
	MaxQueueSize        int           `default:"100" debugmap:"visible"`
	EnablePriority      bool          `default:"true" debugmap:"visible"`
	MaxRetries          int           `default:"3" debugmap:"visible"`
	RetryDelay          time.Duration `default:"5s" debugmap:"visible"`
	HealthCheckInterval time.Duration `default:"30s" debugmap:"visible"`
	InstanceTimeout     time.Duration `default:"10s" debugmap:"visible"`
}

// Storage holds persistence settings.
type Storage struct {
	DataFolder string `default:"./data" debugmap:"visible"`
}

// Auth holds admin API authentication settings.
type Auth struct {
	Enabled      bool   `default:"true" debugmap:"visible"`
	JWTSecret    string `default:"" debugmap:"hidden"`
	JWTFilePath  string `default:"" debugmap:"visible"`
	TokenExpires time.Duration `default:"24h" debugmap:"visible"`
}

// ApplyDefaults fills every field left at its zero value with the default
// tag declared above, the way the teacher's configuration relies on
// creasty/defaults rather than hand-rolled zero checks.
func ApplyDefaults(cfg *Configuration) error {
	return defaults.Set(cfg)
}

// Validate enforces the bounds each Dispatch field must satisfy. Returns an
// *dispatcherrors.InvalidConfigError naming the first field that fails.
func Validate(cfg *Configuration) error {
	d := cfg.Dispatch
	switch {
	case d.TaskTimeout < 10*time.Second:
		return dispatcherrors.NewInvalidConfigError("task_timeout", "must be at least 10s")
	case d.QueueTimeout < 60*time.Second:
		return dispatcherrors.NewInvalidConfigError("queue_timeout", "must be at least 60s")
	case d.MaxQueueSize < 1:
		return dispatcherrors.NewInvalidConfigError("max_queue_size", "must be at least 1")
	case d.MaxRetries < 0:
		return dispatcherrors.NewInvalidConfigError("max_retries", "must be non-negative")
	case d.RetryDelay < time.Second:
		return dispatcherrors.NewInvalidConfigError("retry_delay", "must be at least 1s")
	case d.HealthCheckInterval < 5*time.Second:
		return dispatcherrors.NewInvalidConfigError("health_check_interval", "must be at least 5s")
	case d.InstanceTimeout < time.Second:
		return dispatcherrors.NewInvalidConfigError("instance_timeout", "must be at least 1s")
	}
	return nil
}

// DebugMap returns a structured view of every debugmap:"visible" field,
// suitable for zap.Any logging without leaking secrets such as JWTSecret.
func (c Configuration) DebugMap() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"server_mode":    c.Server.ServerMode,
			"http_port":      c.Server.HTTPPort,
			"statics_folder": c.Server.StaticsFolder,
			"tls_certificate": c.Server.TLSCertificate,
		},
		"dispatch": map[string]any{
			"task_timeout":          c.Dispatch.TaskTimeout.String(),
			"queue_timeout":         c.Dispatch.QueueTimeout.String(),
			"max_queue_size":        c.Dispatch.MaxQueueSize,
			"enable_priority":       c.Dispatch.EnablePriority,
			"max_retries":           c.Dispatch.MaxRetries,
			"retry_delay":           c.Dispatch.RetryDelay.String(),
			"health_check_interval": c.Dispatch.HealthCheckInterval.String(),
			"instance_timeout":      c.Dispatch.InstanceTimeout.String(),
		},
		"storage": map[string]any{
			"data_folder": c.Storage.DataFolder,
		},
		"auth": map[string]any{
			"enabled":       c.Auth.Enabled,
			"jwt_file_path": c.Auth.JWTFilePath,
			"token_expires": c.Auth.TokenExpires.String(),
		},
		"log_format": c.LogFormat,
		"log_level":  c.LogLevel,
	}
}
