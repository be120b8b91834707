// Package config defines the configuration structure for the dispatch
// agent.
//
// Configuration is organized into logical sections (Server, Dispatch,
// Storage, Auth) and uses code generation via optgen to create functional
// option helpers.
//
// # Configuration Structure
//
//	Configuration
//	├── Server    - HTTP server settings
//	├── Dispatch  - Queue/pool/executor tunables
//	├── Storage   - Persistence settings
//	├── Auth      - Admin API authentication
//	├── LogFormat - Logging format
//	└── LogLevel  - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8080    │ HTTP server listen port                │
//	│ StaticsFolder    │ ""      │ Path to static files for the admin UI  │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// Server modes:
//   - prod: production mode with stricter settings
//   - dev: development mode with relaxed settings
//
// # Dispatch Configuration
//
//	┌──────────────────────┬─────────┬────────────────────────────────────┐
//	│ Field                │ Default │ Description                        │
//	├──────────────────────┼─────────┼────────────────────────────────────┤
//	│ TaskTimeout          │ 300s    │ Max execution time per job          │
//	│ QueueTimeout         │ 600s    │ Max pending age before timeout      │
//	│ MaxQueueSize         │ 100     │ Admission ceiling                  │
//	│ EnablePriority       │ true    │ Honor submitted priority            │
//	│ MaxRetries           │ 3       │ Retry attempts before terminal fail │
//	│ RetryDelay           │ 5s      │ Delay before a retry requeue        │
//	│ HealthCheckInterval  │ 30s     │ Worker probe cadence                │
//	│ InstanceTimeout      │ 10s     │ Probe request timeout               │
//	└──────────────────────┴─────────┴────────────────────────────────────┘
//
// # Storage Configuration
//
//	┌────────────┬──────────┬────────────────────────────────────────┐
//	│ Field      │ Default  │ Description                            │
//	├────────────┼──────────┼────────────────────────────────────────┤
//	│ DataFolder │ "./data" │ Path to the DuckDB database file        │
//	└────────────┴──────────┴────────────────────────────────────────┘
//
// # Auth Configuration
//
//	┌─────────────┬─────────┬────────────────────────────────────────┐
//	│ Field       │ Default │ Description                            │
//	├─────────────┼─────────┼────────────────────────────────────────┤
//	│ Enabled     │ true    │ Require a bearer token on admin routes │
//	│ JWTSecret   │ ""      │ HMAC signing secret (hidden in debug)  │
//	│ JWTFilePath │ ""      │ Path to a file holding JWTSecret        │
//	└─────────────┴─────────┴────────────────────────────────────────┘
//
// # Code Generation
//
// The package uses optgen to generate functional option helpers:
//
//	//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Dispatch Storage Auth
//
// Generated helpers include:
//
//   - NewConfigurationWithOptions(...ConfigurationOption) - Create with options
//   - NewConfigurationWithOptionsAndDefaults(...ConfigurationOption) - Create with defaults + options
//   - WithServer(Server), WithDispatch(Dispatch), etc. - Set nested structs
//
// DebugMap() (map for debug logging, respecting debugmap tags) is written
// by hand in config.go, not generated.
//
// # Usage Example
//
//	cfg, err := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithDispatch(config.Dispatch{
//	        TaskTimeout: 300 * time.Second,
//	        MaxRetries:  3,
//	    }),
//	    config.WithLogLevel("info"),
//	)
//
// # Debug Logging
//
// Fields tagged `debugmap:"visible"` are safe to log via DebugMap():
//
//	log.Info("configuration loaded", zap.Any("config", cfg.DebugMap()))
//
// JWTSecret is tagged `debugmap:"hidden"` and never appears in the map.
package config
