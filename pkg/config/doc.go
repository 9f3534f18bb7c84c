// Package config provides configuration management for the rollcall service.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("rollcall.yaml")
//
//  2. From a YAML file (or no file at all) with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("rollcall.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ROLLCALL_SECTION_FIELD.
// For example:
//
//   - ROLLCALL_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - ROLLCALL_STORAGE_BACKEND overrides storage.backend
//   - ROLLCALL_RETENTION_THRESHOLD overrides retention.threshold
//
// A variable that is set but cannot be parsed fails loading.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:3000"
//	  max_upload_bytes: 8388608
//
//	storage:
//	  backend: "json"
//	  json:
//	    path: "logs/diem_danh_log.json"
//
//	roster:
//	  path: "danh_sach_sinh_vien.xlsx"
//	  watch: true
//
//	retention:
//	  threshold: 48h
//	  interval: 1h
//
//	timezone: "Asia/Ho_Chi_Minh"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Singleton Pattern
//
// Initialize stores a process-wide configuration that GetConfig returns.
// Prefer passing an explicit *Config in tests.
package config
