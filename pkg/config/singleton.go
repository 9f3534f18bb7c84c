package config

import "sync"

var (
	configMutex  sync.RWMutex
	globalConfig *Config
	globalSource string

	initOnce sync.Once
)

// Initialize loads the process configuration from path (defaults only when
// path is empty) with ROLLCALL_* overrides applied, and publishes it for
// GetConfig. Only the first call loads; later calls return the first
// result.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		globalSource = path
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the configuration published by Initialize, or nil.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Source describes where the published configuration came from.
func Source() string {
	configMutex.RLock()
	defer configMutex.RUnlock()

	switch {
	case globalConfig == nil:
		return ""
	case globalSource == "":
		return "defaults and environment"
	default:
		return globalSource
	}
}
