package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays Config fields from environment variables named in the
// `env` struct tags. Unset variables leave the current value untouched.
// Malformed values (e.g. SHUTDOWN_TIMEOUT=soon) panic, like the other loaders.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
