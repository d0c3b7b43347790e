package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills the env-tagged fields of target. With vars nil it reads the
// process environment; otherwise vars is the whole environment, which lets
// tests and embedders configure an arena without touching os.Environ.
func ParseEnv(target any, vars map[string]string) error {
	var err error
	if vars == nil {
		err = env.Parse(target)
	} else {
		err = env.ParseWithOptions(target, env.Options{Environment: vars})
	}
	if err != nil {
		return fmt.Errorf("parse ARENA_* env: %w", err)
	}
	return nil
}
