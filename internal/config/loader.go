package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvConfigPath names the environment variable holding the optional YAML
// config file path.
const EnvConfigPath = "ENSO_CONFIG"

const envPrefix = "ENSO_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ENSO_CONFIG is set
//  3. env (prefix ENSO_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: ENSO_ADDR, ENSO_QUEUE_SIZE, ...
	// Map env keys like ENSO_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch re-loads the configuration whenever the ENSO_CONFIG file changes
// and hands the result to onReload. Without a config file there is nothing
// to watch and Watch returns nil. Which keys actually take effect without a
// restart is the caller's decision; immutable ones (db_path, addr, sizing)
// require a restart.
func Watch(ctx context.Context, onReload func(*Config, error)) error {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return nil
	}

	f := file.Provider(path)
	err := f.Watch(func(event interface{}, err error) {
		if err != nil {
			onReload(nil, fmt.Errorf("%w: watch: %v", ErrLoadConfig, err))
			return
		}
		onReload(Load(ctx))
	})
	if err != nil {
		return fmt.Errorf("%w: watch %s: %v", ErrLoadConfig, path, err)
	}
	return nil
}
