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

const (
	envPrefix  = "SVES_"
	envConfig  = "SVES_CONFIG"
	keyDivider = "."
)

// Load builds a Config by layering defaults, an optional file and env vars.
// Precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if SVES_CONFIG is set
//  3. env (prefix SVES_, e.g. SVES_STORE_DRIVER -> store_driver)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)
	k := koanf.New(keyDivider)

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Flat keys: underscores are kept so they match the koanf tags.
	envProvider := env.Provider(envPrefix, keyDivider, func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
