// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. For each credential whose primary variable is unset, resolve its legacy
//     alias through the SecretProvider and inject it under the primary name.
//  4. Use envconfig to process struct tags and populate the Config struct.
//  5. Populate BuildInfo from linker-injected variables.
//  6. Validate the struct using go-playground/validator.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// legacyAliases maps a primary variable to the name the frontend-oriented
// .env templates use for the same credential.
var legacyAliases = map[string]string{
	"KMA_API_KEY":     "VITE_KMA_API_KEY",
	"HOLIDAY_API_KEY": "VITE_HOLIDAY_API_KEY",
}

type envLookup func(key string) (string, bool)

type envSet func(key, value string) error

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without mutating global state.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
	}
}

// LoadConfig loads and validates the configuration. A nil provider reads
// aliases from the process environment.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	time.Local = time.UTC

	// godotenv does not override variables that are already set.
	_ = godotenv.Load()

	if provider == nil {
		provider = NewEnvVarProvider()
	}
	if err := resolveAliases(provider, deps); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// resolveAliases fills unset primary credential variables from their legacy
// aliases. A primary variable set to a non-blank value always wins.
func resolveAliases(provider SecretProvider, deps loaderDeps) error {
	var keys []string
	aliasToTarget := make(map[string]string)
	for target, alias := range legacyAliases {
		if v, ok := deps.lookupEnv(target); ok && strings.TrimSpace(v) != "" {
			continue
		}
		keys = append(keys, alias)
		aliasToTarget[alias] = target
	}
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, keys)
	if err != nil {
		return &ConfigError{
			Type:    ErrAliasResolution,
			Message: fmt.Sprintf("failed to resolve %d alias variables", len(keys)),
			Err:     err,
		}
	}

	for alias, value := range resolved {
		target, ok := aliasToTarget[alias]
		if !ok {
			continue
		}
		if err := deps.setEnv(target, value); err != nil {
			return &ConfigError{
				Type:    ErrAliasResolution,
				Message: fmt.Sprintf("failed to set %s from %s", target, alias),
				Err:     err,
			}
		}
	}
	return nil
}
