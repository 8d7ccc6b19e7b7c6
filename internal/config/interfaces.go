package config

import "context"

// SecretProvider resolves secret values by key. The loader uses it to read
// legacy alias variables for credentials that are not set under their
// primary names.
type SecretProvider interface {
	// GetParametersBatch returns a map of key -> value for every key it
	// could resolve. Missing keys are omitted, not errors.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
