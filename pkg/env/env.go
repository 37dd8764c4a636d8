// Package env reads process environment variables with fallbacks, for the
// few knobs (log format, port overrides) that live outside the structured
// config.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
