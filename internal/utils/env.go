package utils

import "os"

// SafeEnv reads an environment variable, treating unset and empty the same
// and returning fallback in both cases.
func SafeEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
