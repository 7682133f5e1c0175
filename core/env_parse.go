package core

import (
	"os"
	"strconv"
	"strings"
)

// Getenv looks up an environment variable. os.Getenv satisfies it; tests
// pass a map-backed lookup.
type Getenv func(key string) string

// LookupEnv looks up an environment variable and reports whether it is set.
// os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

// OSLookupEnv reads the process environment.
var OSLookupEnv LookupEnv = os.LookupEnv

// Getenv drops the presence bit.
func (l LookupEnv) Getenv() Getenv {
	return func(key string) string {
		v, _ := l(key)
		return v
	}
}

// LookupOrDefault returns the value of key when it is set, even to the empty
// string, and defaultValue only when it is absent.
func LookupOrDefault(lookup LookupEnv, key, defaultValue string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvOrDefault returns the value of an environment variable or a default value.
// An empty value counts as unset.
func GetEnvOrDefault(getenv Getenv, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntEnv parses an environment variable as an integer.
// Returns the default value if the variable is not set or cannot be parsed.
func ParseIntEnv(getenv Getenv, key string, defaultValue int) int {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ParseFloat64Env parses an environment variable as a float64.
// Returns the default value if the variable is not set or cannot be parsed.
func ParseFloat64Env(getenv Getenv, key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// ParseBoolEnv parses an environment variable as a boolean.
// Accepts case-insensitive: "true", "1", "yes", "on" as true values.
// Accepts case-insensitive: "false", "0", "no", "off" as false values.
// Returns the default value if the variable is not set or cannot be parsed.
func ParseBoolEnv(getenv Getenv, key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// MapLookupEnv returns a LookupEnv backed by a map.
func MapLookupEnv(env map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// MapGetenv returns a Getenv backed by a map.
func MapGetenv(env map[string]string) Getenv {
	return func(key string) string {
		return env[key]
	}
}
