package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeConfigFileInvalid = "CONFIG_FILE_INVALID"
	ErrCodeInvalidModelRepo  = "INVALID_MODEL_REPO"
	ErrCodeInvalidEndpoint   = "INVALID_HF_ENDPOINT"
	ErrCodeInvalidCacheDir   = "INVALID_CACHE_DIR"
	ErrCodeInvalidValue      = "INVALID_VALUE"
)

// ErrConfigFileInvalid returns an error for a YAML config file that cannot be read or decoded.
func ErrConfigFileInvalid(path string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigFileInvalid,
		Message: fmt.Sprintf("Cannot read config file %s: %v", path, cause),
		Action:  "Fix the YAML syntax or unset SDGEN_CONFIG",
	}
}

// ErrInvalidModelRepo returns an error for a repo id that is not "<org>/<name>".
func ErrInvalidModelRepo(repo string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidModelRepo,
		Message: fmt.Sprintf("Invalid model repo %q", repo),
		Action:  "Set SDGEN_MODEL_REPO to a Hugging Face repo id such as CompVis/stable-diffusion-v1-4",
	}
}

// ErrInvalidEndpoint returns an error for a hub endpoint that is not an http(s) URL.
func ErrInvalidEndpoint(endpoint string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidEndpoint,
		Message: fmt.Sprintf("Invalid hub endpoint %q: %s", endpoint, reason),
		Action:  "Set SDGEN_HF_ENDPOINT to a URL such as https://huggingface.co",
	}
}

// ErrInvalidCacheDir returns an error when no cache directory can be determined.
func ErrInvalidCacheDir(reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidCacheDir,
		Message: fmt.Sprintf("No model cache directory: %s", reason),
		Action:  "Set SDGEN_CACHE_DIR to a writable directory",
	}
}

// ErrInvalidValue returns an error for an out-of-range numeric setting.
func ErrInvalidValue(key string, value interface{}, rule string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s=%v: %s", key, value, rule),
	}
}
