// Package core holds sdgen's configuration, environment helpers, exit codes
// and the resumable download primitive used by the model cache.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvConfigFile      = "SDGEN_CONFIG"
	EnvCacheDir        = "SDGEN_CACHE_DIR"
	EnvModelRepo       = "SDGEN_MODEL_REPO"
	EnvModelRevision   = "SDGEN_MODEL_REVISION"
	EnvHFEndpoint      = "SDGEN_HF_ENDPOINT"
	EnvHFToken         = "HF_TOKEN"
	EnvThreads         = "SDGEN_THREADS"
	EnvDownloadRetries = "SDGEN_DOWNLOAD_RETRIES"
	EnvLogLevel        = "SDGEN_LOG_LEVEL"
	EnvLogFile         = "SDGEN_LOG_FILE"
	EnvDevMode         = "SDGEN_DEV_MODE"
)

// Defaults
const (
	DefaultConfigFile      = "sdgen.yaml"
	DefaultModelRepo       = "CompVis/stable-diffusion-v1-4"
	DefaultModelRevision   = "main"
	DefaultHFEndpoint      = "https://huggingface.co"
	DefaultDownloadRetries = 3
	DefaultLogLevel        = "info"
)

// Config holds the process-level settings. Generation parameters come from
// the command line, not from here.
type Config struct {
	// CacheDir is the model cache root (hub layout). Default ~/.cache/huggingface.
	CacheDir string `yaml:"cache_dir"`

	// ModelRepo and ModelRevision identify the pretrained pipeline.
	ModelRepo     string `yaml:"model_repo"`
	ModelRevision string `yaml:"model_revision"`

	// HFEndpoint is the hub base URL; HFToken is sent as a bearer token when set.
	HFEndpoint string `yaml:"hf_endpoint"`
	HFToken    string `yaml:"hf_token"`

	// Threads for CPU work inside the backend, 0 = backend default.
	Threads int `yaml:"threads"`

	// DownloadRetries is the number of attempts per model file.
	DownloadRetries int `yaml:"download_retries"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	DevMode  bool   `yaml:"dev_mode"`
}

// DefaultConfig returns the built-in settings. CacheDir is left empty when the
// home directory cannot be determined.
func DefaultConfig() *Config {
	cacheDir, _ := DefaultCacheDir()
	return &Config{
		CacheDir:        cacheDir,
		ModelRepo:       DefaultModelRepo,
		ModelRevision:   DefaultModelRevision,
		HFEndpoint:      DefaultHFEndpoint,
		DownloadRetries: DefaultDownloadRetries,
		LogLevel:        DefaultLogLevel,
	}
}

// DefaultCacheDir returns <home>/.cache/huggingface.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "huggingface"), nil
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by SDGEN_CONFIG (or ./sdgen.yaml when present), then SDGEN_* variables.
func LoadConfig(getenv Getenv) (*Config, error) {
	cfg := DefaultConfig()

	path, explicit := getenv(EnvConfigFile), true
	if path == "" {
		path, explicit = DefaultConfigFile, false
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.mergeEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path. A missing file is only an error
// when it was named explicitly.
func (c *Config) mergeFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return ErrConfigFileInvalid(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return ErrConfigFileInvalid(path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv Getenv) {
	c.CacheDir = GetEnvOrDefault(getenv, EnvCacheDir, c.CacheDir)
	c.ModelRepo = GetEnvOrDefault(getenv, EnvModelRepo, c.ModelRepo)
	c.ModelRevision = GetEnvOrDefault(getenv, EnvModelRevision, c.ModelRevision)
	c.HFEndpoint = GetEnvOrDefault(getenv, EnvHFEndpoint, c.HFEndpoint)
	c.HFToken = GetEnvOrDefault(getenv, EnvHFToken, c.HFToken)
	c.Threads = ParseIntEnv(getenv, EnvThreads, c.Threads)
	c.DownloadRetries = ParseIntEnv(getenv, EnvDownloadRetries, c.DownloadRetries)
	c.LogLevel = GetEnvOrDefault(getenv, EnvLogLevel, c.LogLevel)
	c.LogFile = GetEnvOrDefault(getenv, EnvLogFile, c.LogFile)
	c.DevMode = ParseBoolEnv(getenv, EnvDevMode, c.DevMode)
}

// Validate checks the settings and returns a *ConfigError on the first problem.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return ErrInvalidCacheDir("home directory unknown and SDGEN_CACHE_DIR unset")
	}

	org, name, ok := strings.Cut(c.ModelRepo, "/")
	if !ok || org == "" || name == "" || strings.Contains(name, "/") {
		return ErrInvalidModelRepo(c.ModelRepo)
	}
	if c.ModelRevision == "" {
		return ErrInvalidValue("model_revision", `""`, "must not be empty")
	}

	u, err := url.Parse(c.HFEndpoint)
	if err != nil {
		return ErrInvalidEndpoint(c.HFEndpoint, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidEndpoint(c.HFEndpoint, "scheme must be http or https")
	}
	if u.Host == "" {
		return ErrInvalidEndpoint(c.HFEndpoint, "missing host")
	}

	if c.Threads < 0 {
		return ErrInvalidValue("threads", c.Threads, "must be >= 0")
	}
	if c.DownloadRetries < 1 {
		return ErrInvalidValue("download_retries", c.DownloadRetries, "must be >= 1")
	}
	return nil
}

// String renders the config for debug logs with the token masked.
func (c *Config) String() string {
	token := ""
	if c.HFToken != "" {
		token = "[REDACTED]"
	}
	return fmt.Sprintf("cache_dir=%s model=%s@%s endpoint=%s token=%s threads=%d retries=%d",
		c.CacheDir, c.ModelRepo, c.ModelRevision, c.HFEndpoint, token, c.Threads, c.DownloadRetries)
}
