package core

import "testing"

func TestGetEnvOrDefault(t *testing.T) {
	getenv := MapGetenv(map[string]string{"SET": "value", "EMPTY": ""})

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"set", "SET", "value"},
		{"empty counts as unset", "EMPTY", "fallback"},
		{"missing", "MISSING", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetEnvOrDefault(getenv, tt.key, "fallback"); got != tt.want {
				t.Errorf("GetEnvOrDefault(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "384", 384},
		{"whitespace", " 512 ", 512},
		{"negative", "-8", -8},
		{"invalid", "wide", 7},
		{"float", "1.5", 7},
		{"unset", "", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := MapGetenv(map[string]string{"N": tt.value})
			if got := ParseIntEnv(getenv, "N", 7); got != tt.want {
				t.Errorf("ParseIntEnv(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"valid", "7.5", 7.5},
		{"integer", "9", 9},
		{"invalid", "high", 7.0},
		{"unset", "", 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := MapGetenv(map[string]string{"F": tt.value})
			if got := ParseFloat64Env(getenv, "F", 7.0); got != tt.want {
				t.Errorf("ParseFloat64Env(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value      string
		defaultVal bool
		want       bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			getenv := MapGetenv(map[string]string{"B": tt.value})
			if got := ParseBoolEnv(getenv, "B", tt.defaultVal); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestLookupOrDefault(t *testing.T) {
	lookup := MapLookupEnv(map[string]string{"SET": "value", "EMPTY": ""})

	tests := []struct {
		key  string
		want string
	}{
		{"SET", "value"},
		{"EMPTY", ""},
		{"MISSING", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := LookupOrDefault(lookup, tt.key, "fallback"); got != tt.want {
				t.Errorf("LookupOrDefault(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if got := lookup.Getenv()("SET"); got != "value" {
		t.Errorf("Getenv()(SET) = %q", got)
	}
}
