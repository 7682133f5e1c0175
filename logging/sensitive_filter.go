package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive values.
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	// Hugging Face access tokens
	regexp.MustCompile(`hf_[A-Za-z0-9]{20,}`),
	// Authorization header values
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{8,}`),
	regexp.MustCompile(`(?i)(token|password|secret)\s*[:=]\s*[^\s,;&]{8,}`),
}

var sensitiveFieldNames = []string{
	"TOKEN",
	"AUTHORIZATION",
	"PASSWORD",
	"SECRET",
}

// RedactSensitiveData replaces tokens and credential assignments in value.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field name such as "hf_token" or
// "Authorization" marks its value as secret.
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}
