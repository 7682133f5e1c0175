package logging

import "testing"

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hf token", "token hf_AbCdEfGhIjKlMnOpQrStUv used", "token [REDACTED] used"},
		{"bearer", "Authorization: Bearer abcdefgh12345", "Authorization: [REDACTED]"},
		{"assignment", "url?token=abcdefgh123&x=1", "url?[REDACTED]&x=1"},
		{"commit hash kept", "snapshot 39593d5650112b4cc580433f6b0435385882d819", "snapshot 39593d5650112b4cc580433f6b0435385882d819"},
		{"plain", "Using cached model files", "Using cached model files"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactSensitiveData(tt.in); got != tt.want {
				t.Errorf("RedactSensitiveData(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveField(t *testing.T) {
	tests := map[string]bool{
		"hf_token":      true,
		"HF_TOKEN":      true,
		"Authorization": true,
		"password":      true,
		"prompt":        false,
		"etag":          false,
	}
	for name, want := range tests {
		if got := IsSensitiveField(name); got != want {
			t.Errorf("IsSensitiveField(%q) = %v, want %v", name, got, want)
		}
	}
}
