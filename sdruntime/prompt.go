package sdruntime

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Prompt normalization constants.
const (
	// DefaultPrompt replaces empty or whitespace-only prompts.
	DefaultPrompt = "Serene Chinese landscape with mountains and rivers, traditional painting style"

	// MaxPromptLength is the longest prompt, in characters, passed to the model
	// before truncation.
	MaxPromptLength = 200

	// TruncationSuffix is appended to truncated prompts.
	TruncationSuffix = "..."
)

// Warnings emitted by NormalizePrompt.
const (
	WarnEmptyPrompt     = "Empty prompt provided. Using default prompt."
	WarnPromptTruncated = "Prompt was too long and has been truncated"
)

// NormalizePrompt replaces an empty prompt with DefaultPrompt and truncates
// prompts longer than MaxPromptLength characters, appending TruncationSuffix.
// It returns the prompt to use and the warnings that apply.
func NormalizePrompt(prompt string) (string, []string) {
	var warnings []string

	if strings.TrimSpace(prompt) == "" {
		warnings = append(warnings, WarnEmptyPrompt)
		prompt = DefaultPrompt
	}

	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		warnings = append(warnings, WarnPromptTruncated)
		prompt = string([]rune(prompt)[:MaxPromptLength]) + TruncationSuffix
	}

	return prompt, warnings
}

// ValidatePrompt validates a prompt string for image generation.
// Normalized prompts are at most MaxPromptLength characters plus the suffix.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidPrompt)
	}

	// C strings end at the first NUL
	if strings.ContainsRune(prompt, '\x00') {
		return fmt.Errorf("%w: prompt contains null bytes", ErrInvalidPrompt)
	}

	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength+len(TruncationSuffix) {
		return fmt.Errorf("%w: prompt length %d exceeds maximum %d",
			ErrInvalidPrompt, n, MaxPromptLength)
	}

	return nil
}
