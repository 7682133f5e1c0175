package sdruntime

import (
	"fmt"
	"math"
)

// GenerateParams holds parameters for a single text-to-image inference.
type GenerateParams struct {
	Prompt         string  // Required: text description of the image to generate
	NegativePrompt string  // Optional: what to avoid in the image
	Width          int     // Image width in pixels (divisible by 8)
	Height         int     // Image height in pixels (divisible by 8)
	Steps          int     // Number of inference steps (1-100)
	CFGScale       float64 // Classifier-free guidance scale (0-30)
	Seed           int64   // Random seed for reproducibility (-1 for random)
}

// Parameter validation constants
const (
	// SizeMultiple is the latent downsampling factor of the SD v1 VAE.
	// Image dimensions must be divisible by it.
	SizeMultiple = 8

	MinImageSize = SizeMultiple
	MaxImageSize = 4096

	MinSteps = 1
	MaxSteps = 100

	MinCFGScale = 0.0
	MaxCFGScale = 30.0

	// DefaultSteps favors speed over maximum fidelity.
	DefaultSteps = 25
)

// FloorToMultiple rounds n down to the nearest multiple of m (m > 0).
// This is a mathematical floor, so negative inputs also round down:
// FloorToMultiple(-5, 8) == -8.
func FloorToMultiple(n, m int) int {
	if m <= 0 {
		return n
	}
	r := n % m
	if r < 0 {
		r += m
	}
	return n - r
}

// ValidateParams validates generation parameters and returns an error if invalid.
// This is a pure function with no side effects.
func ValidateParams(p GenerateParams) error {
	if err := ValidatePrompt(p.Prompt); err != nil {
		return err
	}

	if p.Width < MinImageSize || p.Width > MaxImageSize {
		return fmt.Errorf("%w: width %d must be between %d and %d",
			ErrInvalidParams, p.Width, MinImageSize, MaxImageSize)
	}
	if p.Width%SizeMultiple != 0 {
		return fmt.Errorf("%w: width %d must be divisible by %d",
			ErrInvalidParams, p.Width, SizeMultiple)
	}

	if p.Height < MinImageSize || p.Height > MaxImageSize {
		return fmt.Errorf("%w: height %d must be between %d and %d",
			ErrInvalidParams, p.Height, MinImageSize, MaxImageSize)
	}
	if p.Height%SizeMultiple != 0 {
		return fmt.Errorf("%w: height %d must be divisible by %d",
			ErrInvalidParams, p.Height, SizeMultiple)
	}

	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be between %d and %d",
			ErrInvalidParams, p.Steps, MinSteps, MaxSteps)
	}

	if math.IsNaN(p.CFGScale) || p.CFGScale < MinCFGScale || p.CFGScale > MaxCFGScale {
		return fmt.Errorf("%w: guidance scale %.2f must be between %.1f and %.1f",
			ErrInvalidParams, p.CFGScale, MinCFGScale, MaxCFGScale)
	}

	return nil
}
