package sdruntime

import "errors"

// Sentinel errors for SD runtime operations.
// Callers match them with errors.Is; implementations wrap them with detail.
var (
	// Model-related errors
	ErrModelNotFound   = errors.New("sdruntime: model files not found")
	ErrModelLoadFailed = errors.New("sdruntime: failed to load model")

	// Generation errors
	ErrGenerationFailed = errors.New("sdruntime: image generation failed")

	// Input validation errors
	ErrInvalidPrompt = errors.New("sdruntime: invalid prompt")
	ErrInvalidParams = errors.New("sdruntime: invalid generation parameters")

	// Hardware/backend errors
	ErrBackendUnavailable = errors.New("sdruntime: stable-diffusion backend not available")
	ErrCUDANotAvailable   = errors.New("sdruntime: CUDA not available")

	// Lifecycle errors
	ErrPipelineClosed = errors.New("sdruntime: pipeline is closed")
)
