package sdruntime

import (
	"context"
	"image"
)

// Precision is the floating point type the model weights are loaded in.
type Precision int

const (
	// Float32 is full precision, used on the CPU.
	Float32 Precision = iota
	// Float16 is half precision, used on accelerators.
	Float16
)

// String returns the torch-style dtype name.
func (p Precision) String() string {
	switch p {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// Device is the placement target of a loaded pipeline.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// LoadOptions configures how a pipeline is constructed from model files.
type LoadOptions struct {
	// ModelDir is a resolved snapshot directory holding the model components.
	ModelDir string

	// Precision selects the weight type.
	Precision Precision

	// SafetyChecker enables the content-safety post-filter when the backend
	// has one. sdgen always loads with it disabled.
	SafetyChecker bool

	// Threads is the number of CPU threads for non-accelerated work.
	// Zero lets the backend decide.
	Threads int
}

// Backend constructs pipelines. It is the seam between sdgen and the
// diffusion library.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Available reports ErrBackendUnavailable when no diffusion library is
	// linked, so callers can fail before fetching model files.
	Available() error

	// Load constructs a pipeline from the files under opts.ModelDir.
	// Implementations wrap ErrModelNotFound, ErrModelLoadFailed or
	// ErrBackendUnavailable.
	Load(ctx context.Context, opts LoadOptions) (Pipeline, error)
}

// Pipeline is a loaded text-to-image model.
type Pipeline interface {
	// To places the pipeline on the given device.
	To(device Device) error

	// Generate runs one blocking inference and returns exactly one image.
	Generate(ctx context.Context, params GenerateParams) (image.Image, error)

	// Close releases the model. It is safe to call more than once.
	Close() error
}
