// Package imagegen runs one text-to-image request end to end: normalize the
// parameters, load the pipeline from the model cache (downloading on a miss),
// place it on the GPU when one is present, generate, and emit the PNG.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"sdgen/cli"
	"sdgen/device"
	"sdgen/hub"
	"sdgen/logging"
	"sdgen/output"
	"sdgen/sdruntime"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelSource resolves a model spec to a snapshot directory. *hub.Cache
// implements it.
type ModelSource interface {
	Snapshot(ctx context.Context, spec hub.ModelSpec, localOnly bool) (string, error)
}

// RunnerConfig holds everything a Runner needs besides its collaborators.
type RunnerConfig struct {
	// Spec names the model repo, revision and component files.
	Spec hub.ModelSpec

	// Threads is passed to the backend for CPU work. Zero lets it decide.
	Threads int

	// Prober defaults to nvidia-smi.
	Prober device.Prober

	// Stdout receives the base64 sentinel line or the saved-file line.
	// Defaults to os.Stdout.
	Stdout io.Writer

	// Color prints the saved-file line in green.
	Color bool
}

// Runner handles a single generation request. It is not safe for
// concurrent use; sdgen runs one request per process.
type Runner struct {
	backend sdruntime.Backend
	source  ModelSource
	logger  *logging.Logger
	config  RunnerConfig
}

// NewRunner validates its collaborators and returns a Runner.
func NewRunner(backend sdruntime.Backend, source ModelSource, logger *logging.Logger, config RunnerConfig) (*Runner, error) {
	if backend == nil {
		return nil, fmt.Errorf("imagegen: backend cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("imagegen: model source cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("imagegen: logger cannot be nil")
	}
	if err := config.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("imagegen: %w", err)
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}

	return &Runner{
		backend: backend,
		source:  source,
		logger:  logger,
		config:  config,
	}, nil
}

// Run executes one request. Every returned error is fatal for the process.
func (r *Runner) Run(ctx context.Context, params cli.Params) error {
	log := r.logger.With(zap.String("run_id", uuid.NewString()))

	p, warnings := params.Normalize()
	for _, w := range warnings {
		log.Warn(w)
	}
	log.Statusf("Generating image with prompt: '%s' at %dx%d", p.Prompt, p.Width, p.Height)
	log.Debug("request",
		zap.Float64("guidance_scale", p.GuidanceScale),
		zap.Bool("return_base64", p.ReturnBase64),
		zap.Bool("fallback", p.Fallback))

	if err := r.backend.Available(); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	dev := device.Detect(ctx, r.config.Prober)
	log.Debug("device detected", zap.Stringer("device", dev), zap.String("backend", r.backend.Name()))

	pipe, err := r.loadPipeline(ctx, log, dev.Precision())
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer func() {
		if cerr := pipe.Close(); cerr != nil {
			log.Debug("pipeline close failed", zap.Error(cerr))
		}
	}()

	if dev.Accelerated() {
		if err := pipe.To(dev.Kind.Runtime()); err != nil {
			return fmt.Errorf("%w: %w", sdruntime.ErrCUDANotAvailable, err)
		}
		log.Info("Using GPU for inference")
	} else {
		log.Info("CUDA not available, using CPU (this will be slow)")
	}

	log.Info("Starting image generation...")
	seed := sdruntime.ResolveSeed(-1)
	log.Debug("sampling", zap.Int("steps", sdruntime.DefaultSteps), zap.Int64("seed", seed))
	img, err := pipe.Generate(ctx, sdruntime.GenerateParams{
		Prompt:   p.Prompt,
		Width:    p.Width,
		Height:   p.Height,
		Steps:    sdruntime.DefaultSteps,
		CFGScale: p.GuidanceScale,
		Seed:     seed,
	})
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	log.Info("Image generation completed")

	img = sdruntime.Conform(img, p.Width, p.Height)

	// The result line must follow every status line on stdout.
	_ = log.Sync()

	if p.ReturnBase64 {
		data, err := output.EncodePNG(img)
		if err != nil {
			return err
		}
		return output.WriteBase64(r.config.Stdout, data)
	}

	path := p.OutputPath()
	if err := output.SaveFile(path, img); err != nil {
		return err
	}
	return r.printSaved(path)
}

// loadPipeline tries the local cache first and downloads on any failure
// other than a missing backend.
func (r *Runner) loadPipeline(ctx context.Context, log *logging.Logger, precision sdruntime.Precision) (sdruntime.Pipeline, error) {
	opts := sdruntime.LoadOptions{
		Precision:     precision,
		SafetyChecker: false,
		Threads:       r.config.Threads,
	}

	pipe, err := r.load(ctx, opts, true)
	if err == nil {
		log.Info("Using cached model files")
		return pipe, nil
	}
	if errors.Is(err, sdruntime.ErrBackendUnavailable) {
		return nil, err
	}

	log.Warnf("Model not found in cache, downloading: %v", err)
	pipe, err = r.load(ctx, opts, false)
	if err != nil {
		return nil, err
	}
	log.Info("Model downloaded and cached for future use")
	return pipe, nil
}

func (r *Runner) load(ctx context.Context, opts sdruntime.LoadOptions, localOnly bool) (sdruntime.Pipeline, error) {
	dir, err := r.source.Snapshot(ctx, r.config.Spec, localOnly)
	if err != nil {
		return nil, err
	}
	opts.ModelDir = dir
	return r.backend.Load(ctx, opts)
}

func (r *Runner) printSaved(path string) error {
	if !r.config.Color {
		return output.WriteSaved(r.config.Stdout, path)
	}
	_, err := color.New(color.FgGreen).Fprintln(r.config.Stdout, output.SavedMessage(path))
	return err
}
