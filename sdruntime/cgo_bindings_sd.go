//go:build sd && cgo

// Real CGo binding to stable-diffusion.cpp.
// Build with: CGO_ENABLED=1 go build -tags sd
//
// Targets the params-struct API (sd_ctx_params_t / sd_img_gen_params_t /
// generate_image). The CUDA, Metal or CPU compute backend is chosen when the
// library itself is built.

package sdruntime

/*
#cgo CFLAGS: -I${SRCDIR}/../vendor/stable-diffusion.cpp/include
#cgo LDFLAGS: -L${SRCDIR}/../vendor/stable-diffusion.cpp/build/bin -lstable-diffusion

#include <stdlib.h>
#include <stdint.h>
#include <stdbool.h>
#include "stable-diffusion.h"

static sd_ctx_t* sdgen_new_ctx(const char* unet, const char* vae, const char* clip,
                               int n_threads, int half) {
	sd_ctx_params_t p;
	sd_ctx_params_init(&p);
	p.diffusion_model_path = unet;
	p.vae_path = vae;
	p.clip_l_path = clip;
	p.vae_decode_only = true;
	p.free_params_immediately = true;
	if (n_threads > 0) {
		p.n_threads = n_threads;
	} else {
		p.n_threads = sd_get_num_physical_cores();
	}
	p.wtype = half ? SD_TYPE_F16 : SD_TYPE_F32;
	return new_sd_ctx(&p);
}

static sd_image_t* sdgen_txt2img(sd_ctx_t* ctx, const char* prompt, const char* negative,
                                 int width, int height, int steps, float cfg, int64_t seed) {
	sd_img_gen_params_t g;
	sd_img_gen_params_init(&g);
	g.prompt = prompt;
	g.negative_prompt = negative;
	g.width = width;
	g.height = height;
	g.sample_params.sample_steps = steps;
	g.sample_params.guidance.txt_cfg = cfg;
	g.seed = seed;
	g.batch_count = 1;
	return generate_image(ctx, &g);
}

static void sdgen_free_images(sd_image_t* imgs) {
	if (imgs == NULL) {
		return;
	}
	free(imgs[0].data);
	free(imgs);
}
*/
import "C"

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"unsafe"
)

type cgoBackend struct{}

func newBackendImpl() Backend {
	return cgoBackend{}
}

func backendInfoImpl() string {
	info := C.sd_get_system_info()
	if info == nil {
		return "stable-diffusion.cpp"
	}
	return C.GoString(info)
}

func (cgoBackend) Name() string {
	return "stable-diffusion.cpp"
}

func (cgoBackend) Available() error {
	return nil
}

// Load creates an sd_ctx_t from the UNet, VAE and text encoder of a diffusers
// snapshot. There is no safety checker in stable-diffusion.cpp, so
// opts.SafetyChecker has no effect.
func (cgoBackend) Load(ctx context.Context, opts LoadOptions) (Pipeline, error) {
	paths := []string{
		filepath.Join(opts.ModelDir, UNetWeights),
		filepath.Join(opts.ModelDir, VAEWeights),
		filepath.Join(opts.ModelDir, TextEncoderWeights),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, p)
		}
	}

	cUNet := C.CString(paths[0])
	defer C.free(unsafe.Pointer(cUNet))
	cVAE := C.CString(paths[1])
	defer C.free(unsafe.Pointer(cVAE))
	cClip := C.CString(paths[2])
	defer C.free(unsafe.Pointer(cClip))

	half := C.int(0)
	if opts.Precision == Float16 {
		half = 1
	}

	cCtx := C.sdgen_new_ctx(cUNet, cVAE, cClip, C.int(opts.Threads), half)
	if cCtx == nil {
		return nil, fmt.Errorf("%w: new_sd_ctx returned null for %s", ErrModelLoadFailed, opts.ModelDir)
	}

	return &cgoPipeline{cCtx: cCtx, device: DeviceCPU}, nil
}

type cgoPipeline struct {
	mu     sync.Mutex
	cCtx   *C.sd_ctx_t
	device Device
}

// To records the placement. Compute placement in stable-diffusion.cpp is
// fixed by how the library was built.
func (p *cgoPipeline) To(device Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cCtx == nil {
		return ErrPipelineClosed
	}
	p.device = device
	return nil
}

func (p *cgoPipeline) Generate(ctx context.Context, params GenerateParams) (image.Image, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cCtx == nil {
		return nil, ErrPipelineClosed
	}

	cPrompt := C.CString(params.Prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	cNeg := C.CString(params.NegativePrompt)
	defer C.free(unsafe.Pointer(cNeg))

	imgs := C.sdgen_txt2img(p.cCtx, cPrompt, cNeg,
		C.int(params.Width), C.int(params.Height), C.int(params.Steps),
		C.float(params.CFGScale), C.int64_t(ResolveSeed(params.Seed)))
	if imgs == nil || imgs.data == nil {
		return nil, fmt.Errorf("%w: generate_image returned no image", ErrGenerationFailed)
	}
	defer C.sdgen_free_images(imgs)

	width, height, channels := int(imgs.width), int(imgs.height), int(imgs.channel)
	pixels := C.GoBytes(unsafe.Pointer(imgs.data), C.int(width*height*channels))

	img, err := ImageFromPixels(pixels, width, height, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return img, nil
}

func (p *cgoPipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cCtx != nil {
		C.free_sd_ctx(p.cCtx)
		p.cCtx = nil
	}
	return nil
}
