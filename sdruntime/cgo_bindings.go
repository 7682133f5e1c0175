// Two backend implementations exist, selected at build time:
//
//	go build                          # stub backend, Load reports ErrBackendUnavailable
//	CGO_ENABLED=1 go build -tags sd   # CGo binding to libstable-diffusion
//
// The real build expects the library and stable-diffusion.h under
// vendor/stable-diffusion.cpp, or CGO_CFLAGS / CGO_LDFLAGS pointing at them:
//
//	CGO_CFLAGS="-I${SD_CPP_PATH}/include" \
//	CGO_LDFLAGS="-L${SD_CPP_PATH}/build/bin -lstable-diffusion" \
//	go build -tags sd

package sdruntime

// Component paths inside a diffusers snapshot, relative to LoadOptions.ModelDir.
const (
	UNetWeights        = "unet/diffusion_pytorch_model.safetensors"
	VAEWeights         = "vae/diffusion_pytorch_model.safetensors"
	TextEncoderWeights = "text_encoder/model.safetensors"
)

// DefaultBackend returns the backend compiled into this binary.
func DefaultBackend() Backend {
	return newBackendImpl()
}

// BackendInfo describes the linked backend (library build flags, or "stub").
func BackendInfo() string {
	return backendInfoImpl()
}
