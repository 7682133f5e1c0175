//go:build !sd || !cgo

package sdruntime

import (
	"context"
	"fmt"
)

var errStubBuild = fmt.Errorf("%w: rebuild with CGO_ENABLED=1 go build -tags sd", ErrBackendUnavailable)

type stubBackend struct{}

func newBackendImpl() Backend {
	return stubBackend{}
}

func backendInfoImpl() string {
	return "stub (no stable-diffusion.cpp library linked)"
}

func (stubBackend) Name() string {
	return "stub"
}

func (stubBackend) Available() error {
	return errStubBuild
}

func (stubBackend) Load(ctx context.Context, opts LoadOptions) (Pipeline, error) {
	return nil, errStubBuild
}
