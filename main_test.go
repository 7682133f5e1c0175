package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"sdgen/core"
	"sdgen/sdruntime"
)

func testEnv(t *testing.T, extra map[string]string) core.LookupEnv {
	t.Helper()
	env := map[string]string{core.EnvCacheDir: t.TempDir()}
	for k, v := range extra {
		env[k] = v
	}
	return core.MapLookupEnv(env)
}

func requireStubBackend(t *testing.T) {
	t.Helper()
	if sdruntime.DefaultBackend().Available() == nil {
		t.Skip("a real diffusion backend is linked")
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--help"}, &stdout, &stderr, testEnv(t, nil))
	if code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "--guidance_scale") {
		t.Errorf("help output = %q", stdout.String())
	}
}

func TestRun_BackendUnavailable(t *testing.T) {
	requireStubBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--prompt", "a cat", "--width", "64", "--height", "64"},
		&stdout, &stderr, testEnv(t, nil))
	if code != core.ExitCodeError {
		t.Fatalf("exit code = %d, want %d", code, core.ExitCodeError)
	}

	if !strings.Contains(stdout.String(), "Generating image with prompt: 'a cat' at 64x64") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "BASE64_IMAGE_START:") {
		t.Error("sentinel written on failure")
	}
	if !strings.Contains(stderr.String(), "Error during execution: ") ||
		!strings.Contains(stderr.String(), sdruntime.ErrBackendUnavailable.Error()) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_ParseFailureStillRuns(t *testing.T) {
	requireStubBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr,
		testEnv(t, map[string]string{"SD_PROMPT": "misty bamboo"}))
	if code != core.ExitCodeError {
		t.Fatalf("exit code = %d", code)
	}

	errOut := stderr.String()
	for _, want := range []string{
		"Error parsing arguments: ",
		"Using fallback arguments: prompt='misty bamboo', width=384, height=384",
		"Error during execution: ",
	} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}
	if !strings.Contains(stdout.String(), "Generating image with prompt: 'misty bamboo' at 384x384") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_StatusAndWarningStreams(t *testing.T) {
	requireStubBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--prompt", "   ", "--width", "64", "--height", "64"},
		&stdout, &stderr, testEnv(t, nil))
	if code != core.ExitCodeError {
		t.Fatalf("exit code = %d", code)
	}

	out, errOut := stdout.String(), stderr.String()
	if strings.Contains(out, "Warning:") || strings.Contains(out, "Error during execution") {
		t.Errorf("stdout carries warnings or errors:\n%s", out)
	}
	if strings.Contains(errOut, "Generating image") {
		t.Errorf("stderr repeats status lines:\n%s", errOut)
	}
	if strings.Count(out, "Generating image with prompt: ") != 1 {
		t.Errorf("stdout = %q, want one status line", out)
	}
	if strings.Count(errOut, "Warning: "+sdruntime.WarnEmptyPrompt) != 1 {
		t.Errorf("stderr = %q, want one empty-prompt warning", errOut)
	}
}

func TestRun_ConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	code := run(context.Background(), nil, &stdout, &stderr,
		testEnv(t, map[string]string{core.EnvConfigFile: missing}))
	if code != core.ExitCodeError {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error during execution: ") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q", stdout.String())
	}
}
