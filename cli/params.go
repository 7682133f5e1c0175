package cli

import (
	"sdgen/core"
	"sdgen/output"
	"sdgen/sdruntime"
)

// Flag defaults.
const (
	DefaultPrompt        = "a cat riding a horse"
	DefaultWidth         = 1920
	DefaultHeight        = 1080
	DefaultGuidanceScale = 7.5
)

// Fallback values used when the command line cannot be parsed.
const (
	FallbackPrompt        = "Serene Chinese landscape with mountains and rivers"
	FallbackWidth         = 384
	FallbackHeight        = 384
	FallbackGuidanceScale = 7.0
)

// Environment variables read only for the fallback set.
const (
	EnvPrompt   = "SD_PROMPT"
	EnvWidth    = "SD_WIDTH"
	EnvHeight   = "SD_HEIGHT"
	EnvGuidance = "SD_GUIDANCE"
)

// Params is one invocation's generation request.
type Params struct {
	Prompt        string
	Width         int
	Height        int
	GuidanceScale float64
	ReturnBase64  bool

	// Output is the PNG path; empty derives one from the prompt.
	Output string

	// Fallback is set when the parameters came from the environment after a
	// parse failure.
	Fallback bool
}

// DefaultParams is what an empty command line yields.
func DefaultParams() Params {
	return Params{
		Prompt:        DefaultPrompt,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		GuidanceScale: DefaultGuidanceScale,
	}
}

// FallbackParams builds the parameter set used after a parse failure from
// SD_PROMPT, SD_WIDTH, SD_HEIGHT and SD_GUIDANCE. An absent SD_PROMPT takes
// the fallback literal; a set but empty one is kept and left to Normalize.
// Unset or unparseable numbers take the fallback literals. Base64 output is
// always on.
func FallbackParams(lookup core.LookupEnv) Params {
	getenv := lookup.Getenv()
	p := DefaultParams()
	p.Prompt = core.LookupOrDefault(lookup, EnvPrompt, FallbackPrompt)
	p.Width = core.ParseIntEnv(getenv, EnvWidth, FallbackWidth)
	p.Height = core.ParseIntEnv(getenv, EnvHeight, FallbackHeight)
	p.GuidanceScale = core.ParseFloat64Env(getenv, EnvGuidance, FallbackGuidanceScale)
	p.ReturnBase64 = true
	p.Fallback = true
	return p
}

// Normalize floors the dimensions to multiples of 8 and fixes up the prompt.
// The returned warnings are meant for stderr.
func (p Params) Normalize() (Params, []string) {
	p.Width = sdruntime.FloorToMultiple(p.Width, sdruntime.SizeMultiple)
	p.Height = sdruntime.FloorToMultiple(p.Height, sdruntime.SizeMultiple)

	var warnings []string
	p.Prompt, warnings = sdruntime.NormalizePrompt(p.Prompt)
	return p, warnings
}

// OutputPath is the explicit --output, or the name derived from the prompt.
func (p Params) OutputPath() string {
	if p.Output != "" {
		return p.Output
	}
	return output.DeriveFilename(p.Prompt)
}
