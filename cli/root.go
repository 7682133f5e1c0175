// Package cli parses the sdgen command line. A command line that cannot be
// parsed is not fatal: the run continues with parameters taken from SD_*
// environment variables and base64 output.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sdgen/core"

	"github.com/spf13/cobra"
)

// ParseError wraps any argument-level failure: unknown flag, malformed
// value or stray positional argument.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RunFunc executes one generation.
type RunFunc func(ctx context.Context, p Params) error

// Options wires the command to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// LookupEnv supplies the SD_* fallback variables.
	LookupEnv core.LookupEnv

	// Version is printed by --version.
	Version string

	Run RunFunc
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.LookupEnv == nil {
		o.LookupEnv = core.OSLookupEnv
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.Run == nil {
		o.Run = func(context.Context, Params) error {
			return errors.New("cli: no run function configured")
		}
	}
	return o
}

// NewRootCommand builds the sdgen command. Parse failures surface as
// *ParseError from Execute.
func NewRootCommand(opts Options) *cobra.Command {
	opts = opts.withDefaults()
	p := DefaultParams()

	cmd := &cobra.Command{
		Use:   "sdgen",
		Short: "Generate an image from a text prompt with Stable Diffusion",
		Long: `sdgen generates one image from a text prompt and either saves it as a PNG
or, with --return_base64, prints it on stdout as
BASE64_IMAGE_START:<base64 png>:BASE64_IMAGE_END.

If the arguments cannot be parsed, sdgen falls back to SD_PROMPT, SD_WIDTH,
SD_HEIGHT and SD_GUIDANCE and returns base64.`,
		Version:       opts.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &ParseError{Err: fmt.Errorf("unrecognized arguments: %s", strings.Join(args, " "))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Run(cmd.Context(), p)
		},
	}

	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ParseError{Err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&p.Prompt, "prompt", DefaultPrompt, "prompt for image generation")
	flags.IntVar(&p.Width, "width", DefaultWidth, "image width (floored to a multiple of 8)")
	flags.IntVar(&p.Height, "height", DefaultHeight, "image height (floored to a multiple of 8)")
	flags.StringVar(&p.Output, "output", "", "output filename (default derived from the prompt)")
	flags.BoolVar(&p.ReturnBase64, "return_base64", false, "print the image as base64 on stdout instead of saving it")
	flags.Float64Var(&p.GuidanceScale, "guidance_scale", DefaultGuidanceScale, "classifier-free guidance scale")
	flags.SortFlags = false

	return cmd
}

// Execute parses args and runs the pipeline. On a *ParseError it reports the
// problem on stderr and runs with FallbackParams instead.
func Execute(ctx context.Context, args []string, opts Options) error {
	opts = opts.withDefaults()

	// cobra reads os.Args when given nil
	if args == nil {
		args = []string{}
	}
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	var perr *ParseError
	if !errors.As(err, &perr) {
		return err
	}

	fmt.Fprintf(opts.Stderr, "Error parsing arguments: %v\n", perr.Err)
	p := FallbackParams(opts.LookupEnv)
	fmt.Fprintf(opts.Stderr, "Using fallback arguments: prompt='%s', width=%d, height=%d\n", p.Prompt, p.Width, p.Height)

	return opts.Run(ctx, p)
}
