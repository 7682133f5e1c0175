package main

import (
	"context"
	"io"
	"os"

	"sdgen/cli"
	"sdgen/core"
	"sdgen/hub"
	"sdgen/imagegen"
	"sdgen/logging"
	"sdgen/sdruntime"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// The copy fallback in hub warns unless this is set; keep stderr quiet.
	os.Setenv("HF_HUB_DISABLE_SYMLINKS_WARNING", "1")

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, core.OSLookupEnv))
}

// run wires configuration, logging, the model cache and the backend, then
// hands the command line to cli.Execute. It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup core.LookupEnv) int {
	fail := color.New(color.FgRed)

	cfg, err := core.LoadConfig(lookup.Getenv())
	if err != nil {
		fail.Fprintf(stderr, "Error during execution: %v\n", err)
		return core.ExitCodeError
	}

	logger := logging.NewLogger(logging.Options{
		Level:       logging.LevelFor(cfg.LogLevel, cfg.DevMode),
		Development: cfg.DevMode,
		Color:       !color.NoColor,
		Stdout:      stdout,
		Stderr:      stderr,
		FilePath:    cfg.LogFile,
		File:        logging.DefaultFileWriterConfig(),
	})
	defer func() { _ = logger.Sync() }()

	logger.Debug("configuration loaded",
		zap.Stringer("config", cfg),
		zap.String("version", version),
		zap.String("backend", sdruntime.BackendInfo()))

	cache := hub.NewCache(cfg, logger.Named("hub"))
	cache.UserAgent = "sdgen/" + version

	runner, err := imagegen.NewRunner(sdruntime.DefaultBackend(), cache, logger, imagegen.RunnerConfig{
		Spec:    hub.DiffusersSpec(cfg.ModelRepo, cfg.ModelRevision),
		Threads: cfg.Threads,
		Stdout:  stdout,
		Color:   !color.NoColor,
	})
	if err != nil {
		fail.Fprintf(stderr, "Error during execution: %v\n", err)
		return core.ExitCodeError
	}

	err = cli.Execute(ctx, args, cli.Options{
		Stdout:    stdout,
		Stderr:    stderr,
		LookupEnv: lookup,
		Version:   version,
		Run:       runner.Run,
	})
	if err != nil {
		_ = logger.Sync()
		fail.Fprintf(stderr, "Error during execution: %v\n", err)
	}

	code := core.ExitCodeFor(err)
	logger.Debug("exiting", zap.Int("code", code), zap.String("status", core.ExitCodeName(code)))
	return code
}
