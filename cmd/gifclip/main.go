// Command gifclip trims a segment of a video and writes it as an animated
// GIF, with optional frame-rate, scale and loop control.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check) or one conversion.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/gifclip/internal/check"
	"github.com/backmassage/gifclip/internal/config"
	"github.com/backmassage/gifclip/internal/convert"
	"github.com/backmassage/gifclip/internal/display"
	"github.com/backmassage/gifclip/internal/logging"
	"github.com/backmassage/gifclip/internal/media"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFailure = 1 // Conversion or dependency check failed.
	exitUsage   = 2 // Bad flags or missing paths; nothing was attempted.
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// SIGINT/SIGTERM cancel the context, which kills a running ffmpeg.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "gifclip: %v\n", err)
		fmt.Fprintln(stderr, "Run 'gifclip --help' for usage.")
		return exitUsage
	}
	return code
}

// newRootCmd builds the command. Errors returned from RunE are usage errors;
// runtime failures are reported through the logger and land in *code.
func newRootCmd(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gifclip [flags] [<video_path> <output_gif_path>]",
		Short: "Trim a video segment and save it as an animated GIF",
		Long: `gifclip cuts the [--start, --stop] range out of a video and encodes it as
an animated GIF at --fps frames per second, optionally resized by --scale.
Decoding and encoding are done by ffmpeg, which must be on PATH.

Settings may also come from GIFCLIP_* environment variables (e.g.
GIFCLIP_FPS=15) or a --config file. Positional paths win over -i/-o.`,
		Example: `  gifclip talk.mp4 talk.gif --start 12.5 --stop 18
  gifclip -i clip.mov -o small.gif --fps 15 --scale 0.5`,
		Version:       version + " (" + commit + ")",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			*code = execute(cmd.Context(), &cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.SetVersionTemplate("gifclip {{.Version}}\n")

	config.DefineFlags(cmd.Flags())
	cmd.Flags().BoolP("version", "V", false, "Print version and exit")
	cmd.Flags().SortFlags = false
	return cmd
}

// execute runs one validated configuration and returns the exit status.
func execute(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	log, err := logging.New(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "gifclip: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	display.PrintBanner(stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, log) {
			return exitFailure
		}
		return exitOK
	}

	log.Debug(cfg.Verbose, "gifclip %s (%s)", version, commit)
	log.Info("In:  %s", cfg.Input)
	log.Info("Out: %s", cfg.Output)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// A bad source is the user's problem; report it before blaming ffmpeg.
	if err := media.CheckSource(cfg.Input); err != nil {
		log.Error("%v", err)
		return exitFailure
	}

	// Fail fast if ffmpeg/ffprobe or the GIF filters are unavailable.
	if err := check.CheckDeps(ctx); err != nil {
		log.Error("%v", err)
		return exitFailure
	}

	req := convert.FromConfig(cfg)
	if !convert.Convert(ctx, req, media.NewEngine(log.Verbose()), log) {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
		}
		return exitFailure
	}
	return exitOK
}
