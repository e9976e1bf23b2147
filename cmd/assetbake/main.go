package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"assetbake/internal/app"
	"assetbake/internal/config"
	"assetbake/internal/domain"
	appErrors "assetbake/internal/errors"
	"assetbake/internal/infra/fs"
	"assetbake/internal/infra/media"
	"assetbake/internal/logging"
	"assetbake/internal/presentation"
	"assetbake/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		mode       string
		verbose    bool
		workers    int
		useTUI     bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:           "assetbake",
		Short:         "Copy site assets and transcode source images for a static build",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Mode = mode
			}
			if verbose {
				cfg.Verbose = true
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			return run(cmd.Context(), cfg, useTUI, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultFile, "site config file")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "environment mode (publish runs when it is \"production\")")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().IntVar(&workers, "workers", 0, "transcode workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "interactive progress display")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "list discovered images without writing anything")

	return cmd
}

func run(ctx context.Context, cfg config.Config, useTUI, dryRun bool) error {
	filesystem := fs.OSFS{}
	transcoder := media.NewTranscoder(media.Probe{})

	pipeline := &app.Pipeline{
		FS:         filesystem,
		Transcoder: transcoder,
		Logger:     logging.New(os.Stderr, "assets", cfg.Verbose),
		Workers:    cfg.Workers,
	}

	printer := presentation.Printer{Writer: os.Stdout, Verbose: cfg.Verbose}

	if dryRun {
		previews, err := pipeline.Preview(ctx, cfg.Paths, cfg.Sources)
		if err != nil {
			return err
		}
		printer.PrintDryRun(previews)
		return nil
	}

	if useTUI {
		// The TUI owns the terminal; the logger stays quiet.
		pipeline.Logger = logging.Logger{}
		return runTUI(ctx, pipeline, cfg)
	}

	report, err := pipeline.Run(ctx, cfg.Paths, cfg.Sources, cfg.Mode)
	if err != nil {
		return err
	}
	printer.PrintReport(report)
	if n := len(report.Failures()); n > 0 {
		return fmt.Errorf("%d images failed", n)
	}
	return nil
}

// buildProgram is the slice of tea.Program the build coordination needs.
type buildProgram interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

func runTUI(ctx context.Context, pipeline *app.Pipeline, cfg config.Config) error {
	model := tui.NewModel(tui.Config{OutputDir: cfg.Paths.AssetPath, Mode: cfg.Mode})
	return runWithProgram(ctx, pipeline, cfg, tea.NewProgram(model))
}

// runWithProgram runs the pipeline behind a TUI. Quitting the TUI cancels the
// build; the pipeline goroutine is always waited for before its result is
// read, and an aborted build is a failure, never a silent success.
func runWithProgram(ctx context.Context, pipeline *app.Pipeline, cfg config.Config, program buildProgram) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline.OnProgress = func(event app.Progress) {
		program.Send(tui.ProgressMsg{Event: event})
	}

	var report domain.BuildReport
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, runErr = pipeline.Run(ctx, cfg.Paths, cfg.Sources, cfg.Mode)
		if runErr != nil {
			program.Send(tui.ErrorMsg{Err: runErr})
			return
		}
		program.Send(tui.DoneMsg{Report: report})
	}()

	_, err := program.Run()
	cancel()
	<-done
	if err != nil {
		return err
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errors.New("build aborted")
		}
		return runErr
	}
	if n := len(report.Failures()); n > 0 {
		return fmt.Errorf("%d images failed", n)
	}
	return nil
}
