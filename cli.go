package ssg

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/errors"
)

// Version information set at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// cliFlags are shared by every subcommand.
type cliFlags struct {
	configPath  string
	mode        string
	verbose     bool
	noColor     bool
	metricsFile string
}

// Command returns the CLI for the app: build, dev, routes, publish and
// version.
func (a *App) Command() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "ssg",
		Short: "Pre-render a single-page application into static HTML",
		Long: `Render every route of the application into the bundler's output
directory, write the loader data manifest and run the post-build hooks.

Run "ssg build" after the bundler has produced its client build.
Run "ssg dev" next to the bundler's dev server for on-demand rendering.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to ssg.json (default: search from the working directory)")
	root.PersistentFlags().StringVarP(&flags.mode, "mode", "m", "", "Mode used to pick .env files (default: MODE, NODE_ENV or config)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	root.AddCommand(
		a.buildCmd(flags),
		a.devCmd(flags),
		a.routesCmd(flags),
		a.publishCmd(flags),
		versionCmd(),
	)
	return root
}

// Main runs the CLI with os.Args and exits on failure.
func (a *App) Main() {
	if err := a.Command().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and the mode's environment files.
func (f *cliFlags) loadConfig(fallbackMode string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	mode := f.mode
	if mode == "" {
		mode = cfg.ResolveMode(fallbackMode)
	}
	cfg.Mode = mode
	if _, err := cfg.LoadEnv(mode); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (a *App) buildCmd(flags *cliFlags) *cobra.Command {
	var (
		outDir      string
		concurrency int
		dirStyle    string
		publishOut  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every static path",
		Long: `Render every static path of the application.

This command:
  • Enumerates routes, expanding dynamic segments with getStaticPaths
  • Renders pages with bounded concurrency
  • Injects head tags, preload links and the hydration hint
  • Optionally inlines critical CSS
  • Writes static-loader-data-manifest-<hash>.json

Examples:
  ssg build
  ssg build --concurrency=8 --dir-style=nested
  ssg build --metrics-file=ssg.prom --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig("production")
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if concurrency > 0 {
				cfg.Concurrency = concurrency
			}
			if dirStyle != "" {
				cfg.DirStyle = dirStyle
			}

			logger := NewLogger(cmd.ErrOrStderr(), flags.verbose)
			ctx, cancel := signalContext()
			defer cancel()

			_, err = a.Build(ctx, cfg,
				WithLogger(logger),
				WithMetricsFile(flags.metricsFile),
				WithReport(cmd.OutOrStdout()),
				WithProgress(func(step string) { logger.Debug(step) }),
			)
			if err != nil {
				return err
			}

			if publishOut {
				res, err := a.Publish(ctx, cfg, WithLogger(logger))
				if err != nil {
					return err
				}
				logger.Info("Published", "files", res.Files, "bytes", res.Bytes, "bucket", cfg.Publish.S3.Bucket)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from ssg.json)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Pages rendered at once (default from ssg.json)")
	cmd.Flags().StringVar(&dirStyle, "dir-style", "", `Output layout: "flat" or "nested"`)
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write build metrics in Prometheus textfile format")
	cmd.Flags().BoolVar(&publishOut, "publish", false, "Upload the output to S3 after building")

	return cmd
}

func (a *App) devCmd(flags *cliFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server.

Pages are rendered on request in front of the bundler's dev server.
Module requests are proxied to dev.bundler, and browsers reload when the
template, public directory or dev.watch entries change.

Examples:
  ssg dev
  ssg dev --port=8080
  ssg dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig("development")
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}

			ctx, cancel := signalContext()
			defer cancel()
			return a.Dev(ctx, cfg, WithLogger(NewLogger(cmd.ErrOrStderr(), flags.verbose)))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from ssg.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from ssg.json)")

	return cmd
}

func (a *App) routesCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the paths a build would render",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig("production")
			if err != nil {
				return err
			}
			paths, err := a.Paths(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func (a *App) publishCmd(flags *cliFlags) *cobra.Command {
	var bucket, prefix string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the build output to S3",
		Long: `Upload the build output to S3.

Fingerprinted assets are uploaded with a long immutable cache lifetime,
everything else must be revalidated. Credentials are read from
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig("production")
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.S3.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.S3.Prefix = prefix
			}

			logger := NewLogger(cmd.ErrOrStderr(), flags.verbose)
			ctx, cancel := signalContext()
			defer cancel()

			res, err := a.Publish(ctx, cfg, WithLogger(logger))
			if err != nil {
				return err
			}
			logger.Info("Published", "files", res.Files, "bytes", res.Bytes, "bucket", cfg.Publish.S3.Bucket)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name (default from ssg.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from ssg.json)")

	return cmd
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, Version)
				return
			}
			fmt.Fprintf(out, "  Version:    %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
