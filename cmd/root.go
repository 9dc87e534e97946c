package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reef-installer/internal/config"
	"reef-installer/internal/installer"
	"reef-installer/internal/logger"
	"reef-installer/internal/runner"
)

// Process exit codes not produced by a failing step.
const (
	exitOK    = 0
	exitSetup = 1 // configuration could not be loaded or is invalid
	exitUsage = 2 // unknown flag, missing flag argument, stray arguments
)

// options holds the values of the command-line flags.
type options struct {
	verbose       bool
	output        string
	configPath    string
	preset        string
	license       string
	installerPath string
	ip            string
	timeout       time.Duration
}

// environment is what the commands need from the outside world.
// Execute uses the real one; tests substitute runners and clocks.
type environment struct {
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time
	hostname  func() (string, error)
	newRunner func(log *logger.Logger) runner.Runner
}

func defaultEnvironment() environment {
	return environment{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
		hostname:  os.Hostname,
		newRunner: func(log *logger.Logger) runner.Runner { return runner.New(log) },
	}
}

// Execute parses the command line, runs the requested pipeline and exits
// with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultEnvironment())
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, env environment) int {
	var started bool
	root := newRootCmd(env, &started)
	root.SetArgs(args)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case !started:
		// cobra rejected the command line before any RunE ran.
		return exitUsage
	default:
		var setupErr *setupError
		if errors.As(err, &setupErr) {
			return exitSetup
		}
		return installer.ExitCode(err)
	}
}

// setupError reports a configuration problem found before the pipeline starts.
type setupError struct {
	err error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

// newRootCmd builds the command tree. started is set as soon as a command's
// RunE is entered, which separates usage errors from run failures.
func newRootCmd(env environment, started *bool) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "reef-installer",
		Short: "Silent installer for the Digital Reef appliance",
		Long: `reef-installer stops conflicting services, installs the license, removes
previous installation artifacts and runs the Digital Reef installer in silent
mode. Afterwards it reports the host id and the connection URL, with a QR code
carrying a license request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*started = true
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			inst, log, err := opts.setup(cmd, env)
			if err != nil {
				return err
			}
			defer log.Close()

			_, err = inst.Run(cmd.Context())
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	pf.StringVarP(&opts.output, "output", "o", "", "Also log to FILE_<YYYYMMDD_HHMMSS>.log")
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	pf.StringVar(&opts.preset, "preset", "", "Policy preset: strict or lenient (default strict)")
	pf.StringVar(&opts.ip, "ip", "", "Use this IPv4 address instead of detecting one")

	f := rootCmd.Flags()
	f.StringVarP(&opts.license, "license", "l", "", "License file to install")
	f.StringVar(&opts.installerPath, "installer", "", "Installer binary, bundle or glob")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort the installer after this long (0 disables)")

	rootCmd.AddCommand(newHostIDCmd(env, opts, started))
	return rootCmd
}

// setup loads the configuration, applies flag overrides and wires the
// logger, runner and installer for one run.
func (o *options) setup(cmd *cobra.Command, env environment) (*installer.Installer, *logger.Logger, error) {
	cfg, err := config.Load(o.configPath, o.preset)
	if err != nil {
		return nil, nil, o.fail(env, err)
	}

	if o.license != "" {
		cfg.License.Source = o.license
	}
	if o.installerPath != "" {
		cfg.Installer.Path = o.installerPath
	}
	if o.ip != "" {
		cfg.Network.IP = o.ip
	}
	if flag := cmd.Flags().Lookup("timeout"); flag != nil && flag.Changed {
		cfg.Installer.Timeout = o.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, o.fail(env, fmt.Errorf("invalid configuration: %w", err))
	}

	logPath := cfg.Log.File
	if o.output != "" {
		logPath = logger.TimestampedPath(o.output, env.now())
	}
	log := logger.New(logger.Options{
		Verbose:  o.verbose,
		FilePath: logPath,
		Stdout:   env.stdout,
		Stderr:   env.stderr,
		Now:      env.now,
	})

	inst := installer.New(cfg, log, env.newRunner(log))
	inst.Now = env.now
	inst.Hostname = env.hostname
	return inst, log, nil
}

func (o *options) fail(env environment, err error) error {
	_, _ = fmt.Fprintln(env.stderr, "Error:", err)
	return &setupError{err: err}
}
