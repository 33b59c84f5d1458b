package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsim/internal/config"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Runtime *Runtime
}

// NewRootCommand creates the root command with its global flags and
// subcommands.  A nil factory selects NewRuntime.
func NewRootCommand(factory RuntimeFactory) *cobra.Command {
	if factory == nil {
		factory = NewRuntime
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemsim",
		Short: "Structural similarity of named chemical structures",
		Long: "chemsim canonicalizes SMILES structures, fingerprints them and reports\n" +
			"pairwise Tanimoto or Dice similarity within one set or between two sets.\n" +
			"Structures are read from local files, standard input, s3:// objects or a\n" +
			"local ChEMBL mirror.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./chemsim.yaml, ~/.chemsim, /etc/chemsim)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides -v")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress at info level")

	cmd.AddCommand(
		newSimilaritiesCmd(),
		newMatrixCmd(),
		newCanonicalizeCmd(),
		newChEMBLCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration, builds the logger and the runtime,
// then stores a CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory RuntimeFactory) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "config initialization failed")
	}

	level, err := resolveLogLevel(cfg.Log.Level, opts)
	if err != nil {
		return err
	}
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), level, cfg.Log.Format)

	rt, err := factory(cfg, logger, cmd.InOrStdin())
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		return err
	}

	cliCtx := &CLIContext{Config: cfg, Logger: logger, Runtime: rt}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// resolveLogLevel picks the log level: an explicit --log-level wins, -v
// selects info, otherwise the configured level applies.
func resolveLogLevel(configured string, opts *RootOptions) (string, error) {
	level := configured
	if opts.Verbose {
		level = logging.LevelInfo
	}
	if opts.LogLevel != "" {
		level = strings.ToLower(opts.LogLevel)
	}
	switch level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
		return level, nil
	default:
		return "", errors.InvalidParam("unknown log level").WithDetail(level)
	}
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// withCLIContext adapts fn into a RunE that releases the runtime when fn
// returns.
func withCLIContext(fn func(cmd *cobra.Command, cliCtx *CLIContext) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cliCtx.Runtime.Close()
		return fn(cmd, cliCtx)
	}
}

// legacyFlags maps the single-dash spellings accepted by earlier releases.
var legacyFlags = map[string]string{
	"-f1": "--file1",
	"-f2": "--file2",
}

// NormalizeLegacyArgs rewrites -f1/-f2 (also in -f1=FILE form) to their
// long equivalents.  Everything after "--" is left alone.
func NormalizeLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	return ExecuteArgs(os.Args[1:], nil)
}

// ExecuteArgs runs the command tree against args.
func ExecuteArgs(args []string, factory RuntimeFactory) error {
	rootCmd := NewRootCommand(factory)
	rootCmd.SetArgs(NormalizeLegacyArgs(args))

	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// openOutput returns stdout for "" and "-", otherwise a newly created file.
// The returned function closes the file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create output file").WithDetail(path)
	}
	return f, f.Close, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Overrides the root hook: printing the version needs no runtime.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chemsim %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

//Personal.AI order the ending
