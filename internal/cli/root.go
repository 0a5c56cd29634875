// Package cli implements the torus command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/torus/internal/config"
	"github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/logging"
	"github.com/copyleftdev/torus/internal/pointcloud"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"

	cfg    *config.Config
	logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the torus CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "torus",
		Short:         "Search toroidal grids for the densest arrangement of marked cells",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return errors.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats).WithKind(errors.Invalid)
			}
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "loading configuration").WithKind(errors.Invalid)
			}
			opts.cfg = cfg
			opts.logger = newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log search progress to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewDimsCommand(opts))

	return cmd
}

// Exit codes returned by the torus binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitIO        = 3
	ExitCancelled = 130
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.KindOf(err) {
	case errors.Invalid:
		return ExitUsage
	case errors.IO:
		return ExitIO
	case errors.Cancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}

// newLogger routes library logs through the project logger. Without
// --verbose only warnings and errors are shown.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) *zap.Logger {
	level := logging.WarnLevel
	if verbose {
		level = logging.DebugLevel
	}
	// Load has already validated the format.
	format, _ := logging.ParseFormat(cfg.Logging.Format)
	return logging.NewZapLogger(logging.NewWithFormat(level, format, w))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// paramFlags binds the parameter column flags shared by several commands.
type paramFlags struct {
	index   int
	value   int
	noParam bool
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.index, "param-index", -1, "parameter column index (default from TORUS_SEARCH_PARAM_INDEX)")
	cmd.Flags().IntVar(&p.value, "param-value", 0, "parameter value marking a point (default from TORUS_SEARCH_PARAM_VALUE)")
	cmd.Flags().BoolVar(&p.noParam, "no-param", false, "treat every row as a point with no parameter column")
}

// column resolves the flags against configured defaults.
func (p *paramFlags) column(cmd *cobra.Command, cfg *config.Config) *pointcloud.Column {
	if p.noParam {
		return nil
	}
	col := &pointcloud.Column{Index: cfg.Search.ParamIndex, Value: cfg.Search.ParamValue}
	if cmd.Flags().Changed("param-index") {
		col.Index = p.index
	}
	if cmd.Flags().Changed("param-value") {
		col.Value = p.value
	}
	if col.Index < 0 {
		return nil
	}
	return col
}
