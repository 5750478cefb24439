package cmd

import (
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/app"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagOutput    = "output"
	flagFrom      = "from"
)

// NewRootCmd creates a new root command for fluxd. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	app.SetConfig()

	rootCmd := &cobra.Command{
		Use:   app.Name,
		Short: "FluxAggregator ledger daemon",
		Long: `fluxd runs a FluxAggregator: oracles submit values for numbered rounds and the
median of each round becomes the published answer. Oracles are paid from funds
deposited on the bank ledger.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "The logging level (trace|debug|info|warn|error|fatal|panic|disabled)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "The logging format (json|plain)")

	rootCmd.AddCommand(
		InitCmd(),
		TxCmd(),
		QueryCmd(),
		ServeCmd(),
		ExportCmd(),
		FundCmd(),
		TokenCmd(),
	)

	return rootCmd
}

func homeDir(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString(flagHome)
}

// newLogger builds the process logger from the persistent log flags.
func newLogger(cmd *cobra.Command, w io.Writer) (log.Logger, error) {
	rawLevel, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(rawLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", rawLevel, err)
	}

	format, err := cmd.Flags().GetString(flagLogFormat)
	if err != nil {
		return nil, err
	}

	opts := []log.Option{log.LevelOption(level)}
	switch format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "plain":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return log.NewLogger(w, opts...), nil
}
