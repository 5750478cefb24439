package cmd

import (
	"fmt"
	"os"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/app"
)

const (
	flagOwner         = "owner"
	flagChainID       = "chain-id"
	flagDenom         = "denom"
	flagDecimals      = "decimals"
	flagDescription   = "description"
	flagTimeout       = "timeout"
	flagMinSubmission = "min-submission-value"
	flagMaxSubmission = "max-submission-value"
	flagBalance       = "balance"
	flagOverwrite     = "overwrite"
)

// InitCmd writes the node configuration and the genesis document of a new
// aggregator ledger.
func InitCmd() *cobra.Command {
	defaults := app.DefaultGenesisConfig()

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the configuration and genesis of a new ledger",
		Long: `Initialize app.toml and genesis.json under the home directory.

The owner becomes the authority allowed to change oracles, configure future
rounds, manage requesters and withdraw funds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := homeDir(cmd)
			if err != nil {
				return err
			}

			owner, _ := cmd.Flags().GetString(flagOwner)
			if _, err := sdk.AccAddressFromBech32(owner); err != nil {
				return fmt.Errorf("invalid --%s address: %w", flagOwner, err)
			}

			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			if _, err := os.Stat(genesisPath(home)); err == nil && !overwrite {
				return fmt.Errorf("genesis file already exists at %s, use --%s to replace it", genesisPath(home), flagOverwrite)
			}

			cfg := app.DefaultGenesisConfig()
			cfg.ChainID, _ = cmd.Flags().GetString(flagChainID)
			cfg.Denom, _ = cmd.Flags().GetString(flagDenom)
			cfg.Decimals, _ = cmd.Flags().GetUint32(flagDecimals)
			cfg.Description, _ = cmd.Flags().GetString(flagDescription)
			cfg.Timeout, _ = cmd.Flags().GetUint64(flagTimeout)
			cfg.MinSubmissionValue, _ = cmd.Flags().GetInt64(flagMinSubmission)
			cfg.MaxSubmissionValue, _ = cmd.Flags().GetInt64(flagMaxSubmission)

			rawBalances, _ := cmd.Flags().GetStringSlice(flagBalance)
			if cfg.Balances, err = parseBalances(rawBalances); err != nil {
				return err
			}

			encoding := app.MakeEncodingConfig()
			genesis, err := app.NewGenesisState(encoding.Codec, cfg)
			if err != nil {
				return err
			}
			bz, err := app.MarshalGenesis(genesis)
			if err != nil {
				return err
			}

			if err := WriteConfig(home, map[string]interface{}{
				"fluxagg.authority": owner,
				"fluxagg.chain-id":  cfg.ChainID,
			}); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			if err := os.WriteFile(genesisPath(home), bz, 0o644); err != nil {
				return fmt.Errorf("failed to write genesis: %w", err)
			}

			return printOutput(cmd, map[string]interface{}{
				"chain_id": cfg.ChainID,
				"owner":    owner,
				"home":     home,
			})
		},
	}

	cmd.Flags().String(flagOwner, "", "Bech32 address of the aggregator owner (required)")
	cmd.Flags().String(flagChainID, defaults.ChainID, "Chain ID of the ledger")
	cmd.Flags().String(flagDenom, defaults.Denom, "Denom oracles are paid in")
	cmd.Flags().Uint32(flagDecimals, defaults.Decimals, "Decimals of the published answers")
	cmd.Flags().String(flagDescription, defaults.Description, "Description of the feed")
	cmd.Flags().Uint64(flagTimeout, defaults.Timeout, "Round timeout in seconds")
	cmd.Flags().Int64(flagMinSubmission, defaults.MinSubmissionValue, "Smallest accepted submission")
	cmd.Flags().Int64(flagMaxSubmission, defaults.MaxSubmissionValue, "Largest accepted submission")
	cmd.Flags().StringSlice(flagBalance, nil, "Initial balance as address=amount (repeatable)")
	cmd.Flags().Bool(flagOverwrite, false, "Overwrite an existing genesis file")
	_ = cmd.MarkFlagRequired(flagOwner)
	addOutputFlag(cmd)

	return cmd
}

func parseBalances(raw []string) ([]app.GenesisBalance, error) {
	balances := make([]app.GenesisBalance, 0, len(raw))
	for _, entry := range raw {
		address, amount, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid balance %q, expected address=amount", entry)
		}
		value, err := cast.ToInt64E(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid balance amount %q: %w", amount, err)
		}
		balances = append(balances, app.GenesisBalance{Address: address, Amount: value})
	}
	return balances, nil
}
