package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/app"
)

const flagOutputDocument = "output-document"

// ExportCmd dumps the current ledger state as a genesis document.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export state to JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			genesis, err := n.app.ExportGenesis(cmd.Context())
			if err != nil {
				return err
			}
			bz, err := app.MarshalGenesis(genesis)
			if err != nil {
				return err
			}

			outputDocument, _ := cmd.Flags().GetString(flagOutputDocument)
			if outputDocument == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
				return err
			}
			if err := os.WriteFile(outputDocument, bz, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputDocument, err)
			}
			n.logger.Info("exported genesis", "file", outputDocument, "height", n.app.LastBlockHeight())
			return nil
		},
	}

	cmd.Flags().String(flagOutputDocument, "", "Exported state is written to the given file instead of STDOUT")
	return cmd
}
