package cmd

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// FundCmd mints coins of the aggregator denom into an account of a
// development ledger.
func FundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund [address] [amount]",
		Short: "Mint coins into an account of a development ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress("account", args[0])
			if err != nil {
				return err
			}
			amount, err := cast.ToInt64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.connectEvents(); err != nil {
				return fmt.Errorf("failed to connect event publisher: %w", err)
			}

			res, err := n.app.FundAccount(cmd.Context(), addr, amount)
			if err != nil {
				return err
			}
			if err := n.sink.Publish(cmd.Context(), "fund", res.Height, res.Time, res.Events); err != nil {
				n.logger.Error("events were committed but not published", "operation", "fund", "error", err)
			}

			return printOutput(cmd, txResponse{
				Operation: "fund",
				Height:    res.Height,
				Time:      res.Time,
				Events:    res.Events,
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}
