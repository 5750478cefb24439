package cmd

import (
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
)

const (
	flagRemove = "remove"
	flagAdd    = "add"
	flagAdmins = "admins"
	flagMin    = "min"
	flagMax    = "max"
	flagDelay  = "delay"
)

// txResponse is printed after a committed operation.
type txResponse struct {
	Operation string      `json:"operation"`
	Height    int64       `json:"height"`
	Time      time.Time   `json:"time"`
	Events    []sdk.Event `json:"events"`
	Data      interface{} `json:"data,omitempty"`
}

// TxCmd returns the parent of every state changing command.
func TxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transactions subcommands",
		SuggestionsMinimumDistance: 2,
	}

	cmd.PersistentFlags().String(flagFrom, "", "Bech32 address of the caller")
	addOutputFlag(cmd)

	cmd.AddCommand(
		CmdSubmit(),
		CmdChangeOracles(),
		CmdUpdateFutureRounds(),
		CmdDeposit(),
		CmdWithdrawPayment(),
		CmdWithdrawFunds(),
		CmdUpdateAvailableFunds(),
		CmdTransferAdmin(),
		CmdAcceptAdmin(),
		CmdSetValidator(),
		CmdSetRequesterPermissions(),
		CmdRequestNewRound(),
	)

	return cmd
}

// runTx opens the ledger and commits fn on behalf of the --from caller.
// fn may return data to print alongside the committed events.
func runTx(cmd *cobra.Command, operation string, fn func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error)) error {
	rawFrom, _ := cmd.Flags().GetString(flagFrom)
	from, err := parseAddress("--"+flagFrom, rawFrom)
	if err != nil {
		return err
	}

	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.connectEvents(); err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}

	var data interface{}
	res, err := n.exec(cmd.Context(), operation, func(ctx sdk.Context) error {
		data, err = fn(ctx, n.app.FluxaggKeeper, from)
		return err
	})
	if err != nil {
		return err
	}

	return printOutput(cmd, txResponse{
		Operation: operation,
		Height:    res.Height,
		Time:      res.Time,
		Events:    res.Events,
		Data:      data,
	})
}

func parseAddress(name, raw string) (sdk.AccAddress, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s address is required", name)
	}
	addr, err := sdk.AccAddressFromBech32(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s address %q: %w", name, raw, err)
	}
	return addr, nil
}

func parseAddressList(name string, raw []string) ([]sdk.AccAddress, error) {
	addrs := make([]sdk.AccAddress, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addr, err := parseAddress(name, entry)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func parseUint32(name, raw string) (uint32, error) {
	v, err := cast.ToUint32E(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

func parseUint64(name, raw string) (uint64, error) {
	v, err := cast.ToUint64E(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

func parseInt(name, raw string) (math.Int, error) {
	v, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func parseAmount(name, raw string) (math.Int, error) {
	v, err := parseInt(name, raw)
	if err != nil {
		return math.Int{}, err
	}
	if v.IsNegative() {
		return math.Int{}, fmt.Errorf("%s must not be negative", name)
	}
	return v, nil
}

// CmdSubmit reports a value for a round.
func CmdSubmit() *cobra.Command {
	return &cobra.Command{
		Use:   "submit [round-id] [value]",
		Short: "Submit an oracle value for a round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := parseUint32("round id", args[0])
			if err != nil {
				return err
			}
			value, err := parseInt("value", args[1])
			if err != nil {
				return err
			}

			return runTx(cmd, "submit", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.Submit(ctx, from, roundID, value)
			})
		},
	}
}

// CmdChangeOracles removes and adds oracles and sets the round quorum.
func CmdChangeOracles() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-oracles",
		Short: "Remove and add oracles and reconfigure future rounds (owner only)",
		Example: fmt.Sprintf(`$ fluxd tx change-oracles --from <owner> --%s <a>,<b> --%s <admin-a>,<admin-b> --%s 1 --%s 2 --%s 0`,
			flagAdd, flagAdmins, flagMin, flagMax, flagDelay),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawRemoved, _ := cmd.Flags().GetStringSlice(flagRemove)
			rawAdded, _ := cmd.Flags().GetStringSlice(flagAdd)
			rawAdmins, _ := cmd.Flags().GetStringSlice(flagAdmins)

			removed, err := parseAddressList("removed oracle", rawRemoved)
			if err != nil {
				return err
			}
			added, err := parseAddressList("added oracle", rawAdded)
			if err != nil {
				return err
			}
			admins, err := parseAddressList("admin", rawAdmins)
			if err != nil {
				return err
			}

			minSubmissions, _ := cmd.Flags().GetUint32(flagMin)
			maxSubmissions, _ := cmd.Flags().GetUint32(flagMax)
			delay, _ := cmd.Flags().GetUint32(flagDelay)

			return runTx(cmd, "change_oracles", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.ChangeOracles(ctx, from, removed, added, admins, minSubmissions, maxSubmissions, delay)
			})
		},
	}

	cmd.Flags().StringSlice(flagRemove, nil, "Oracles to remove")
	cmd.Flags().StringSlice(flagAdd, nil, "Oracles to add")
	cmd.Flags().StringSlice(flagAdmins, nil, "Admins of the added oracles, in the same order")
	cmd.Flags().Uint32(flagMin, 0, "Minimum submissions per round")
	cmd.Flags().Uint32(flagMax, 0, "Maximum submissions per round")
	cmd.Flags().Uint32(flagDelay, 0, "Rounds an oracle must wait before starting another round")

	return cmd
}

// CmdUpdateFutureRounds changes the configuration of rounds not started yet.
func CmdUpdateFutureRounds() *cobra.Command {
	return &cobra.Command{
		Use:   "update-future-rounds [payment] [min] [max] [delay] [timeout]",
		Short: "Change payment, quorum, restart delay and timeout of future rounds (owner only)",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			payment, err := parseAmount("payment", args[0])
			if err != nil {
				return err
			}
			minSubmissions, err := parseUint32("min submissions", args[1])
			if err != nil {
				return err
			}
			maxSubmissions, err := parseUint32("max submissions", args[2])
			if err != nil {
				return err
			}
			delay, err := parseUint32("restart delay", args[3])
			if err != nil {
				return err
			}
			timeout, err := parseUint64("timeout", args[4])
			if err != nil {
				return err
			}

			return runTx(cmd, "update_future_rounds", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.UpdateFutureRounds(ctx, from, payment, minSubmissions, maxSubmissions, delay, timeout)
			})
		},
	}
}

// CmdDeposit moves funds from the caller into the aggregator.
func CmdDeposit() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit [amount]",
		Short: "Deposit funds for oracle payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, "deposit", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.Deposit(ctx, from, amount)
			})
		},
	}
}

// CmdWithdrawPayment pays out an oracle's withdrawable balance.
func CmdWithdrawPayment() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw-payment [oracle] [recipient] [amount]",
		Short: "Withdraw an oracle's earned payment (oracle admin only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle, err := parseAddress("oracle", args[0])
			if err != nil {
				return err
			}
			recipient, err := parseAddress("recipient", args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return err
			}
			return runTx(cmd, "withdraw_payment", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.WithdrawPayment(ctx, from, oracle, recipient, amount)
			})
		},
	}
}

// CmdWithdrawFunds withdraws unallocated funds above the reserve.
func CmdWithdrawFunds() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw-funds [recipient] [amount]",
		Short: "Withdraw available funds above the payment reserve (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := parseAddress("recipient", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			return runTx(cmd, "withdraw_funds", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.WithdrawFunds(ctx, from, recipient, amount)
			})
		},
	}
}

// CmdUpdateAvailableFunds recomputes the available funds from the ledger balance.
func CmdUpdateAvailableFunds() *cobra.Command {
	return &cobra.Command{
		Use:   "update-available-funds",
		Short: "Recompute available funds from the ledger balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, "update_available_funds", func(ctx sdk.Context, k *keeper.Keeper, _ sdk.AccAddress) (interface{}, error) {
				return nil, k.UpdateAvailableFunds(ctx)
			})
		},
	}
}

// CmdTransferAdmin proposes a new admin for an oracle.
func CmdTransferAdmin() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-admin [oracle] [new-admin]",
		Short: "Propose a new admin for an oracle (current admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle, err := parseAddress("oracle", args[0])
			if err != nil {
				return err
			}
			newAdmin, err := parseAddress("new admin", args[1])
			if err != nil {
				return err
			}
			return runTx(cmd, "transfer_admin", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.TransferAdmin(ctx, from, oracle, newAdmin)
			})
		},
	}
}

// CmdAcceptAdmin completes an admin transfer.
func CmdAcceptAdmin() *cobra.Command {
	return &cobra.Command{
		Use:   "accept-admin [oracle]",
		Short: "Accept the admin role of an oracle (pending admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle, err := parseAddress("oracle", args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, "accept_admin", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.AcceptAdmin(ctx, from, oracle)
			})
		},
	}
}

// CmdSetValidator changes the answer validator.
func CmdSetValidator() *cobra.Command {
	return &cobra.Command{
		Use:   "set-validator [address]",
		Short: "Set the answer validator, or clear it without an address (owner only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var validator sdk.AccAddress
			if len(args) == 1 {
				addr, err := parseAddress("validator", args[0])
				if err != nil {
					return err
				}
				validator = addr
			}
			return runTx(cmd, "set_validator", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.SetValidator(ctx, from, validator)
			})
		},
	}
}

// CmdSetRequesterPermissions grants or revokes the right to request rounds.
func CmdSetRequesterPermissions() *cobra.Command {
	return &cobra.Command{
		Use:   "set-requester-permissions [requester] [authorized] [delay]",
		Short: "Allow or deny an account to request new rounds (owner only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, err := parseAddress("requester", args[0])
			if err != nil {
				return err
			}
			authorized, err := cast.ToBoolE(args[1])
			if err != nil {
				return fmt.Errorf("invalid authorized flag %q: %w", args[1], err)
			}
			delay, err := parseUint32("delay", args[2])
			if err != nil {
				return err
			}
			return runTx(cmd, "set_requester_permissions", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				return nil, k.SetRequesterPermissions(ctx, from, requester, authorized, delay)
			})
		},
	}
}

// CmdRequestNewRound starts a new round on behalf of an authorized requester.
func CmdRequestNewRound() *cobra.Command {
	return &cobra.Command{
		Use:   "request-new-round",
		Short: "Start a new round (authorized requesters only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, "request_new_round", func(ctx sdk.Context, k *keeper.Keeper, from sdk.AccAddress) (interface{}, error) {
				roundID, err := k.RequestNewRound(ctx, from)
				if err != nil {
					return nil, err
				}
				return map[string]uint32{"round_id": roundID}, nil
			})
		},
	}
}
