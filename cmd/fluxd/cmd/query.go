package cmd

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

const flagReader = "reader"

// QueryCmd returns the parent of every read command.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
	}

	cmd.PersistentFlags().String(flagReader, "", "Bech32 address answer reads are made on behalf of")
	addOutputFlag(cmd)

	cmd.AddCommand(
		CmdQueryRound(),
		CmdQueryLatestRoundData(),
		CmdQueryLatestRound(),
		CmdQueryLatestAnswer(),
		CmdQueryLatestTimestamp(),
		CmdQueryAnswer(),
		CmdQueryTimestamp(),
		CmdQueryRoundDetails(),
		CmdQueryOracleRoundState(),
		CmdQueryOracles(),
		CmdQueryOracle(),
		CmdQueryWithdrawable(),
		CmdQueryRequester(),
		CmdQueryFunds(),
		CmdQueryConfig(),
		CmdQueryInvariants(),
	)

	return cmd
}

// runQuery opens the ledger and prints what fn reads from the latest state.
func runQuery(cmd *cobra.Command, fn func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error)) error {
	var reader sdk.AccAddress
	if raw, _ := cmd.Flags().GetString(flagReader); raw != "" {
		addr, err := parseAddress("--"+flagReader, raw)
		if err != nil {
			return err
		}
		reader = addr
	}

	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	querier := n.app.Querier()
	var out interface{}
	err = n.app.Query(cmd.Context(), func(ctx sdk.Context) error {
		var err error
		out, err = fn(ctx, querier, reader)
		return err
	})
	if err != nil {
		return err
	}
	return printOutput(cmd, out)
}

type answerResponse struct {
	RoundID uint32   `json:"round_id,omitempty"`
	Answer  math.Int `json:"answer"`
}

type timestampResponse struct {
	RoundID   uint32 `json:"round_id,omitempty"`
	Timestamp uint64 `json:"timestamp"`
}

func roundArgCmd(use, short string, fn func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress, roundID uint32) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [round-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := parseUint32("round id", args[0])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error) {
				return fn(ctx, q, reader, roundID)
			})
		},
	}
}

func addressArgCmd(use, short string, fn func(ctx sdk.Context, q keeper.Querier, addr sdk.AccAddress) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [address]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress) (interface{}, error) {
				return fn(ctx, q, addr)
			})
		},
	}
}

func noArgCmd(use, short string, fn func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, fn)
		},
	}
}

// CmdQueryRound shows the answer view of a round.
func CmdQueryRound() *cobra.Command {
	return roundArgCmd("round", "Query the answer of a round",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress, roundID uint32) (interface{}, error) {
			return q.RoundData(ctx, reader, roundID)
		})
}

// CmdQueryLatestRoundData shows the answer view of the latest answered round.
func CmdQueryLatestRoundData() *cobra.Command {
	return noArgCmd("latest-round-data", "Query the latest answered round",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error) {
			return q.LatestRoundDataFor(ctx, reader)
		})
}

// CmdQueryLatestRound shows the id of the latest answered round.
func CmdQueryLatestRound() *cobra.Command {
	return noArgCmd("latest-round", "Query the id of the latest answered round",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error) {
			roundID, err := q.LatestRoundFor(ctx, reader)
			if err != nil {
				return nil, err
			}
			return map[string]uint32{"round_id": roundID}, nil
		})
}

// CmdQueryLatestAnswer shows the latest answer.
func CmdQueryLatestAnswer() *cobra.Command {
	return noArgCmd("latest-answer", "Query the latest answer",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error) {
			answer, err := q.LatestAnswerFor(ctx, reader)
			if err != nil {
				return nil, err
			}
			return answerResponse{Answer: answer}, nil
		})
}

// CmdQueryLatestTimestamp shows when the latest answer was updated.
func CmdQueryLatestTimestamp() *cobra.Command {
	return noArgCmd("latest-timestamp", "Query when the latest answer was updated",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress) (interface{}, error) {
			if _, err := q.LatestRoundFor(ctx, reader); err != nil {
				return nil, err
			}
			ts, err := q.LatestTimestamp(ctx)
			if err != nil {
				return nil, err
			}
			return timestampResponse{Timestamp: ts}, nil
		})
}

// CmdQueryAnswer shows the answer of a round, zero when it has none.
func CmdQueryAnswer() *cobra.Command {
	return roundArgCmd("answer", "Query the answer of a round (zero when absent)",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress, roundID uint32) (interface{}, error) {
			answer, err := q.AnswerFor(ctx, reader, roundID)
			if err != nil {
				return nil, err
			}
			return answerResponse{RoundID: roundID, Answer: answer}, nil
		})
}

// CmdQueryTimestamp shows when a round was updated, zero when it has no answer.
func CmdQueryTimestamp() *cobra.Command {
	return roundArgCmd("timestamp", "Query when a round was updated (zero when absent)",
		func(ctx sdk.Context, q keeper.Querier, reader sdk.AccAddress, roundID uint32) (interface{}, error) {
			ts, err := q.TimestampFor(ctx, reader, roundID)
			if err != nil {
				return nil, err
			}
			return timestampResponse{RoundID: roundID, Timestamp: ts}, nil
		})
}

// CmdQueryRoundDetails shows the submissions and configuration of a round.
func CmdQueryRoundDetails() *cobra.Command {
	return roundArgCmd("round-details", "Query the submissions and configuration of an open round",
		func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress, roundID uint32) (interface{}, error) {
			details, found := q.GetRoundDetails(ctx, roundID)
			if !found {
				return nil, fmt.Errorf("round %d has no details", roundID)
			}
			return details, nil
		})
}

// CmdQueryOracleRoundState shows whether an oracle may submit to a round.
func CmdQueryOracleRoundState() *cobra.Command {
	return &cobra.Command{
		Use:   "oracle-round-state [oracle] [round-id]",
		Short: "Query what an oracle sees for a round; round 0 suggests one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle, err := parseAddress("oracle", args[0])
			if err != nil {
				return err
			}
			roundID, err := parseUint32("round id", args[1])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress) (interface{}, error) {
				return q.OracleRoundState(ctx, oracle, roundID), nil
			})
		},
	}
}

// CmdQueryOracles lists the enabled oracles.
func CmdQueryOracles() *cobra.Command {
	return noArgCmd("oracles", "Query the enabled oracles",
		func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress) (interface{}, error) {
			oracles := q.GetOracles(ctx)
			addrs := make([]string, 0, len(oracles))
			for _, oracle := range oracles {
				addrs = append(addrs, oracle.String())
			}
			return map[string]interface{}{"oracles": addrs, "count": q.OracleCount(ctx)}, nil
		})
}

// CmdQueryOracle shows the status of an oracle.
func CmdQueryOracle() *cobra.Command {
	return addressArgCmd("oracle", "Query the status of an oracle",
		func(ctx sdk.Context, q keeper.Querier, oracle sdk.AccAddress) (interface{}, error) {
			status, found := q.GetOracleStatus(ctx, oracle)
			if !found {
				return nil, fmt.Errorf("oracle %s not found", oracle)
			}
			return status, nil
		})
}

// CmdQueryWithdrawable shows the payment an oracle can withdraw.
func CmdQueryWithdrawable() *cobra.Command {
	return addressArgCmd("withdrawable", "Query the payment an oracle can withdraw",
		func(ctx sdk.Context, q keeper.Querier, oracle sdk.AccAddress) (interface{}, error) {
			return map[string]interface{}{
				"oracle":       oracle.String(),
				"admin":        q.GetAdmin(ctx, oracle),
				"withdrawable": q.WithdrawablePayment(ctx, oracle),
			}, nil
		})
}

// CmdQueryRequester shows the round request permissions of an account.
func CmdQueryRequester() *cobra.Command {
	return addressArgCmd("requester", "Query the round request permissions of an account",
		func(ctx sdk.Context, q keeper.Querier, requester sdk.AccAddress) (interface{}, error) {
			r, _ := q.GetRequester(ctx, requester)
			return r, nil
		})
}

// CmdQueryFunds shows the funds accounting.
func CmdQueryFunds() *cobra.Command {
	return noArgCmd("funds", "Query available, allocated and reserved funds",
		func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress) (interface{}, error) {
			funds := q.GetFunds(ctx)
			reserve, err := q.RequiredReserve(ctx, q.GetRoundConfig(ctx).PaymentAmount)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"available":        funds.Available,
				"allocated":        funds.Allocated,
				"ledger_balance":   q.LedgerBalance(ctx),
				"required_reserve": reserve,
			}, nil
		})
}

// CmdQueryConfig shows the feed parameters and the configuration of future rounds.
func CmdQueryConfig() *cobra.Command {
	return noArgCmd("config", "Query the feed parameters and future round configuration",
		func(ctx sdk.Context, q keeper.Querier, _ sdk.AccAddress) (interface{}, error) {
			return map[string]interface{}{
				"params":             q.GetParams(ctx),
				"round_config":       q.GetRoundConfig(ctx),
				"version":            q.Version(),
				"decimals":           q.Decimals(ctx),
				"description":        q.Description(ctx),
				"validator":          q.GetValidator(ctx),
				"owner":              q.GetAuthority(),
				"reporting_round_id": q.ReportingRoundID(ctx),
				"latest_round_id":    q.LatestRoundID(ctx),
			}, nil
		})
}

// CmdQueryInvariants runs the module invariants against the latest state.
func CmdQueryInvariants() *cobra.Command {
	return &cobra.Command{
		Use:   "invariants",
		Short: "Check the module invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.app.CheckInvariants(cmd.Context()); err != nil {
				return errors.Join(types.ErrStateCorruption, err)
			}
			return printOutput(cmd, map[string]string{"status": "ok"})
		},
	}
}
