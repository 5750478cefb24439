package keeper

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// RegisterInvariants registers all fluxagg module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "funds-solvency",
		FundsSolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "oracle-index",
		OracleIndexInvariant(k))
	ir.RegisterRoute(types.ModuleName, "round-answers",
		RoundAnswerInvariant(k))
}

// AllInvariants runs all invariants of the fluxagg module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := FundsSolvencyInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = OracleIndexInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return RoundAnswerInvariant(k)(ctx)
	}
}

// FundsSolvencyInvariant checks that the recorded funds are backed by the
// ledger balance and that allocated funds match what oracles can withdraw.
func FundsSolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		funds := k.GetFunds(ctx)
		balance := k.LedgerBalance(ctx)
		if funds.Available.Add(funds.Allocated).GT(balance) {
			issues = append(issues, fmt.Sprintf(
				"available %s + allocated %s exceeds ledger balance %s",
				funds.Available, funds.Allocated, balance,
			))
		}

		withdrawable := math.ZeroInt()
		k.IterateOracleStatuses(ctx, func(_ sdk.AccAddress, status types.OracleStatus) bool {
			withdrawable = withdrawable.Add(status.Withdrawable)
			return false
		})
		if !withdrawable.Equal(funds.Allocated) {
			issues = append(issues, fmt.Sprintf(
				"allocated %s does not match total withdrawable %s",
				funds.Allocated, withdrawable,
			))
		}

		return formatInvariant("funds-solvency", issues)
	}
}

// OracleIndexInvariant checks that the oracle list and the oracle indexes
// describe the same enabled set.
func OracleIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		count := k.OracleCount(ctx)
		store := k.getStore(ctx)
		for i := uint32(0); i < count; i++ {
			bz := store.Get(GetOracleListKey(uint16(i)))
			if bz == nil {
				issues = append(issues, fmt.Sprintf("oracle list slot %d is empty", i))
				continue
			}
			oracle := sdk.AccAddress(bz)
			status, _ := k.GetOracleStatus(ctx, oracle)
			if !status.Enabled() {
				issues = append(issues, fmt.Sprintf("listed oracle %s is not enabled", oracle))
			}
			if uint32(status.Index) != i {
				issues = append(issues, fmt.Sprintf("oracle %s has index %d but sits at %d", oracle, status.Index, i))
			}
		}

		var enabled uint32
		k.IterateOracleStatuses(ctx, func(_ sdk.AccAddress, status types.OracleStatus) bool {
			if status.Enabled() {
				enabled++
			}
			return false
		})
		if enabled != count {
			issues = append(issues, fmt.Sprintf("%d enabled oracles but list holds %d", enabled, count))
		}

		return formatInvariant("oracle-index", issues)
	}
}

// RoundAnswerInvariant checks that no round claims an answer from a later
// round and that the round pointers are ordered.
func RoundAnswerInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		counters := k.getCounters(ctx)
		if counters.LatestRoundID > counters.ReportingRoundID {
			issues = append(issues, fmt.Sprintf(
				"latest round %d is ahead of reporting round %d",
				counters.LatestRoundID, counters.ReportingRoundID,
			))
		}
		if counters.LatestRoundID > 0 {
			if latest := k.GetRound(ctx, counters.LatestRoundID); latest.AnsweredInRound != counters.LatestRoundID {
				issues = append(issues, fmt.Sprintf(
					"latest round %d was answered in round %d",
					counters.LatestRoundID, latest.AnsweredInRound,
				))
			}
		}

		k.IterateRounds(ctx, func(roundID uint32, round types.Round) bool {
			if round.AnsweredInRound > roundID {
				issues = append(issues, fmt.Sprintf("round %d answered in later round %d", roundID, round.AnsweredInRound))
			}
			if roundID > counters.ReportingRoundID {
				issues = append(issues, fmt.Sprintf("round %d is beyond reporting round %d", roundID, counters.ReportingRoundID))
			}
			return false
		})

		return formatInvariant("round-answers", issues)
	}
}

func formatInvariant(route string, issues []string) (string, bool) {
	broken := len(issues) > 0
	msg := "all checks passed"
	if broken {
		msg = strings.Join(issues, "\n")
	}
	return sdk.FormatInvariant(types.ModuleName, route, msg), broken
}
