package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// getCounters returns the reporting and latest round ids.
func (k Keeper) getCounters(ctx context.Context) types.Counters {
	var c types.Counters
	k.mustGetValue(ctx, CountersKey, &c)
	return c
}

func (k Keeper) setCounters(ctx context.Context, c types.Counters) error {
	return k.setValue(ctx, CountersKey, c)
}

// ReportingRoundID returns the id of the most recently started round.
func (k Keeper) ReportingRoundID(ctx context.Context) uint32 {
	return k.getCounters(ctx).ReportingRoundID
}

// LatestRoundID returns the id of the most recently answered round.
func (k Keeper) LatestRoundID(ctx context.Context) uint32 {
	return k.getCounters(ctx).LatestRoundID
}

// GetRound returns the round, or an empty round if it was never written.
func (k Keeper) GetRound(ctx context.Context, roundID uint32) types.Round {
	round := types.NewRound()
	if k.mustGetValue(ctx, GetRoundKey(roundID), &round) && round.Answer.IsNil() {
		round.Answer = math.ZeroInt()
	}
	return round
}

func (k Keeper) setRound(ctx context.Context, roundID uint32, round types.Round) error {
	return k.setValue(ctx, GetRoundKey(roundID), round)
}

// GetRoundDetails returns the details of an open round.
func (k Keeper) GetRoundDetails(ctx context.Context, roundID uint32) (types.RoundDetails, bool) {
	var details types.RoundDetails
	if !k.mustGetValue(ctx, GetRoundDetailsKey(roundID), &details) {
		return types.RoundDetails{PaymentAmount: math.ZeroInt()}, false
	}
	if details.PaymentAmount.IsNil() {
		details.PaymentAmount = math.ZeroInt()
	}
	return details, true
}

func (k Keeper) setRoundDetails(ctx context.Context, roundID uint32, details types.RoundDetails) error {
	return k.setValue(ctx, GetRoundDetailsKey(roundID), details)
}

func (k Keeper) deleteRoundDetails(ctx context.Context, roundID uint32) {
	k.getStore(ctx).Delete(GetRoundDetailsKey(roundID))
}

// IterateRounds calls cb for every stored round in id order until cb returns true.
func (k Keeper) IterateRounds(ctx context.Context, cb func(roundID uint32, round types.Round) bool) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), RoundKeyPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		round := types.NewRound()
		if err := unmarshalValue(iter.Value(), &round); err != nil {
			panic(err)
		}
		if cb(roundIDFromKey(iter.Key()), round) {
			return
		}
	}
}

// IterateRoundDetails calls cb for every open round in id order until cb returns true.
func (k Keeper) IterateRoundDetails(ctx context.Context, cb func(roundID uint32, details types.RoundDetails) bool) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), RoundDetailsKeyPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		var details types.RoundDetails
		if err := unmarshalValue(iter.Value(), &details); err != nil {
			panic(err)
		}
		if cb(roundIDFromKey(iter.Key()), details) {
			return
		}
	}
}

// timedOut reports whether the round started, has a timeout and outlived it.
// Rounds whose details were reclaimed never time out.
func (k Keeper) timedOut(ctx context.Context, roundID uint32) bool {
	startedAt := k.GetRound(ctx, roundID).StartedAt
	details, _ := k.GetRoundDetails(ctx, roundID)
	now := blockTime(ctx)
	return startedAt > 0 && details.Timeout > 0 && now > startedAt && now-startedAt > details.Timeout
}

// supersedable reports whether the round is answered or timed out, which is
// the condition for opening the round after it.
func (k Keeper) supersedable(ctx context.Context, roundID uint32) bool {
	return k.GetRound(ctx, roundID).UpdatedAt > 0 || k.timedOut(ctx, roundID)
}

// acceptingSubmissions reports whether the round still has live details.
func (k Keeper) acceptingSubmissions(ctx context.Context, roundID uint32) bool {
	details, found := k.GetRoundDetails(ctx, roundID)
	return found && details.MaxSubmissions != 0
}

// isNextRound reports whether roundID directly follows the reporting round.
func (k Keeper) isNextRound(ctx context.Context, roundID uint32) bool {
	return uint64(roundID) == uint64(k.ReportingRoundID(ctx))+1
}

// updateTimedOutRoundInfo carries the previous answer forward into a round
// that timed out without reaching quorum, and reclaims its details. A round
// that reached quorum before timing out keeps its own answer.
func (k Keeper) updateTimedOutRoundInfo(ctx sdk.Context, roundID uint32) error {
	if roundID == 0 || !k.timedOut(ctx, roundID) {
		return nil
	}

	round := k.GetRound(ctx, roundID)
	if round.AnsweredInRound == roundID {
		k.deleteRoundDetails(ctx, roundID)
		return nil
	}

	prev := k.GetRound(ctx, roundID-1)
	round.Answer = prev.Answer
	round.AnsweredInRound = prev.AnsweredInRound
	round.UpdatedAt = blockTime(ctx)
	if err := k.setRound(ctx, roundID, round); err != nil {
		return err
	}
	k.deleteRoundDetails(ctx, roundID)

	k.metrics.RoundsTimedOut.Inc()
	k.Logger(ctx).Info("round timed out", "round_id", roundID, "answered_in_round", prev.AnsweredInRound)
	return nil
}

// initializeNewRound opens roundID with the current round configuration.
func (k Keeper) initializeNewRound(ctx sdk.Context, roundID uint32, startedBy sdk.AccAddress) error {
	if err := k.updateTimedOutRoundInfo(ctx, roundID-1); err != nil {
		return err
	}

	counters := k.getCounters(ctx)
	counters.ReportingRoundID = roundID
	if err := k.setCounters(ctx, counters); err != nil {
		return err
	}

	cfg := k.GetRoundConfig(ctx)
	details := types.RoundDetails{
		Submissions:    []math.Int{},
		MaxSubmissions: cfg.MaxSubmissionCount,
		MinSubmissions: cfg.MinSubmissionCount,
		Timeout:        cfg.Timeout,
		PaymentAmount:  cfg.PaymentAmount,
	}
	if err := k.setRoundDetails(ctx, roundID, details); err != nil {
		return err
	}

	now := blockTime(ctx)
	round := k.GetRound(ctx, roundID)
	round.StartedAt = now
	if err := k.setRound(ctx, roundID, round); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeNewRound,
			sdk.NewAttribute(types.AttributeKeyRoundID, formatRoundID(roundID)),
			sdk.NewAttribute(types.AttributeKeyStartedBy, startedBy.String()),
			sdk.NewAttribute(types.AttributeKeyStartedAt, formatUint(now)),
		),
	)
	k.metrics.ReportingRound.Set(float64(roundID))
	k.Logger(ctx).Info("new round", "round_id", roundID, "started_by", startedBy.String())
	return nil
}

// oracleInitializeNewRound opens roundID on behalf of a submitting oracle
// when it is the next round and the oracle is outside its restart delay.
// Otherwise it does nothing.
func (k Keeper) oracleInitializeNewRound(ctx sdk.Context, roundID uint32, oracle sdk.AccAddress) error {
	if !k.isNextRound(ctx, roundID) {
		return nil
	}

	status, _ := k.GetOracleStatus(ctx, oracle)
	restartDelay := k.GetRoundConfig(ctx).RestartDelay
	lastStarted := status.LastStartedRound
	if lastStarted != 0 && uint64(roundID) <= uint64(lastStarted)+uint64(restartDelay) {
		return nil
	}

	if err := k.initializeNewRound(ctx, roundID, oracle); err != nil {
		return err
	}

	status, _ = k.GetOracleStatus(ctx, oracle)
	status.LastStartedRound = roundID
	if err := k.setOracleStatus(ctx, oracle, status); err != nil {
		return err
	}
	k.metrics.RoundsStarted.WithLabelValues("oracle").Inc()
	return nil
}

// delayed reports whether the oracle's restart delay allows it to open roundID.
func (k Keeper) delayed(ctx context.Context, oracle sdk.AccAddress, roundID uint32) bool {
	status, _ := k.GetOracleStatus(ctx, oracle)
	lastStarted := status.LastStartedRound
	restartDelay := k.GetRoundConfig(ctx).RestartDelay
	return lastStarted == 0 || uint64(roundID) > uint64(lastStarted)+uint64(restartDelay)
}

// UpdateFutureRounds changes the payment, quorum, restart delay and timeout
// of rounds that have not started yet. Owner only.
func (k Keeper) UpdateFutureRounds(
	ctx context.Context,
	caller sdk.AccAddress,
	payment math.Int,
	minSubmissions, maxSubmissions, restartDelay uint32,
	timeout uint64,
) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	cfg := types.RoundConfig{
		PaymentAmount:      payment,
		MinSubmissionCount: minSubmissions,
		MaxSubmissionCount: maxSubmissions,
		RestartDelay:       restartDelay,
		Timeout:            timeout,
	}
	return k.atomically(ctx, func(ctx sdk.Context) error {
		return k.updateFutureRounds(ctx, cfg)
	})
}

func (k Keeper) updateFutureRounds(ctx sdk.Context, cfg types.RoundConfig) error {
	if cfg.PaymentAmount.IsNil() || cfg.PaymentAmount.IsNegative() {
		return types.ErrInvalidPaymentAmount
	}

	oracleNum := k.OracleCount(ctx)
	if cfg.MaxSubmissionCount < cfg.MinSubmissionCount {
		return types.ErrMaxBelowMin
	}
	if oracleNum < cfg.MaxSubmissionCount {
		return types.ErrMaxExceedsTotal
	}
	if oracleNum != 0 && oracleNum <= cfg.RestartDelay {
		return types.ErrDelayExceedsTotal
	}
	reserve, err := k.RequiredReserve(ctx, cfg.PaymentAmount)
	if err != nil {
		return err
	}
	if k.GetFunds(ctx).Available.LT(reserve) {
		return types.ErrInsufficientPayment
	}
	if oracleNum > 0 && cfg.MinSubmissionCount == 0 {
		return types.ErrMinSubmissionsZero
	}

	if err := k.setRoundConfig(ctx, cfg); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRoundDetailsUpdated,
			sdk.NewAttribute(types.AttributeKeyPaymentAmount, cfg.PaymentAmount.String()),
			sdk.NewAttribute(types.AttributeKeyMinSubmissions, formatUint(uint64(cfg.MinSubmissionCount))),
			sdk.NewAttribute(types.AttributeKeyMaxSubmissions, formatUint(uint64(cfg.MaxSubmissionCount))),
			sdk.NewAttribute(types.AttributeKeyRestartDelay, formatUint(uint64(cfg.RestartDelay))),
			sdk.NewAttribute(types.AttributeKeyTimeout, formatUint(cfg.Timeout)),
		),
	)
	return nil
}

func formatRoundID(roundID uint32) string {
	return strconv.FormatUint(uint64(roundID), 10)
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
