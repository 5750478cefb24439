package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// Submit records the oracle's value for roundID, opening the round if it is
// the next one, answering it once quorum is reached and paying the oracle.
func (k Keeper) Submit(ctx context.Context, oracle sdk.AccAddress, roundID uint32, value math.Int) error {
	var (
		updated   bool
		newAnswer math.Int
	)
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		var err error
		updated, newAnswer, err = k.submit(ctx, oracle, roundID, value)
		return err
	})
	if err != nil {
		k.metrics.SubmissionRejections.WithLabelValues(rejectionLabel(err)).Inc()
		return err
	}
	k.metrics.Submissions.Inc()

	if updated {
		k.notifyValidator(sdk.UnwrapSDKContext(ctx), roundID, newAnswer)
	}
	return nil
}

func (k Keeper) submit(ctx sdk.Context, oracle sdk.AccAddress, roundID uint32, value math.Int) (bool, math.Int, error) {
	rejection := k.validateOracleRound(ctx, oracle, roundID)

	params := k.GetParams(ctx)
	if value.IsNil() || value.LT(params.MinSubmissionValue) {
		return false, math.Int{}, types.ErrValueBelowMin
	}
	if value.GT(params.MaxSubmissionValue) {
		return false, math.Int{}, types.ErrValueAboveMax
	}
	if err := rejection.Err(); err != nil {
		return false, math.Int{}, err
	}

	if err := k.oracleInitializeNewRound(ctx, roundID, oracle); err != nil {
		return false, math.Int{}, err
	}
	if err := k.recordSubmission(ctx, oracle, roundID, value); err != nil {
		return false, math.Int{}, err
	}
	updated, newAnswer, err := k.updateRoundAnswer(ctx, roundID)
	if err != nil {
		return false, math.Int{}, err
	}
	if err := k.payOracle(ctx, roundID, oracle); err != nil {
		return false, math.Int{}, err
	}

	details, _ := k.GetRoundDetails(ctx, roundID)
	if uint64(len(details.Submissions)) >= uint64(details.MaxSubmissions) {
		k.deleteRoundDetails(ctx, roundID)
	}
	return updated, newAnswer, nil
}

// validateOracleRound returns why the oracle may not report on roundID, or
// Eligible.
func (k Keeper) validateOracleRound(ctx context.Context, oracle sdk.AccAddress, roundID uint32) types.Rejection {
	status, _ := k.GetOracleStatus(ctx, oracle)
	rr := uint64(k.ReportingRoundID(ctx))
	id := uint64(roundID)

	switch {
	case status.StartingRound == 0:
		return types.RejectNotEnabled
	case status.StartingRound > roundID:
		return types.RejectNotYetEnabled
	case status.EndingRound < roundID:
		return types.RejectNoLongerAllowed
	case status.LastReportedRound >= roundID:
		return types.RejectReportedPrevious
	case id != rr && id != rr+1 && !k.previousAndCurrentUnanswered(ctx, id, rr):
		return types.RejectInvalidRound
	case roundID != 1 && !k.supersedable(ctx, roundID-1):
		return types.RejectPrevNotSupersedable
	}
	return types.Eligible
}

// previousAndCurrentUnanswered allows late submissions to the round before
// the reporting round while the reporting round has no answer.
func (k Keeper) previousAndCurrentUnanswered(ctx context.Context, roundID, rr uint64) bool {
	return roundID+1 == rr && k.GetRound(ctx, uint32(rr)).UpdatedAt == 0
}

func (k Keeper) recordSubmission(ctx sdk.Context, oracle sdk.AccAddress, roundID uint32, value math.Int) error {
	if !k.acceptingSubmissions(ctx, roundID) {
		return types.ErrNotAcceptingSubmission
	}

	details, _ := k.GetRoundDetails(ctx, roundID)
	details.Submissions = append(details.Submissions, value)
	if err := k.setRoundDetails(ctx, roundID, details); err != nil {
		return err
	}

	status, _ := k.GetOracleStatus(ctx, oracle)
	status.LastReportedRound = roundID
	status.LatestSubmission = value
	if err := k.setOracleStatus(ctx, oracle, status); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSubmissionReceived,
			sdk.NewAttribute(types.AttributeKeySubmission, value.String()),
			sdk.NewAttribute(types.AttributeKeyRoundID, formatRoundID(roundID)),
			sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
		),
	)
	k.Logger(ctx).Debug("submission received", "round_id", roundID, "oracle", oracle.String(), "value", value.String())
	return nil
}

// updateRoundAnswer recomputes the round answer once quorum is reached.
func (k Keeper) updateRoundAnswer(ctx sdk.Context, roundID uint32) (bool, math.Int, error) {
	details, _ := k.GetRoundDetails(ctx, roundID)
	if uint64(len(details.Submissions)) < uint64(details.MinSubmissions) {
		return false, math.Int{}, nil
	}

	newAnswer, err := Median(details.Submissions)
	if err != nil {
		return false, math.Int{}, err
	}

	now := blockTime(ctx)
	round := k.GetRound(ctx, roundID)
	round.Answer = newAnswer
	round.UpdatedAt = now
	round.AnsweredInRound = roundID
	if err := k.setRound(ctx, roundID, round); err != nil {
		return false, math.Int{}, err
	}

	counters := k.getCounters(ctx)
	counters.LatestRoundID = roundID
	if err := k.setCounters(ctx, counters); err != nil {
		return false, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAnswerUpdated,
			sdk.NewAttribute(types.AttributeKeyAnswer, newAnswer.String()),
			sdk.NewAttribute(types.AttributeKeyRoundID, formatRoundID(roundID)),
			sdk.NewAttribute(types.AttributeKeyUpdatedAt, formatUint(now)),
		),
	)
	k.metrics.AnswersUpdated.Inc()
	k.metrics.LatestAnswer.Set(toFloat(newAnswer))
	k.metrics.LatestRoundID.Set(float64(roundID))
	k.Logger(ctx).Info("answer updated", "round_id", roundID, "answer", newAnswer.String(),
		"submissions", len(details.Submissions))
	return true, newAnswer, nil
}

var rejectionLabels = []struct {
	err   error
	label string
}{
	{types.ErrValueBelowMin, "below_min"},
	{types.ErrValueAboveMax, "above_max"},
	{types.ErrNotEnabledOracle, "not_enabled"},
	{types.ErrNotYetEnabledOracle, "not_yet_enabled"},
	{types.ErrNoLongerAllowedOracle, "no_longer_allowed"},
	{types.ErrReportedPreviousRound, "reported_previous"},
	{types.ErrInvalidRoundToReport, "invalid_round"},
	{types.ErrPrevRoundNotSupersedable, "prev_not_supersedable"},
	{types.ErrNotAcceptingSubmission, "not_accepting"},
}

func rejectionLabel(err error) string {
	for _, l := range rejectionLabels {
		if errors.Is(err, l.err) {
			return l.label
		}
	}
	return "other"
}
