package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetRoundData returns the round's answer view. Rounds report ErrNoData while
// AnsweredInRound is 0. A timed-out round reports the previous answer along
// with the round it was answered in.
func (k Keeper) GetRoundData(ctx context.Context, roundID uint32) (types.RoundData, error) {
	r := k.GetRound(ctx, roundID)
	if r.AnsweredInRound == 0 {
		return types.RoundData{}, types.ErrNoData
	}
	return types.RoundData{
		RoundID:         roundID,
		Answer:          r.Answer,
		StartedAt:       r.StartedAt,
		UpdatedAt:       r.UpdatedAt,
		AnsweredInRound: r.AnsweredInRound,
	}, nil
}

// LatestRoundData returns the answer view of the latest answered round.
func (k Keeper) LatestRoundData(ctx context.Context) (types.RoundData, error) {
	return k.GetRoundData(ctx, k.LatestRoundID(ctx))
}

// LatestRound returns the id of the latest answered round.
func (k Keeper) LatestRound(ctx context.Context) uint32 {
	return k.LatestRoundID(ctx)
}

// LatestAnswer returns the answer of the latest answered round.
func (k Keeper) LatestAnswer(ctx context.Context) (math.Int, error) {
	data, err := k.LatestRoundData(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return data.Answer, nil
}

// LatestTimestamp returns when the latest answer was computed.
func (k Keeper) LatestTimestamp(ctx context.Context) (uint64, error) {
	data, err := k.LatestRoundData(ctx)
	if err != nil {
		return 0, err
	}
	return data.UpdatedAt, nil
}

// GetAnswer returns the round's answer, zero for unknown rounds.
func (k Keeper) GetAnswer(ctx context.Context, roundID uint32) math.Int {
	return k.GetRound(ctx, roundID).Answer
}

// GetTimestamp returns when the round's answer was last updated, zero for unknown rounds.
func (k Keeper) GetTimestamp(ctx context.Context, roundID uint32) uint64 {
	return k.GetRound(ctx, roundID).UpdatedAt
}

// OracleRoundState tells an oracle whether it can submit to queriedRoundID.
// A zero queriedRoundID asks for the round the oracle should report on now.
func (k Keeper) OracleRoundState(ctx context.Context, oracle sdk.AccAddress, queriedRoundID uint32) types.OracleRoundState {
	if queriedRoundID > 0 {
		round := k.GetRound(ctx, queriedRoundID)
		details, _ := k.GetRoundDetails(ctx, queriedRoundID)
		payment := k.GetRoundConfig(ctx).PaymentAmount
		if round.StartedAt > 0 {
			payment = details.PaymentAmount
		}
		return k.newOracleRoundState(ctx, oracle, queriedRoundID, k.eligibleForSpecificRound(ctx, oracle, queriedRoundID), payment)
	}
	return k.oracleRoundStateSuggestRound(ctx, oracle)
}

func (k Keeper) eligibleForSpecificRound(ctx context.Context, oracle sdk.AccAddress, roundID uint32) bool {
	if k.validateOracleRound(ctx, oracle, roundID) != types.Eligible {
		return false
	}
	if k.GetRound(ctx, roundID).StartedAt > 0 {
		return k.acceptingSubmissions(ctx, roundID)
	}
	return k.delayed(ctx, oracle, roundID)
}

func (k Keeper) oracleRoundStateSuggestRound(ctx context.Context, oracle sdk.AccAddress) types.OracleRoundState {
	status, _ := k.GetOracleStatus(ctx, oracle)
	rr := k.ReportingRoundID(ctx)

	// Keep oracles on an open round they have not reported on instead of
	// pushing them to the next one.
	shouldSupersede := status.LastReportedRound == rr || !k.acceptingSubmissions(ctx, rr)

	var (
		roundID  uint32
		eligible bool
		payment  math.Int
	)
	if k.supersedable(ctx, rr) && shouldSupersede {
		roundID = rr + 1
		payment = k.GetRoundConfig(ctx).PaymentAmount
		eligible = k.delayed(ctx, oracle, roundID)
	} else {
		roundID = rr
		details, _ := k.GetRoundDetails(ctx, roundID)
		payment = details.PaymentAmount
		eligible = k.acceptingSubmissions(ctx, roundID)
	}
	if k.validateOracleRound(ctx, oracle, roundID) != types.Eligible {
		eligible = false
	}
	return k.newOracleRoundState(ctx, oracle, roundID, eligible, payment)
}

func (k Keeper) newOracleRoundState(ctx context.Context, oracle sdk.AccAddress, roundID uint32, eligible bool, payment math.Int) types.OracleRoundState {
	status, _ := k.GetOracleStatus(ctx, oracle)
	details, _ := k.GetRoundDetails(ctx, roundID)
	return types.OracleRoundState{
		EligibleToSubmit: eligible,
		RoundID:          roundID,
		LatestSubmission: status.LatestSubmission,
		StartedAt:        k.GetRound(ctx, roundID).StartedAt,
		Timeout:          details.Timeout,
		AvailableFunds:   k.AvailableFunds(ctx),
		OracleCount:      k.OracleCount(ctx),
		PaymentAmount:    payment,
	}
}
