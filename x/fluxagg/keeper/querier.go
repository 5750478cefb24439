package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// Querier is the read facade for consumers of the aggregator. Answer reads
// go through the access gate; a nil gate allows every reader.
type Querier struct {
	Keeper
	gate types.AccessGate
}

// NewQuerier returns a Querier over k guarded by gate.
func NewQuerier(k Keeper, gate types.AccessGate) Querier {
	return Querier{Keeper: k, gate: gate}
}

func (q Querier) checkAccess(ctx context.Context, reader sdk.AccAddress) error {
	if q.gate == nil || q.gate.IsAllowed(ctx, reader) {
		return nil
	}
	return types.ErrNoAccess
}

// RoundData returns the answer view of roundID for reader.
func (q Querier) RoundData(ctx context.Context, reader sdk.AccAddress, roundID uint32) (types.RoundData, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return types.RoundData{}, err
	}
	return q.GetRoundData(ctx, roundID)
}

// LatestRoundDataFor returns the latest answer view for reader.
func (q Querier) LatestRoundDataFor(ctx context.Context, reader sdk.AccAddress) (types.RoundData, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return types.RoundData{}, err
	}
	return q.LatestRoundData(ctx)
}

// AnswerFor returns the answer of roundID for reader.
func (q Querier) AnswerFor(ctx context.Context, reader sdk.AccAddress, roundID uint32) (math.Int, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return math.Int{}, err
	}
	return q.GetAnswer(ctx, roundID), nil
}

// TimestampFor returns the update time of roundID for reader.
func (q Querier) TimestampFor(ctx context.Context, reader sdk.AccAddress, roundID uint32) (uint64, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return 0, err
	}
	return q.GetTimestamp(ctx, roundID), nil
}

// LatestAnswerFor returns the latest answer for reader.
func (q Querier) LatestAnswerFor(ctx context.Context, reader sdk.AccAddress) (math.Int, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return math.Int{}, err
	}
	return q.LatestAnswer(ctx)
}

// LatestRoundFor returns the latest answered round id for reader.
func (q Querier) LatestRoundFor(ctx context.Context, reader sdk.AccAddress) (uint32, error) {
	if err := q.checkAccess(ctx, reader); err != nil {
		return 0, err
	}
	return q.LatestRound(ctx), nil
}
