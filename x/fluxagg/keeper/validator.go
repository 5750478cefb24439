package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetValidator returns the address of the answer validator, empty when unset.
func (k Keeper) GetValidator(ctx context.Context) string {
	var addr string
	k.mustGetValue(ctx, ValidatorKey, &addr)
	return addr
}

// SetValidator points the aggregator at a new answer validator; an empty
// address disables notifications. Owner only.
func (k Keeper) SetValidator(ctx context.Context, caller, validator sdk.AccAddress) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	return k.atomically(ctx, func(ctx sdk.Context) error {
		previous := k.GetValidator(ctx)
		current := ""
		if len(validator) > 0 {
			current = validator.String()
		}
		if previous == current {
			return nil
		}
		if err := k.setValue(ctx, ValidatorKey, current); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeValidatorUpdated,
				sdk.NewAttribute(types.AttributeKeyPrevious, previous),
				sdk.NewAttribute(types.AttributeKeyCurrent, current),
			),
		)
		return nil
	})
}

// notifyValidator hands the new answer and the previous round's answer to
// the configured validator. Its writes are kept only if it succeeds and
// nothing it does, panics included, reaches the submitter.
func (k Keeper) notifyValidator(ctx sdk.Context, roundID uint32, newAnswer math.Int) {
	addr := k.GetValidator(ctx)
	if addr == "" {
		return
	}
	logger := k.Logger(ctx)
	v, ok := k.validators[addr]
	if !ok {
		logger.Error("answer validator not registered", "validator", addr)
		k.metrics.ValidatorFailures.Inc()
		return
	}

	prev := k.GetRound(ctx, roundID-1)
	cacheCtx, write := ctx.CacheContext()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("answer validator panicked: %v", r)
			}
		}()
		return v.Validate(cacheCtx, prev.AnsweredInRound, prev.Answer, roundID, newAnswer)
	}()
	if err != nil {
		logger.Error("answer validation failed", "validator", addr, "round_id", roundID, "error", err)
		k.metrics.ValidatorFailures.Inc()
		return
	}
	write()
}
