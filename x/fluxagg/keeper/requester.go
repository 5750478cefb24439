package keeper

import (
	"context"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetRequester returns the requester record and whether one exists.
func (k Keeper) GetRequester(ctx context.Context, requester sdk.AccAddress) (types.Requester, bool) {
	var r types.Requester
	found := k.mustGetValue(ctx, GetRequesterKey(requester), &r)
	return r, found
}

func (k Keeper) setRequester(ctx context.Context, addr sdk.AccAddress, r types.Requester) error {
	return k.setValue(ctx, GetRequesterKey(addr), r)
}

// IterateRequesters calls cb for every authorized requester until cb returns true.
func (k Keeper) IterateRequesters(ctx context.Context, cb func(requester sdk.AccAddress, r types.Requester) bool) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), RequesterKeyPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		var r types.Requester
		if err := unmarshalValue(iter.Value(), &r); err != nil {
			panic(err)
		}
		addr := sdk.AccAddress(append([]byte{}, iter.Key()[len(RequesterKeyPrefix):]...))
		if cb(addr, r) {
			return
		}
	}
}

// SetRequesterPermissions authorizes or deauthorizes an account to force new
// rounds. Deauthorizing erases the record. Owner only.
func (k Keeper) SetRequesterPermissions(ctx context.Context, caller, requester sdk.AccAddress, authorized bool, delay uint32) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	return k.atomically(ctx, func(ctx sdk.Context) error {
		r, _ := k.GetRequester(ctx, requester)
		if r.Authorized == authorized {
			return nil
		}

		if authorized {
			r.Authorized = true
			r.Delay = delay
			if err := k.setRequester(ctx, requester, r); err != nil {
				return err
			}
		} else {
			k.getStore(ctx).Delete(GetRequesterKey(requester))
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeRequesterPermissionsSet,
				sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
				sdk.NewAttribute(types.AttributeKeyAuthorized, strconv.FormatBool(authorized)),
				sdk.NewAttribute(types.AttributeKeyDelay, formatUint(uint64(delay))),
			),
		)
		return nil
	})
}

// RequestNewRound opens the round after the reporting round on behalf of an
// authorized requester and returns its id.
func (k Keeper) RequestNewRound(ctx context.Context, caller sdk.AccAddress) (uint32, error) {
	var roundID uint32
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		r, _ := k.GetRequester(ctx, caller)
		if !r.Authorized {
			return types.ErrNotAuthorizedRequester
		}

		current := k.ReportingRoundID(ctx)
		if !k.supersedable(ctx, current) {
			return types.ErrPrevRoundNotFinished
		}

		roundID = current + 1
		lastStarted := r.LastStartedRound
		if lastStarted != 0 && uint64(roundID) <= uint64(lastStarted)+uint64(r.Delay) {
			return types.ErrMustDelayRequests
		}
		if err := k.initializeNewRound(ctx, roundID, caller); err != nil {
			return err
		}

		r.LastStartedRound = roundID
		return k.setRequester(ctx, caller, r)
	})
	if err != nil {
		return 0, err
	}
	k.metrics.RoundsStarted.WithLabelValues("requester").Inc()
	return roundID, nil
}
