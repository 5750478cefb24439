package keeper

import (
	"context"
	"encoding/binary"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetOracleStatus returns the oracle's status and whether it was ever added.
func (k Keeper) GetOracleStatus(ctx context.Context, oracle sdk.AccAddress) (types.OracleStatus, bool) {
	status := types.NewOracleStatus()
	found := k.mustGetValue(ctx, GetOracleStatusKey(oracle), &status)
	if status.Withdrawable.IsNil() {
		status.Withdrawable = math.ZeroInt()
	}
	if status.LatestSubmission.IsNil() {
		status.LatestSubmission = math.ZeroInt()
	}
	return status, found
}

func (k Keeper) setOracleStatus(ctx context.Context, oracle sdk.AccAddress, status types.OracleStatus) error {
	return k.setValue(ctx, GetOracleStatusKey(oracle), status)
}

// IterateOracleStatuses calls cb for every oracle ever added until cb returns true.
func (k Keeper) IterateOracleStatuses(ctx context.Context, cb func(oracle sdk.AccAddress, status types.OracleStatus) bool) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), OracleStatusKeyPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		status := types.NewOracleStatus()
		if err := unmarshalValue(iter.Value(), &status); err != nil {
			panic(err)
		}
		oracle := sdk.AccAddress(append([]byte{}, iter.Key()[len(OracleStatusKeyPrefix):]...))
		if cb(oracle, status) {
			return
		}
	}
}

// OracleCount returns the number of enabled oracles.
func (k Keeper) OracleCount(ctx context.Context) uint32 {
	bz := k.getStore(ctx).Get(OracleCountKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint32(bz)
}

func (k Keeper) setOracleCount(ctx context.Context, count uint32) {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, count)
	k.getStore(ctx).Set(OracleCountKey, bz)
	k.metrics.OracleCount.Set(float64(count))
}

func (k Keeper) oracleAt(ctx context.Context, index uint16) sdk.AccAddress {
	bz := k.getStore(ctx).Get(GetOracleListKey(index))
	if bz == nil {
		panic(types.ErrStateCorruption.Wrapf("oracle list slot %d is empty", index))
	}
	return sdk.AccAddress(bz)
}

// GetOracles returns the enabled oracles in list order.
func (k Keeper) GetOracles(ctx context.Context) []sdk.AccAddress {
	count := k.OracleCount(ctx)
	oracles := make([]sdk.AccAddress, 0, count)
	for i := uint32(0); i < count; i++ {
		oracles = append(oracles, k.oracleAt(ctx, uint16(i)))
	}
	return oracles
}

// GetAdmin returns the admin of the oracle, empty if it was never added.
func (k Keeper) GetAdmin(ctx context.Context, oracle sdk.AccAddress) string {
	status, _ := k.GetOracleStatus(ctx, oracle)
	return status.Admin
}

// getStartingRound is the first round a newly added oracle may report on:
// the next round, or the current one for an oracle whose previous tenure
// ended right at it.
func (k Keeper) getStartingRound(ctx context.Context, status types.OracleStatus) uint32 {
	current := k.ReportingRoundID(ctx)
	if current != 0 && current == status.EndingRound {
		return current
	}
	return current + 1
}

// ChangeOracles removes and adds oracles, then reconfigures future rounds
// with the given quorum and restart delay. Owner only.
func (k Keeper) ChangeOracles(
	ctx context.Context,
	caller sdk.AccAddress,
	removed, added, addedAdmins []sdk.AccAddress,
	minSubmissions, maxSubmissions, restartDelay uint32,
) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}

	return k.atomically(ctx, func(ctx sdk.Context) error {
		for _, oracle := range removed {
			if err := k.removeOracle(ctx, oracle); err != nil {
				return err
			}
		}

		if len(added) != len(addedAdmins) {
			return types.ErrOracleAdminMismatch
		}
		if uint64(k.OracleCount(ctx))+uint64(len(added)) > types.MaxOracleCount {
			return types.ErrMaxOracles
		}

		for i, oracle := range added {
			if err := k.addOracle(ctx, oracle, addedAdmins[i]); err != nil {
				return err
			}
		}

		cfg := k.GetRoundConfig(ctx)
		cfg.MinSubmissionCount = minSubmissions
		cfg.MaxSubmissionCount = maxSubmissions
		cfg.RestartDelay = restartDelay
		if err := k.updateFutureRounds(ctx, cfg); err != nil {
			return err
		}

		k.Logger(ctx).Info("oracle set changed",
			"removed", len(removed), "added", len(added), "oracle_count", k.OracleCount(ctx))
		return nil
	})
}

func (k Keeper) addOracle(ctx sdk.Context, oracle, admin sdk.AccAddress) error {
	if len(oracle) == 0 {
		return types.ErrInvalidOracleAddress
	}
	status, _ := k.GetOracleStatus(ctx, oracle)
	if status.Enabled() {
		return types.ErrOracleAlreadyEnabled
	}
	if len(admin) == 0 {
		return types.ErrEmptyAdmin
	}
	if status.Admin != "" && status.Admin != admin.String() {
		return types.ErrOverwriteAdmin
	}

	count := k.OracleCount(ctx)
	status.StartingRound = k.getStartingRound(ctx, status)
	status.EndingRound = types.RoundMax
	status.Index = uint16(count)
	status.Admin = admin.String()
	if err := k.setOracleStatus(ctx, oracle, status); err != nil {
		return err
	}
	k.getStore(ctx).Set(GetOracleListKey(uint16(count)), oracle)
	k.setOracleCount(ctx, count+1)

	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeOraclePermissionsUpdated,
			sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
			sdk.NewAttribute(types.AttributeKeyWhitelisted, "true"),
		),
		sdk.NewEvent(
			types.EventTypeOracleAdminUpdated,
			sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
			sdk.NewAttribute(types.AttributeKeyNewAdmin, admin.String()),
		),
	})
	return nil
}

// removeOracle retires the oracle after the next round and swaps the last
// list entry into its slot.
func (k Keeper) removeOracle(ctx sdk.Context, oracle sdk.AccAddress) error {
	status, _ := k.GetOracleStatus(ctx, oracle)
	if !status.Enabled() {
		return types.ErrOracleNotEnabled
	}

	count := k.OracleCount(ctx)
	index := status.Index
	if uint32(index) >= count || !k.oracleAt(ctx, index).Equals(oracle) {
		panic(types.ErrStateCorruption.Wrapf("oracle %s is not at index %d", oracle, index))
	}

	tailIndex := uint16(count - 1)
	tail := k.oracleAt(ctx, tailIndex)
	if !tail.Equals(oracle) {
		tailStatus, _ := k.GetOracleStatus(ctx, tail)
		tailStatus.Index = index
		if err := k.setOracleStatus(ctx, tail, tailStatus); err != nil {
			return err
		}
		k.getStore(ctx).Set(GetOracleListKey(index), tail)
	}
	k.getStore(ctx).Delete(GetOracleListKey(tailIndex))
	k.setOracleCount(ctx, count-1)

	status.EndingRound = k.ReportingRoundID(ctx) + 1
	status.Index = 0
	if err := k.setOracleStatus(ctx, oracle, status); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOraclePermissionsUpdated,
			sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
			sdk.NewAttribute(types.AttributeKeyWhitelisted, "false"),
		),
	)
	return nil
}

// TransferAdmin proposes newAdmin as the oracle's admin. Only the current
// admin may call it; the transfer completes on AcceptAdmin.
func (k Keeper) TransferAdmin(ctx context.Context, caller, oracle, newAdmin sdk.AccAddress) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		status, _ := k.GetOracleStatus(ctx, oracle)
		if status.Admin == "" || status.Admin != caller.String() {
			return types.ErrOnlyAdmin
		}
		status.PendingAdmin = newAdmin.String()
		if err := k.setOracleStatus(ctx, oracle, status); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeOracleAdminUpdateRequested,
				sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
				sdk.NewAttribute(types.AttributeKeyAdmin, caller.String()),
				sdk.NewAttribute(types.AttributeKeyNewAdmin, newAdmin.String()),
			),
		)
		return nil
	})
}

// AcceptAdmin completes a pending admin transfer. Only the pending admin may call it.
func (k Keeper) AcceptAdmin(ctx context.Context, caller, oracle sdk.AccAddress) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		status, _ := k.GetOracleStatus(ctx, oracle)
		if status.PendingAdmin == "" || status.PendingAdmin != caller.String() {
			return types.ErrOnlyPendingAdmin
		}
		status.PendingAdmin = ""
		status.Admin = caller.String()
		if err := k.setOracleStatus(ctx, oracle, status); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeOracleAdminUpdated,
				sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
				sdk.NewAttribute(types.AttributeKeyNewAdmin, caller.String()),
			),
		)
		return nil
	})
}
