package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetFunds returns the available/allocated bookkeeping.
func (k Keeper) GetFunds(ctx context.Context) types.Funds {
	funds := types.NewFunds()
	k.mustGetValue(ctx, FundsKey, &funds)
	if funds.Available.IsNil() {
		funds.Available = math.ZeroInt()
	}
	if funds.Allocated.IsNil() {
		funds.Allocated = math.ZeroInt()
	}
	return funds
}

func (k Keeper) setFunds(ctx context.Context, funds types.Funds) error {
	if err := k.setValue(ctx, FundsKey, funds); err != nil {
		return err
	}
	k.metrics.AvailableFunds.Set(toFloat(funds.Available))
	k.metrics.AllocatedFunds.Set(toFloat(funds.Allocated))
	return nil
}

// AvailableFunds returns the funds not yet owed to any oracle.
func (k Keeper) AvailableFunds(ctx context.Context) math.Int {
	return k.GetFunds(ctx).Available
}

// AllocatedFunds returns the funds owed to oracles and not yet withdrawn.
func (k Keeper) AllocatedFunds(ctx context.Context) math.Int {
	return k.GetFunds(ctx).Allocated
}

// RequiredReserve is the balance needed to pay every enabled oracle for
// ReserveRounds more rounds at the given payment.
func (k Keeper) RequiredReserve(ctx context.Context, payment math.Int) (math.Int, error) {
	perRound, err := SafeMul(payment, math.NewInt(int64(k.OracleCount(ctx))))
	if err != nil {
		return math.Int{}, err
	}
	return SafeMul(perRound, math.NewIntFromUint64(types.ReserveRounds))
}

// LedgerBalance returns the aggregator's balance on the value ledger.
func (k Keeper) LedgerBalance(ctx context.Context) math.Int {
	denom := k.GetParams(ctx).Denom
	return k.bankKeeper.GetBalance(ctx, sdk.AccAddress(types.ModuleAddress()), denom).Amount
}

// UpdateAvailableFunds recalculates the available funds from the ledger
// balance, picking up value sent to the aggregator outside Deposit.
func (k Keeper) UpdateAvailableFunds(ctx context.Context) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		return k.updateAvailableFunds(ctx)
	})
}

func (k Keeper) updateAvailableFunds(ctx sdk.Context) error {
	funds := k.GetFunds(ctx)
	nowAvailable, err := SafeSub(k.LedgerBalance(ctx), funds.Allocated)
	if err != nil {
		return err
	}
	if funds.Available.Equal(nowAvailable) {
		return nil
	}

	funds.Available = nowAvailable
	if err := k.setFunds(ctx, funds); err != nil {
		return err
	}
	emitAvailableFundsUpdated(ctx, nowAvailable)
	return nil
}

// Deposit moves amount from the depositor to the aggregator and makes it
// available for payments.
func (k Keeper) Deposit(ctx context.Context, from sdk.AccAddress, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrTransferFailed.Wrap("deposit amount must be positive")
	}
	return k.atomically(ctx, func(ctx sdk.Context) error {
		coins := sdk.NewCoins(sdk.NewCoin(k.GetParams(ctx).Denom, amount))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, types.ModuleName, coins); err != nil {
			return types.ErrTransferFailed.Wrap(err.Error())
		}
		return k.updateAvailableFunds(ctx)
	})
}

// payOracle credits the round's payment to the oracle, moving it from
// available to allocated.
func (k Keeper) payOracle(ctx sdk.Context, roundID uint32, oracle sdk.AccAddress) error {
	details, _ := k.GetRoundDetails(ctx, roundID)
	payment := details.PaymentAmount

	funds := k.GetFunds(ctx)
	available, err := SafeSub(funds.Available, payment)
	if err != nil {
		return err
	}
	allocated, err := SafeAdd(funds.Allocated, payment)
	if err != nil {
		return err
	}
	funds.Available, funds.Allocated = available, allocated
	if err := k.setFunds(ctx, funds); err != nil {
		return err
	}

	status, _ := k.GetOracleStatus(ctx, oracle)
	withdrawable, err := SafeAdd(status.Withdrawable, payment)
	if err != nil {
		return err
	}
	status.Withdrawable = withdrawable
	if err := k.setOracleStatus(ctx, oracle, status); err != nil {
		return err
	}

	emitAvailableFundsUpdated(ctx, available)
	k.metrics.PaymentsTotal.Add(toFloat(payment))
	return nil
}

// WithdrawablePayment returns what the oracle's admin can withdraw.
func (k Keeper) WithdrawablePayment(ctx context.Context, oracle sdk.AccAddress) math.Int {
	status, _ := k.GetOracleStatus(ctx, oracle)
	return status.Withdrawable
}

// WithdrawPayment transfers amount of the oracle's earnings to recipient.
// Only the oracle's admin may call it.
func (k Keeper) WithdrawPayment(ctx context.Context, caller, oracle, recipient sdk.AccAddress, amount math.Int) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		status, _ := k.GetOracleStatus(ctx, oracle)
		if status.Admin == "" || status.Admin != caller.String() {
			return types.ErrOnlyAdmin
		}
		if amount.IsNil() || amount.IsNegative() || status.Withdrawable.LT(amount) {
			return types.ErrInsufficientWithdrawable
		}

		withdrawable, err := SafeSub(status.Withdrawable, amount)
		if err != nil {
			return err
		}
		status.Withdrawable = withdrawable
		if err := k.setOracleStatus(ctx, oracle, status); err != nil {
			return err
		}

		funds := k.GetFunds(ctx)
		allocated, err := SafeSub(funds.Allocated, amount)
		if err != nil {
			return err
		}
		funds.Allocated = allocated
		if err := k.setFunds(ctx, funds); err != nil {
			return err
		}

		if err := k.transfer(ctx, recipient, amount); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePaymentWithdrawn,
				sdk.NewAttribute(types.AttributeKeyOracle, oracle.String()),
				sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return nil
	})
}

// WithdrawFunds transfers available funds above the payment reserve to
// recipient. Owner only.
func (k Keeper) WithdrawFunds(ctx context.Context, caller, recipient sdk.AccAddress, amount math.Int) error {
	if err := k.requireOwner(caller); err != nil {
		return err
	}
	return k.atomically(ctx, func(ctx sdk.Context) error {
		if err := k.updateAvailableFunds(ctx); err != nil {
			return err
		}

		reserve, err := k.RequiredReserve(ctx, k.GetRoundConfig(ctx).PaymentAmount)
		if err != nil {
			return err
		}
		surplus, err := SafeSub(k.GetFunds(ctx).Available, reserve)
		if err != nil {
			return types.ErrInsufficientReserve
		}
		if amount.IsNil() || amount.IsNegative() || surplus.LT(amount) {
			return types.ErrInsufficientReserve
		}

		if err := k.transfer(ctx, recipient, amount); err != nil {
			return err
		}
		if err := k.updateAvailableFunds(ctx); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFundsWithdrawn,
				sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return nil
	})
}

func (k Keeper) transfer(ctx sdk.Context, recipient sdk.AccAddress, amount math.Int) error {
	if amount.IsZero() {
		return nil
	}
	coins := sdk.NewCoins(sdk.NewCoin(k.GetParams(ctx).Denom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipient, coins); err != nil {
		k.Logger(ctx).Error("ledger transfer failed", "recipient", recipient.String(), "amount", amount.String(), "error", err)
		return types.ErrTransferFailed
	}
	return nil
}

func emitAvailableFundsUpdated(ctx sdk.Context, available math.Int) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAvailableFundsUpdated,
			sdk.NewAttribute(types.AttributeKeyAmount, available.String()),
		),
	)
}
