package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the value ledger holding the aggregator's funds.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
}

// AnswerValidator is notified after every new round answer. It may reject or
// fail freely: the aggregator never lets its error reach the submitter.
type AnswerValidator interface {
	Validate(ctx context.Context, previousRoundID uint32, previousAnswer math.Int, currentRoundID uint32, currentAnswer math.Int) error
}

// AccessGate decides which accounts may read aggregator answers.
type AccessGate interface {
	IsAllowed(ctx context.Context, reader sdk.AccAddress) bool
}
