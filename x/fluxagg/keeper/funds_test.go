package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) balance(addr sdk.AccAddress) math.Int {
	return suite.bank.GetBalance(suite.ctx, addr, types.DefaultDenom).Amount
}

func (suite *KeeperTestSuite) TestDepositAndUpdateAvailableFunds() {
	suite.deposit(100)
	suite.Require().Equal(math.NewInt(100), suite.keeper.AvailableFunds(suite.ctx))
	suite.Require().True(suite.hasEvent(types.EventTypeAvailableFundsUpdated))

	// value sent straight to the module account is picked up on refresh
	keepertest.FundAccount(suite.T(), suite.ctx, suite.bank, suite.funder, 50)
	coins := sdk.NewCoins(sdk.NewCoin(types.DefaultDenom, math.NewInt(50)))
	suite.Require().NoError(suite.bank.SendCoins(suite.ctx, suite.funder, sdk.AccAddress(types.ModuleAddress()), coins))
	suite.Require().Equal(math.NewInt(100), suite.keeper.AvailableFunds(suite.ctx))

	suite.Require().NoError(suite.keeper.UpdateAvailableFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(150), suite.keeper.AvailableFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(150), suite.keeper.LedgerBalance(suite.ctx))

	suite.Require().Error(suite.keeper.Deposit(suite.ctx, suite.funder, math.NewInt(1_000)))
	suite.Require().Error(suite.keeper.Deposit(suite.ctx, suite.funder, math.ZeroInt()))
}

func (suite *KeeperTestSuite) TestUpdateFutureRoundsValidation() {
	suite.setup(100, 3, 1, 1, 3, 2)

	tests := []struct {
		name    string
		payment int64
		min     uint32
		max     uint32
		delay   uint32
		errText string
	}{
		{"max below min", 1, 3, 2, 1, "max must equal/exceed min"},
		{"max above oracle count", 1, 1, 4, 1, "max cannot exceed total"},
		{"delay not below oracle count", 1, 1, 3, 3, "delay cannot exceed total"},
		{"reserve not covered", 17, 1, 3, 2, "insufficient funds for payment"},
		{"zero min", 1, 0, 0, 2, "min must be greater than 0"},
		{"negative payment", -1, 1, 3, 2, "payment amount must be non-negative"},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := suite.keeper.UpdateFutureRounds(
				suite.ctx, suite.owner, math.NewInt(tc.payment), tc.min, tc.max, tc.delay, defaultTimeout,
			)
			suite.Require().EqualError(err, tc.errText)
		})
	}

	err := suite.keeper.UpdateFutureRounds(suite.ctx, suite.owner, math.NewInt(-1), 1, 3, 2, defaultTimeout)
	suite.Require().ErrorIs(err, types.ErrInvalidPaymentAmount)

	// 16 * 3 oracles * 2 reserve rounds = 96 <= 100
	suite.Require().NoError(suite.keeper.UpdateFutureRounds(
		suite.ctx, suite.owner, math.NewInt(16), 2, 3, 2, 60,
	))
	cfg := suite.keeper.GetRoundConfig(suite.ctx)
	suite.Require().Equal(math.NewInt(16), cfg.PaymentAmount)
	suite.Require().Equal(uint64(60), cfg.Timeout)

	reserve, err := suite.keeper.RequiredReserve(suite.ctx, cfg.PaymentAmount)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(96), reserve)
}

func (suite *KeeperTestSuite) TestConfigAppliesToFutureRoundsOnly() {
	suite.setup(100, 3, 1, 2, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	suite.Require().NoError(suite.keeper.UpdateFutureRounds(
		suite.ctx, suite.owner, math.NewInt(5), 1, 3, 2, defaultTimeout,
	))

	details, _ := suite.keeper.GetRoundDetails(suite.ctx, 1)
	suite.Require().Equal(uint32(2), details.MinSubmissions)
	suite.Require().Equal(math.NewInt(1), details.PaymentAmount)

	suite.Require().NoError(suite.submit(1, 1, 100))
	suite.Require().Equal(math.NewInt(1), suite.keeper.WithdrawablePayment(suite.ctx, suite.oracles[1]))
}

func (suite *KeeperTestSuite) TestWithdrawPayment() {
	suite.setup(100, 3, 3, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))
	oracle, admin := suite.oracles[0], suite.admins[0]
	recipient := keepertest.TestAddr("recipient")

	err := suite.keeper.WithdrawPayment(suite.ctx, suite.admins[1], oracle, recipient, math.NewInt(1))
	suite.Require().EqualError(err, "only callable by admin")

	err = suite.keeper.WithdrawPayment(suite.ctx, admin, oracle, recipient, math.NewInt(4))
	suite.Require().EqualError(err, "insufficient withdrawable funds")

	suite.Require().NoError(suite.keeper.WithdrawPayment(suite.ctx, admin, oracle, recipient, math.NewInt(2)))
	suite.Require().Equal(math.NewInt(2), suite.balance(recipient))
	suite.Require().Equal(math.NewInt(1), suite.keeper.WithdrawablePayment(suite.ctx, oracle))
	suite.Require().Equal(math.NewInt(1), suite.keeper.AllocatedFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(97), suite.keeper.AvailableFunds(suite.ctx))

	// a failed transfer leaves the books untouched
	err = suite.keeper.WithdrawPayment(suite.ctx, admin, oracle, keepertest.BlockedRecipient, math.NewInt(1))
	suite.Require().EqualError(err, "token transfer failed")
	suite.Require().Equal(math.NewInt(1), suite.keeper.WithdrawablePayment(suite.ctx, oracle))
	suite.Require().Equal(math.NewInt(1), suite.keeper.AllocatedFunds(suite.ctx))
}

func (suite *KeeperTestSuite) TestWithdrawFundsKeepsReserve() {
	suite.setup(100, 3, 3, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))
	recipient := keepertest.TestAddr("recipient")

	// available 97, reserve 3 * 3 * 2 = 18
	err := suite.keeper.WithdrawFunds(suite.ctx, suite.owner, recipient, math.NewInt(80))
	suite.Require().EqualError(err, "insufficient reserve funds")

	err = suite.keeper.WithdrawFunds(suite.ctx, suite.owner, keepertest.BlockedRecipient, math.NewInt(10))
	suite.Require().EqualError(err, "token transfer failed")
	suite.Require().Equal(math.NewInt(97), suite.keeper.AvailableFunds(suite.ctx))

	suite.Require().NoError(suite.keeper.WithdrawFunds(suite.ctx, suite.owner, recipient, math.NewInt(79)))
	suite.Require().Equal(math.NewInt(79), suite.balance(recipient))
	suite.Require().Equal(math.NewInt(18), suite.keeper.AvailableFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(3), suite.keeper.AllocatedFunds(suite.ctx))

	err = suite.keeper.WithdrawFunds(suite.ctx, suite.owner, recipient, math.NewInt(1))
	suite.Require().EqualError(err, "insufficient reserve funds")
}

func (suite *KeeperTestSuite) TestWithdrawFundsBelowReserve() {
	suite.setup(100, 3, 10, 1, 3, 2)

	// reserve 60; shrink the books so available sits below it
	funds := suite.keeper.GetFunds(suite.ctx)
	funds.Allocated = math.NewInt(50)
	suite.Require().NoError(suite.keeper.SetFunds(suite.ctx, funds))

	err := suite.keeper.WithdrawFunds(suite.ctx, suite.owner, suite.funder, math.ZeroInt())
	suite.Require().EqualError(err, "insufficient reserve funds")
}
