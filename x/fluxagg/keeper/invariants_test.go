package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
)

func (suite *KeeperTestSuite) TestInvariantsHoldAcrossActivity() {
	suite.setup(100, 3, 3, 2, 3, 1)
	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.submit(1, 1, 104))
	suite.Require().NoError(suite.submit(2, 2, 110))
	suite.Require().NoError(suite.keeper.WithdrawPayment(suite.ctx, suite.admins[0], suite.oracles[0], suite.funder, math.NewInt(2)))
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[1:2], nil, nil, 1, 2, 1,
	))

	msg, broken := keeper.AllInvariants(*suite.keeper)(suite.ctx)
	suite.Require().False(broken, msg)
}

func (suite *KeeperTestSuite) TestFundsSolvencyInvariantDetectsOverstatement() {
	suite.setup(100, 3, 3, 1, 3, 1)
	suite.Require().NoError(suite.submit(0, 1, 100))

	funds := suite.keeper.GetFunds(suite.ctx)
	funds.Available = funds.Available.AddRaw(1)
	suite.Require().NoError(suite.keeper.SetFunds(suite.ctx, funds))

	msg, broken := keeper.FundsSolvencyInvariant(*suite.keeper)(suite.ctx)
	suite.Require().True(broken)
	suite.Require().Contains(msg, "exceeds ledger balance")
}

func (suite *KeeperTestSuite) TestOracleIndexInvariantDetectsDesync() {
	suite.setup(0, 2, 0, 1, 2, 1)

	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[1])
	status.Index = 0
	suite.Require().NoError(suite.keeper.SetOracleStatus(suite.ctx, suite.oracles[1], status))

	msg, broken := keeper.OracleIndexInvariant(*suite.keeper)(suite.ctx)
	suite.Require().True(broken)
	suite.Require().Contains(msg, "has index 0 but sits at 1")
}
