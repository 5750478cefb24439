package keeper_test

import (
	"time"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) TestRequestNewRound() {
	suite.setup(100, 3, 1, 1, 3, 2)
	requester := keepertest.TestAddr("requester")

	_, err := suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().EqualError(err, "not authorized requester")

	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 1))
	suite.Require().True(suite.hasEvent(types.EventTypeRequesterPermissionsSet))

	roundID, err := suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), roundID)
	suite.Require().Equal(uint32(1), suite.keeper.ReportingRoundID(suite.ctx))
	suite.Require().True(suite.keeper.AcceptingSubmissions(suite.ctx, 1))

	_, err = suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().EqualError(err, "prev round must be supersedable")

	// oracles report on the requested round without opening it
	suite.Require().NoError(suite.submit(0, 1, 100))
	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[0])
	suite.Require().Zero(status.LastStartedRound)

	_, err = suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().EqualError(err, "must delay requests")

	suite.Require().NoError(suite.submit(1, 2, 100))
	roundID, err = suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(3), roundID)

	r, found := suite.keeper.GetRequester(suite.ctx, requester)
	suite.Require().True(found)
	suite.Require().Equal(uint32(3), r.LastStartedRound)
}

func (suite *KeeperTestSuite) TestRequestNewRoundAfterTimeout() {
	suite.setup(100, 3, 1, 2, 3, 2)
	requester := keepertest.TestAddr("requester")
	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 0))

	suite.Require().NoError(suite.submit(0, 1, 100))
	_, err := suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().ErrorIs(err, types.ErrPrevRoundNotFinished)

	suite.advance(time.Duration(defaultTimeout+1) * time.Second)
	roundID, err := suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(2), roundID)
	suite.Require().NotZero(suite.keeper.GetTimestamp(suite.ctx, 1))
}

func (suite *KeeperTestSuite) TestSetRequesterPermissions() {
	requester := keepertest.TestAddr("requester")

	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 5))
	// unchanged authorization is a no-op, delay included
	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 9))
	r, found := suite.keeper.GetRequester(suite.ctx, requester)
	suite.Require().True(found)
	suite.Require().Equal(uint32(5), r.Delay)

	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, false, 0))
	_, found = suite.keeper.GetRequester(suite.ctx, requester)
	suite.Require().False(found)
}
