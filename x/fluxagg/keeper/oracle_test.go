package keeper_test

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) TestAddOracles() {
	suite.setup(0, 3, 0, 1, 3, 2)

	suite.Require().Equal(uint32(3), suite.keeper.OracleCount(suite.ctx))
	suite.Require().Equal(suite.oracles[:3], suite.keeper.GetOracles(suite.ctx))
	for i, oracle := range suite.oracles[:3] {
		status, found := suite.keeper.GetOracleStatus(suite.ctx, oracle)
		suite.Require().True(found)
		suite.Require().True(status.Enabled())
		suite.Require().Equal(uint16(i), status.Index)
		suite.Require().Equal(uint32(1), status.StartingRound)
		suite.Require().Equal(suite.admins[i].String(), suite.keeper.GetAdmin(suite.ctx, oracle))
	}
	suite.Require().True(suite.hasEvent(types.EventTypeOraclePermissionsUpdated))
	suite.Require().True(suite.hasEvent(types.EventTypeOracleAdminUpdated))
	suite.Require().True(suite.hasEvent(types.EventTypeRoundDetailsUpdated))

	cfg := suite.keeper.GetRoundConfig(suite.ctx)
	suite.Require().Equal(uint32(1), cfg.MinSubmissionCount)
	suite.Require().Equal(uint32(3), cfg.MaxSubmissionCount)
	suite.Require().Equal(uint32(2), cfg.RestartDelay)
}

func (suite *KeeperTestSuite) TestRemoveOracleSwapsTail() {
	suite.setup(0, 3, 0, 1, 3, 2)

	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[:1], nil, nil, 1, 2, 1,
	))

	suite.Require().Equal(uint32(2), suite.keeper.OracleCount(suite.ctx))
	suite.Require().Equal([]sdk.AccAddress{suite.oracles[2], suite.oracles[1]}, suite.keeper.GetOracles(suite.ctx))

	moved, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[2])
	suite.Require().Equal(uint16(0), moved.Index)
	removed, found := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[0])
	suite.Require().True(found)
	suite.Require().False(removed.Enabled())
	suite.Require().Equal(uint32(1), removed.EndingRound)
	suite.Require().Equal(suite.admins[0].String(), removed.Admin)

	// removing the tail itself
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[1:2], nil, nil, 1, 1, 0,
	))
	suite.Require().Equal([]sdk.AccAddress{suite.oracles[2]}, suite.keeper.GetOracles(suite.ctx))

	res, broken := keeper.OracleIndexInvariant(*suite.keeper)(suite.ctx)
	suite.Require().False(broken, res)
}

func (suite *KeeperTestSuite) TestReinstateOracle() {
	suite.setup(0, 2, 0, 1, 2, 1)

	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[:1], nil, nil, 1, 1, 0,
	))

	err := suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, nil, suite.oracles[:1], suite.admins[1:2], 1, 2, 1,
	)
	suite.Require().EqualError(err, "owner cannot overwrite admin")
	suite.Require().Equal(uint32(1), suite.keeper.OracleCount(suite.ctx))

	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, nil, suite.oracles[:1], suite.admins[:1], 1, 2, 1,
	))
	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[0])
	suite.Require().True(status.Enabled())
	suite.Require().Equal(uint16(1), status.Index)
}

func (suite *KeeperTestSuite) TestReinstatedOracleStartsAtCurrentRound() {
	suite.setup(100, 2, 1, 1, 2, 1)
	suite.Require().NoError(suite.submit(0, 1, 100))

	// retired after round 2, then reinstated while round 2 is reporting
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[1:2], nil, nil, 1, 1, 0,
	))
	suite.Require().NoError(suite.submit(0, 2, 100))
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, nil, suite.oracles[1:2], suite.admins[1:2], 1, 2, 1,
	))

	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[1])
	suite.Require().Equal(uint32(2), status.StartingRound)
}

func (suite *KeeperTestSuite) TestChangeOraclesErrors() {
	suite.setup(0, 2, 0, 1, 2, 1)

	tests := []struct {
		name    string
		removed []sdk.AccAddress
		added   []sdk.AccAddress
		admins  []sdk.AccAddress
		err     error
	}{
		{"already enabled", nil, suite.oracles[:1], suite.admins[:1], types.ErrOracleAlreadyEnabled},
		{"empty admin", nil, suite.oracles[2:3], []sdk.AccAddress{{}}, types.ErrEmptyAdmin},
		{"remove unknown", suite.oracles[3:4], nil, nil, types.ErrOracleNotEnabled},
		{"count mismatch", nil, suite.oracles[2:4], suite.admins[2:3], types.ErrOracleAdminMismatch},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := suite.keeper.ChangeOracles(suite.ctx, suite.owner, tc.removed, tc.added, tc.admins, 1, 2, 1)
			suite.Require().ErrorIs(err, tc.err)
			suite.Require().Equal(uint32(2), suite.keeper.OracleCount(suite.ctx))
		})
	}
}

func (suite *KeeperTestSuite) TestMaxOracles() {
	added := make([]sdk.AccAddress, types.MaxOracleCount+1)
	admins := make([]sdk.AccAddress, types.MaxOracleCount+1)
	for i := range added {
		added[i] = keepertest.TestAddr("oracle-" + string(rune('A'+i)))
		admins[i] = suite.admins[0]
	}

	err := suite.keeper.ChangeOracles(suite.ctx, suite.owner, nil, added, admins, 1, 1, 0)
	suite.Require().EqualError(err, "max oracles allowed")

	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, nil, added[:types.MaxOracleCount], admins[:types.MaxOracleCount], 1, 1, 0,
	))
	suite.Require().Equal(uint32(types.MaxOracleCount), suite.keeper.OracleCount(suite.ctx))
}

func (suite *KeeperTestSuite) TestAdminTransfer() {
	suite.setup(0, 1, 0, 1, 1, 0)
	oracle, admin := suite.oracles[0], suite.admins[0]
	newAdmin := keepertest.TestAddr("new-admin")

	suite.Require().ErrorIs(suite.keeper.TransferAdmin(suite.ctx, newAdmin, oracle, newAdmin), types.ErrOnlyAdmin)
	suite.Require().NoError(suite.keeper.TransferAdmin(suite.ctx, admin, oracle, newAdmin))
	suite.Require().True(suite.hasEvent(types.EventTypeOracleAdminUpdateRequested))

	err := suite.keeper.AcceptAdmin(suite.ctx, admin, oracle)
	suite.Require().EqualError(err, "only callable by pending admin")

	suite.Require().NoError(suite.keeper.AcceptAdmin(suite.ctx, newAdmin, oracle))
	status, _ := suite.keeper.GetOracleStatus(suite.ctx, oracle)
	suite.Require().Equal(newAdmin.String(), status.Admin)
	suite.Require().Empty(status.PendingAdmin)

	suite.Require().ErrorIs(suite.keeper.TransferAdmin(suite.ctx, admin, oracle, admin), types.ErrOnlyAdmin)
}
