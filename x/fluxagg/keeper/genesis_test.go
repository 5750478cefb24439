package keeper_test

import (
	"encoding/json"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) requireSameGenesis(expected, actual *types.GenesisState) {
	want, err := json.Marshal(expected)
	suite.Require().NoError(err)
	got, err := json.Marshal(actual)
	suite.Require().NoError(err)
	suite.Require().JSONEq(string(want), string(got))
}

func (suite *KeeperTestSuite) TestGenesisRoundTrip() {
	suite.setup(100, 3, 2, 2, 3, 1)
	requester := keepertest.TestAddr("requester")
	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 1))
	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.submit(1, 1, 104))
	suite.Require().NoError(suite.submit(2, 2, 110))
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[:1], nil, nil, 1, 2, 1,
	))

	exported, err := suite.keeper.ExportGenesis(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().NoError(exported.Validate())
	suite.Require().Len(exported.Oracles, 3)
	suite.Require().Len(exported.Requesters, 1)
	suite.Require().Len(exported.RoundDetails, 2)
	suite.Require().Equal(types.Counters{ReportingRoundID: 2, LatestRoundID: 1}, exported.Counters)

	bz, err := json.Marshal(exported)
	suite.Require().NoError(err)
	var decoded types.GenesisState
	suite.Require().NoError(json.Unmarshal(bz, &decoded))

	k2, bank2, ctx2 := keepertest.FluxaggKeeper(suite.T())
	keepertest.FundAccount(suite.T(), ctx2, bank2, suite.funder, 100)
	suite.Require().NoError(bank2.SendCoinsFromAccountToModule(ctx2, suite.funder, types.ModuleName,
		sdkCoins(100)))
	suite.Require().NoError(k2.InitGenesis(ctx2, decoded))

	reimported, err := k2.ExportGenesis(ctx2)
	suite.Require().NoError(err)
	suite.requireSameGenesis(exported, reimported)

	suite.Require().Equal(suite.keeper.GetOracles(suite.ctx), k2.GetOracles(ctx2))
	answer, err := k2.LatestAnswer(ctx2)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(102), answer.Int64())

	// the imported aggregator keeps running
	ctx2 = keepertest.AdvanceTime(ctx2, time.Second)
	suite.Require().NoError(k2.Submit(ctx2, suite.oracles[1], 2, math.NewInt(120)))
	suite.Require().Equal(int64(115), k2.GetAnswer(ctx2, 2).Int64())
}

func (suite *KeeperTestSuite) TestInitGenesisRejectsInvalidState() {
	gs := types.DefaultGenesis()
	gs.Counters = types.Counters{ReportingRoundID: 1, LatestRoundID: 3}
	suite.Require().Error(suite.keeper.InitGenesis(suite.ctx, *gs))
}

func sdkCoins(amount int64) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(types.DefaultDenom, math.NewInt(amount)))
}
