package keeper_test

import (
	"cosmossdk.io/math"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) TestOracleRoundStateSuggestsNextRound() {
	suite.setup(100, 3, 3, 2, 3, 2)

	state := suite.keeper.OracleRoundState(suite.ctx, suite.oracles[0], 0)
	suite.Require().True(state.EligibleToSubmit)
	suite.Require().Equal(uint32(1), state.RoundID)
	suite.Require().Zero(state.StartedAt)
	suite.Require().Zero(state.Timeout)
	suite.Require().Equal(math.NewInt(100), state.AvailableFunds)
	suite.Require().Equal(uint32(3), state.OracleCount)
	suite.Require().Equal(math.NewInt(3), state.PaymentAmount)

	// an oracle outside the set is never eligible
	state = suite.keeper.OracleRoundState(suite.ctx, suite.oracles[3], 0)
	suite.Require().False(state.EligibleToSubmit)
}

func (suite *KeeperTestSuite) TestOracleRoundStateKeepsOraclesOnOpenRound() {
	suite.setup(100, 3, 3, 2, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	// the oracle that reported waits on round 1
	state := suite.keeper.OracleRoundState(suite.ctx, suite.oracles[0], 0)
	suite.Require().False(state.EligibleToSubmit)
	suite.Require().Equal(uint32(1), state.RoundID)
	suite.Require().Equal(math.NewInt(100), state.LatestSubmission)

	state = suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 0)
	suite.Require().True(state.EligibleToSubmit)
	suite.Require().Equal(uint32(1), state.RoundID)
	suite.Require().Equal(uint64(keepertest.GenesisTime.Unix()), state.StartedAt)
	suite.Require().Equal(defaultTimeout, state.Timeout)
	suite.Require().Equal(math.NewInt(97), state.AvailableFunds)
	suite.Require().Equal(math.NewInt(3), state.PaymentAmount)

	// specific rounds
	suite.Require().True(suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 1).EligibleToSubmit)
	next := suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 2)
	suite.Require().False(next.EligibleToSubmit)
	suite.Require().Equal(math.NewInt(3), next.PaymentAmount)
}

func (suite *KeeperTestSuite) TestOracleRoundStateAfterAnswer() {
	suite.setup(100, 3, 3, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	// round 1 answered; oracle 2 is still steered to it while it is open
	state := suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 0)
	suite.Require().Equal(uint32(1), state.RoundID)
	suite.Require().True(state.EligibleToSubmit)

	// oracle 1 reported on round 1 and is pointed at round 2, which its
	// restart delay forbids it to open
	state = suite.keeper.OracleRoundState(suite.ctx, suite.oracles[0], 0)
	suite.Require().Equal(uint32(2), state.RoundID)
	suite.Require().False(state.EligibleToSubmit)
}

func (suite *KeeperTestSuite) TestQueriesAreReadOnly() {
	suite.setup(100, 3, 1, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	before, err := suite.keeper.ExportGenesis(suite.ctx)
	suite.Require().NoError(err)
	for i := 0; i < 2; i++ {
		_, _ = suite.keeper.LatestRoundData(suite.ctx)
		_, _ = suite.keeper.GetRoundData(suite.ctx, 7)
		_ = suite.keeper.GetAnswer(suite.ctx, 1)
		_ = suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 0)
		_ = suite.keeper.OracleRoundState(suite.ctx, suite.oracles[1], 5)
	}
	after, err := suite.keeper.ExportGenesis(suite.ctx)
	suite.Require().NoError(err)
	suite.requireSameGenesis(before, after)

	ts, err := suite.keeper.LatestTimestamp(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(suite.keeper.GetTimestamp(suite.ctx, 1), ts)
	suite.Require().True(suite.keeper.GetAnswer(suite.ctx, 42).IsZero())
	suite.Require().Zero(suite.keeper.GetTimestamp(suite.ctx, 42))
}

func (suite *KeeperTestSuite) TestQuerierAccessGate() {
	suite.setup(100, 3, 1, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	reader := keepertest.TestAddr("reader")
	stranger := keepertest.TestAddr("stranger")
	gate := types.NewAllowListGate(reader)
	q := keeper.NewQuerier(*suite.keeper, gate)

	data, err := q.LatestRoundDataFor(suite.ctx, reader)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(100), data.Answer.Int64())

	_, err = q.LatestRoundDataFor(suite.ctx, stranger)
	suite.Require().EqualError(err, "No access")
	_, err = q.AnswerFor(suite.ctx, stranger, 1)
	suite.Require().ErrorIs(err, types.ErrNoAccess)
	_, err = q.RoundData(suite.ctx, stranger, 1)
	suite.Require().ErrorIs(err, types.ErrNoAccess)

	gate.DisableAccessCheck()
	answer, err := q.LatestAnswerFor(suite.ctx, stranger)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(100), answer.Int64())

	open := keeper.NewQuerier(*suite.keeper, nil)
	roundID, err := open.LatestRoundFor(suite.ctx, stranger)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), roundID)
}
