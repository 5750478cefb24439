package keeper_test

import (
	"time"

	"cosmossdk.io/math"
	dto "github.com/prometheus/client_model/go"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (suite *KeeperTestSuite) TestMedianOfRoundSubmissions() {
	suite.setup(1000, 3, 1, 2, 3, 2)

	suite.Require().NoError(suite.submit(0, 1, 100))
	_, err := suite.keeper.LatestAnswer(suite.ctx)
	suite.Require().ErrorIs(err, types.ErrNoData)
	_, err = suite.keeper.GetRoundData(suite.ctx, 1)
	suite.Require().EqualError(err, "No data present")

	suite.Require().NoError(suite.submit(1, 1, 99))
	answer, err := suite.keeper.LatestAnswer(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(99), answer.Int64())

	suite.Require().NoError(suite.submit(2, 1, 101))
	answer, err = suite.keeper.LatestAnswer(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(100), answer.Int64())

	data, err := suite.keeper.LatestRoundData(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), data.RoundID)
	suite.Require().Equal(uint32(1), data.AnsweredInRound)
	suite.Require().Equal(uint64(suite.ctx.BlockTime().Unix()), data.UpdatedAt)

	// a full round reclaims its details
	_, found := suite.keeper.GetRoundDetails(suite.ctx, 1)
	suite.Require().False(found)
	suite.Require().True(suite.hasEvent(types.EventTypeAnswerUpdated))
	suite.Require().True(suite.hasEvent(types.EventTypeSubmissionReceived))
}

func (suite *KeeperTestSuite) TestPaymentAccounting() {
	suite.setup(100, 3, 3, 1, 3, 2)

	suite.Require().NoError(suite.submit(0, 1, 100))

	suite.Require().Equal(math.NewInt(3), suite.keeper.AllocatedFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(97), suite.keeper.AvailableFunds(suite.ctx))
	suite.Require().Equal(math.NewInt(3), suite.keeper.WithdrawablePayment(suite.ctx, suite.oracles[0]))
	suite.Require().True(suite.keeper.WithdrawablePayment(suite.ctx, suite.oracles[1]).IsZero())
}

func (suite *KeeperTestSuite) TestSubmissionCounterIsUnlabelled() {
	suite.setup(100, 3, 1, 1, 3, 2)
	count := func() float64 {
		var m dto.Metric
		suite.Require().NoError(suite.keeper.Metrics().Submissions.Write(&m))
		suite.Require().Empty(m.GetLabel())
		return m.GetCounter().GetValue()
	}

	before := count()
	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.submit(1, 1, 100))
	suite.Require().Equal(before+2, count())
}

func (suite *KeeperTestSuite) TestSubmissionValueBounds() {
	suite.setup(100, 3, 1, 1, 3, 2)

	params := suite.keeper.GetParams(suite.ctx)
	err := suite.keeper.Submit(suite.ctx, suite.oracles[0], 1, params.MinSubmissionValue.SubRaw(1))
	suite.Require().EqualError(err, "value below minSubmissionValue")
	err = suite.keeper.Submit(suite.ctx, suite.oracles[0], 1, params.MaxSubmissionValue.AddRaw(1))
	suite.Require().EqualError(err, "value above maxSubmissionValue")

	// value checks come before eligibility checks
	err = suite.keeper.Submit(suite.ctx, suite.oracles[3], 1, params.MaxSubmissionValue.AddRaw(1))
	suite.Require().EqualError(err, "value above maxSubmissionValue")
	err = suite.submit(3, 1, 10)
	suite.Require().EqualError(err, "not enabled oracle")

	// rejected submissions leave no trace
	suite.Require().Equal(uint32(0), suite.keeper.ReportingRoundID(suite.ctx))
}

func (suite *KeeperTestSuite) TestDoubleSubmissionRejected() {
	suite.setup(100, 3, 1, 2, 3, 2)

	suite.Require().NoError(suite.submit(0, 1, 100))
	err := suite.submit(0, 1, 100)
	suite.Require().EqualError(err, "cannot report on previous rounds")

	details, found := suite.keeper.GetRoundDetails(suite.ctx, 1)
	suite.Require().True(found)
	suite.Require().Len(details.Submissions, 1)
}

func (suite *KeeperTestSuite) TestRoundOrdering() {
	suite.setup(100, 3, 1, 2, 3, 2)

	err := suite.submit(0, 2, 100)
	suite.Require().EqualError(err, "invalid round to report")

	suite.Require().NoError(suite.submit(0, 1, 100))
	err = suite.submit(1, 2, 100)
	suite.Require().EqualError(err, "previous round not supersedable")
	err = suite.submit(1, 3, 100)
	suite.Require().EqualError(err, "invalid round to report")
}

func (suite *KeeperTestSuite) TestTimedOutRoundCarriesPreviousAnswer() {
	suite.setup(100, 3, 1, 2, 3, 1)

	// answer round 1
	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.submit(1, 1, 110))
	suite.Require().NoError(suite.submit(2, 2, 200))

	suite.Require().False(suite.keeper.Supersedable(suite.ctx, 2))
	suite.advance(time.Duration(defaultTimeout+1) * time.Second)
	suite.Require().True(suite.keeper.TimedOut(suite.ctx, 2))
	suite.Require().True(suite.keeper.Supersedable(suite.ctx, 2))

	// oracle 1 opens round 3, which closes round 2 with round 1's answer
	suite.Require().NoError(suite.submit(1, 3, 300))
	round2 := suite.keeper.GetRound(suite.ctx, 2)
	suite.Require().Equal(int64(105), round2.Answer.Int64())
	suite.Require().Equal(uint32(1), round2.AnsweredInRound)
	suite.Require().Equal(uint64(suite.ctx.BlockTime().Unix()), round2.UpdatedAt)
	_, found := suite.keeper.GetRoundDetails(suite.ctx, 2)
	suite.Require().False(found)

	data, err := suite.keeper.GetRoundData(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), data.AnsweredInRound)
	suite.Require().Equal(uint32(1), suite.keeper.LatestRound(suite.ctx))
	suite.Require().Equal(uint32(3), suite.keeper.ReportingRoundID(suite.ctx))
}

func (suite *KeeperTestSuite) TestTimedOutFirstRoundHasNoData() {
	suite.setup(100, 3, 1, 2, 3, 1)

	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.advance(time.Duration(defaultTimeout+1) * time.Second)
	suite.Require().NoError(suite.submit(1, 2, 100))

	_, err := suite.keeper.GetRoundData(suite.ctx, 1)
	suite.Require().ErrorIs(err, types.ErrNoData)
	suite.Require().True(suite.keeper.GetAnswer(suite.ctx, 1).IsZero())
	suite.Require().NotZero(suite.keeper.GetTimestamp(suite.ctx, 1))
}

func (suite *KeeperTestSuite) TestAnsweredRoundKeepsAnswerAfterTimeout() {
	suite.setup(100, 2, 1, 1, 2, 0)
	requester := keepertest.TestAddr("requester")
	suite.Require().NoError(suite.keeper.SetRequesterPermissions(suite.ctx, suite.owner, requester, true, 0))

	// quorum of one answers round 1 while it still accepts a second value
	suite.Require().NoError(suite.submit(0, 1, 50))
	suite.Require().True(suite.keeper.AcceptingSubmissions(suite.ctx, 1))

	suite.advance(time.Duration(defaultTimeout+1) * time.Second)
	suite.Require().True(suite.keeper.TimedOut(suite.ctx, 1))

	roundID, err := suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(2), roundID)

	round1 := suite.keeper.GetRound(suite.ctx, 1)
	suite.Require().Equal(int64(50), round1.Answer.Int64())
	suite.Require().Equal(uint32(1), round1.AnsweredInRound)
	_, found := suite.keeper.GetRoundDetails(suite.ctx, 1)
	suite.Require().False(found)

	data, err := suite.keeper.LatestRoundData(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), data.RoundID)
	suite.Require().Equal(int64(50), data.Answer.Int64())
	suite.Require().Equal(uint32(1), data.AnsweredInRound)

	msg, broken := keeper.RoundAnswerInvariant(*suite.keeper)(suite.ctx)
	suite.Require().False(broken, msg)

	// round 2 times out unanswered and carries round 1's answer
	suite.advance(time.Duration(defaultTimeout+1) * time.Second)
	roundID, err = suite.keeper.RequestNewRound(suite.ctx, requester)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(3), roundID)

	round2 := suite.keeper.GetRound(suite.ctx, 2)
	suite.Require().Equal(int64(50), round2.Answer.Int64())
	suite.Require().Equal(uint32(1), round2.AnsweredInRound)
	suite.Require().Equal(uint32(1), suite.keeper.LatestRound(suite.ctx))

	msg, broken = keeper.RoundAnswerInvariant(*suite.keeper)(suite.ctx)
	suite.Require().False(broken, msg)
}

func (suite *KeeperTestSuite) TestLateSubmissionToPreviousRound() {
	suite.setup(100, 4, 1, 2, 3, 0)

	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.submit(1, 1, 102))
	suite.Require().NoError(suite.submit(0, 2, 200))

	// round 2 is unanswered, so round 1 still takes submissions
	suite.Require().Equal(types.Eligible, suite.keeper.ValidateOracleRound(suite.ctx, suite.oracles[2], 1))
	suite.Require().NoError(suite.submit(2, 1, 90))
	suite.Require().Equal(int64(100), suite.keeper.GetAnswer(suite.ctx, 1).Int64())
	suite.Require().False(suite.keeper.AcceptingSubmissions(suite.ctx, 1))

	// once round 2 is answered the exception closes
	suite.Require().NoError(suite.submit(1, 2, 210))
	suite.Require().Equal(int64(205), suite.keeper.GetAnswer(suite.ctx, 2).Int64())
	suite.Require().Equal(types.RejectInvalidRound, suite.keeper.ValidateOracleRound(suite.ctx, suite.oracles[3], 1))
}

func (suite *KeeperTestSuite) TestRestartDelay() {
	suite.setup(100, 3, 1, 1, 1, 1)

	suite.Require().NoError(suite.submit(0, 1, 100))

	// oracle 1 started round 1 and must wait a round before opening another
	err := suite.submit(0, 2, 100)
	suite.Require().EqualError(err, "round not accepting submissions")
	state := suite.keeper.OracleRoundState(suite.ctx, suite.oracles[0], 0)
	suite.Require().Equal(uint32(2), state.RoundID)
	suite.Require().False(state.EligibleToSubmit)

	suite.Require().NoError(suite.submit(1, 2, 100))
	suite.Require().NoError(suite.submit(0, 3, 100))

	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[0])
	suite.Require().Equal(uint32(3), status.LastStartedRound)
	suite.Require().Equal(uint32(3), status.LastReportedRound)
}

func (suite *KeeperTestSuite) TestSubmitRequiresFundsForPayment() {
	suite.setup(100, 3, 10, 1, 3, 2)

	// drain available funds below one payment
	funds := suite.keeper.GetFunds(suite.ctx)
	funds.Available = math.NewInt(5)
	funds.Allocated = math.NewInt(95)
	suite.Require().NoError(suite.keeper.SetFunds(suite.ctx, funds))

	err := suite.submit(0, 1, 100)
	suite.Require().ErrorIs(err, types.ErrSubtractionOverflow)
	suite.Require().Equal(uint32(0), suite.keeper.ReportingRoundID(suite.ctx))
}

func (suite *KeeperTestSuite) TestRemovedOracleCanFinishNextRound() {
	suite.setup(100, 3, 1, 1, 2, 1)

	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, suite.oracles[2:3], nil, nil, 1, 2, 1,
	))

	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[2])
	suite.Require().Equal(uint32(2), status.EndingRound)

	suite.Require().NoError(suite.submit(2, 2, 100))
	suite.Require().NoError(suite.submit(1, 3, 100))
	err := suite.submit(2, 3, 100)
	suite.Require().EqualError(err, "no longer allowed oracle")
}

func (suite *KeeperTestSuite) TestNotYetEnabledOracle() {
	suite.setup(100, 3, 1, 1, 3, 2)
	suite.Require().NoError(suite.submit(0, 1, 100))

	suite.Require().NoError(suite.keeper.ChangeOracles(
		suite.ctx, suite.owner, nil, suite.oracles[3:4], suite.admins[3:4], 1, 3, 2,
	))
	status, _ := suite.keeper.GetOracleStatus(suite.ctx, suite.oracles[3])
	suite.Require().Equal(uint32(2), status.StartingRound)

	err := suite.submit(3, 1, 100)
	suite.Require().EqualError(err, "not yet enabled oracle")
	suite.Require().NoError(suite.submit(3, 2, 100))
}
