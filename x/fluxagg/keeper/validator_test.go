package keeper_test

import (
	"context"
	"errors"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/fluxagg/testutil/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

type validateCall struct {
	prevRoundID uint32
	prevAnswer  int64
	roundID     uint32
	answer      int64
}

type recordingValidator struct {
	calls []validateCall
	err   error
	panic bool
}

func (v *recordingValidator) Validate(_ context.Context, prevRoundID uint32, prevAnswer math.Int, roundID uint32, answer math.Int) error {
	v.calls = append(v.calls, validateCall{prevRoundID, prevAnswer.Int64(), roundID, answer.Int64()})
	if v.panic {
		panic("validator exploded")
	}
	return v.err
}

func (suite *KeeperTestSuite) registerValidator(v types.AnswerValidator) sdk.AccAddress {
	addr := keepertest.TestAddr("validator")
	suite.keeper.RegisterAnswerValidator(addr, v)
	suite.Require().NoError(suite.keeper.SetValidator(suite.ctx, suite.owner, addr))
	return addr
}

func (suite *KeeperTestSuite) TestValidatorNotifiedOnNewAnswer() {
	suite.setup(100, 3, 1, 2, 3, 0)
	v := &recordingValidator{}
	addr := suite.registerValidator(v)
	suite.Require().Equal(addr.String(), suite.keeper.GetValidator(suite.ctx))
	suite.Require().True(suite.hasEvent(types.EventTypeValidatorUpdated))

	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().Empty(v.calls)

	suite.Require().NoError(suite.submit(1, 1, 120))
	suite.Require().NoError(suite.submit(0, 2, 200))
	suite.Require().NoError(suite.submit(1, 2, 220))

	suite.Require().Equal([]validateCall{
		{prevRoundID: 0, prevAnswer: 0, roundID: 1, answer: 110},
		{prevRoundID: 1, prevAnswer: 110, roundID: 2, answer: 210},
	}, v.calls)
}

func (suite *KeeperTestSuite) TestValidatorFailureIsSwallowed() {
	suite.setup(100, 3, 1, 1, 3, 0)

	failing := &recordingValidator{err: errors.New("rejected")}
	suite.registerValidator(failing)
	suite.Require().NoError(suite.submit(0, 1, 100))
	suite.Require().Len(failing.calls, 1)
	suite.Require().Equal(int64(100), suite.keeper.GetAnswer(suite.ctx, 1).Int64())

	panicking := &recordingValidator{panic: true}
	suite.registerValidator(panicking)
	suite.Require().NoError(suite.submit(1, 1, 110))
	suite.Require().Len(panicking.calls, 1)
	suite.Require().Equal(int64(105), suite.keeper.GetAnswer(suite.ctx, 1).Int64())
}

func (suite *KeeperTestSuite) TestUnregisteredOrClearedValidator() {
	suite.setup(100, 3, 1, 1, 3, 0)
	addr := keepertest.TestAddr("ghost")
	suite.Require().NoError(suite.keeper.SetValidator(suite.ctx, suite.owner, addr))
	suite.Require().NoError(suite.submit(0, 1, 100))

	suite.Require().NoError(suite.keeper.SetValidator(suite.ctx, suite.owner, nil))
	suite.Require().Empty(suite.keeper.GetValidator(suite.ctx))
	suite.Require().NoError(suite.submit(1, 1, 100))
}
