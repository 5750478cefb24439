package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorTextsAreContract(t *testing.T) {
	cases := map[error]string{
		ErrValueBelowMin:            "value below minSubmissionValue",
		ErrValueAboveMax:            "value above maxSubmissionValue",
		ErrNotAcceptingSubmission:   "round not accepting submissions",
		ErrOverwriteAdmin:           "owner cannot overwrite admin",
		ErrOnlyOwner:                "Only contract owner can call this method.",
		ErrInsufficientPayment:      "insufficient funds for payment",
		ErrPrevRoundNotFinished:     "prev round must be supersedable",
		ErrInsufficientWithdrawable: "insufficient withdrawable funds",
		ErrNoData:                   "No data present",
	}
	for err, text := range cases {
		require.Equal(t, text, err.Error())
	}
}

func TestRejection(t *testing.T) {
	require.NoError(t, Eligible.Err())
	require.Empty(t, Eligible.String())

	tests := []struct {
		r    Rejection
		want error
		text string
	}{
		{RejectNotEnabled, ErrNotEnabledOracle, "not enabled oracle"},
		{RejectNotYetEnabled, ErrNotYetEnabledOracle, "not yet enabled oracle"},
		{RejectNoLongerAllowed, ErrNoLongerAllowedOracle, "no longer allowed oracle"},
		{RejectReportedPrevious, ErrReportedPreviousRound, "cannot report on previous rounds"},
		{RejectInvalidRound, ErrInvalidRoundToReport, "invalid round to report"},
		{RejectPrevNotSupersedable, ErrPrevRoundNotSupersedable, "previous round not supersedable"},
	}
	for _, tc := range tests {
		require.True(t, errors.Is(tc.r.Err(), tc.want))
		require.Equal(t, tc.text, tc.r.String())
	}
}
