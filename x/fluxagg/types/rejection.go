package types

// Rejection is the outcome of checking whether an oracle may report on a
// round. The zero value means the oracle is eligible.
type Rejection uint8

const (
	Eligible Rejection = iota
	RejectNotEnabled
	RejectNotYetEnabled
	RejectNoLongerAllowed
	RejectReportedPrevious
	RejectInvalidRound
	RejectPrevNotSupersedable
)

var rejectionErrors = map[Rejection]error{
	RejectNotEnabled:          ErrNotEnabledOracle,
	RejectNotYetEnabled:       ErrNotYetEnabledOracle,
	RejectNoLongerAllowed:     ErrNoLongerAllowedOracle,
	RejectReportedPrevious:    ErrReportedPreviousRound,
	RejectInvalidRound:        ErrInvalidRoundToReport,
	RejectPrevNotSupersedable: ErrPrevRoundNotSupersedable,
}

// Err returns the contract error for the rejection, or nil when eligible.
func (r Rejection) Err() error {
	return rejectionErrors[r]
}

// String renders the rejection reason; empty when eligible.
func (r Rejection) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}
