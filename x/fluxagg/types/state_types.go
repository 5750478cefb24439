package types

import (
	"cosmossdk.io/math"
)

// Round is the finalized view of a round consumed by readers.
type Round struct {
	Answer          math.Int `json:"answer"`
	StartedAt       uint64   `json:"started_at"`
	UpdatedAt       uint64   `json:"updated_at"`
	AnsweredInRound uint32   `json:"answered_in_round"`
}

// NewRound returns an empty round with a zero answer.
func NewRound() Round {
	return Round{Answer: math.ZeroInt()}
}

// RoundDetails holds the in-progress state of a round that is still accepting
// submissions. Submissions keep their arrival order.
type RoundDetails struct {
	Submissions    []math.Int `json:"submissions"`
	MaxSubmissions uint32     `json:"max_submissions"`
	MinSubmissions uint32     `json:"min_submissions"`
	Timeout        uint64     `json:"timeout"`
	PaymentAmount  math.Int   `json:"payment_amount"`
}

// OracleStatus tracks one oracle's tenure, reporting history and earnings.
type OracleStatus struct {
	Withdrawable      math.Int `json:"withdrawable"`
	StartingRound     uint32   `json:"starting_round"`
	EndingRound       uint32   `json:"ending_round"`
	LastReportedRound uint32   `json:"last_reported_round"`
	LastStartedRound  uint32   `json:"last_started_round"`
	LatestSubmission  math.Int `json:"latest_submission"`
	Index             uint16   `json:"index"`
	Admin             string   `json:"admin"`
	PendingAdmin      string   `json:"pending_admin,omitempty"`
}

// NewOracleStatus returns the zero status of an oracle that was never added.
func NewOracleStatus() OracleStatus {
	return OracleStatus{
		Withdrawable:     math.ZeroInt(),
		LatestSubmission: math.ZeroInt(),
	}
}

// Enabled reports whether the oracle currently belongs to the oracle set.
func (o OracleStatus) Enabled() bool {
	return o.EndingRound == RoundMax
}

// Requester is an account allowed to force the opening of a new round.
type Requester struct {
	Authorized       bool   `json:"authorized"`
	Delay            uint32 `json:"delay"`
	LastStartedRound uint32 `json:"last_started_round"`
}

// Funds is the aggregator's bookkeeping of its ledger balance.
type Funds struct {
	Available math.Int `json:"available"`
	Allocated math.Int `json:"allocated"`
}

// NewFunds returns empty funds.
func NewFunds() Funds {
	return Funds{Available: math.ZeroInt(), Allocated: math.ZeroInt()}
}

// Counters holds the two round pointers of the aggregator.
type Counters struct {
	ReportingRoundID uint32 `json:"reporting_round_id"`
	LatestRoundID    uint32 `json:"latest_round_id"`
}

// RoundData is the answer view returned by round queries.
type RoundData struct {
	RoundID         uint32   `json:"round_id"`
	Answer          math.Int `json:"answer"`
	StartedAt       uint64   `json:"started_at"`
	UpdatedAt       uint64   `json:"updated_at"`
	AnsweredInRound uint32   `json:"answered_in_round"`
}

// OracleRoundState tells an oracle whether and where it should report next.
type OracleRoundState struct {
	EligibleToSubmit bool     `json:"eligible_to_submit"`
	RoundID          uint32   `json:"round_id"`
	LatestSubmission math.Int `json:"latest_submission"`
	StartedAt        uint64   `json:"started_at"`
	Timeout          uint64   `json:"timeout"`
	AvailableFunds   math.Int `json:"available_funds"`
	OracleCount      uint32   `json:"oracle_count"`
	PaymentAmount    math.Int `json:"payment_amount"`
}
