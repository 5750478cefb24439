package types

import (
	errorsmod "cosmossdk.io/errors"
)

// The descriptions of these errors are part of the aggregator contract:
// clients match on them verbatim, so they must not be reworded.
var (
	// Submission errors
	ErrValueBelowMin          = errorsmod.Register(ModuleName, 2, "value below minSubmissionValue")
	ErrValueAboveMax          = errorsmod.Register(ModuleName, 3, "value above maxSubmissionValue")
	ErrNotAcceptingSubmission = errorsmod.Register(ModuleName, 4, "round not accepting submissions")

	// Oracle round validation errors
	ErrNotEnabledOracle         = errorsmod.Register(ModuleName, 10, "not enabled oracle")
	ErrNotYetEnabledOracle      = errorsmod.Register(ModuleName, 11, "not yet enabled oracle")
	ErrNoLongerAllowedOracle    = errorsmod.Register(ModuleName, 12, "no longer allowed oracle")
	ErrReportedPreviousRound    = errorsmod.Register(ModuleName, 13, "cannot report on previous rounds")
	ErrInvalidRoundToReport     = errorsmod.Register(ModuleName, 14, "invalid round to report")
	ErrPrevRoundNotSupersedable = errorsmod.Register(ModuleName, 15, "previous round not supersedable")

	// Oracle set errors
	ErrOracleAlreadyEnabled = errorsmod.Register(ModuleName, 20, "oracle already enabled")
	ErrEmptyAdmin           = errorsmod.Register(ModuleName, 21, "cannot set admin to 0")
	ErrOverwriteAdmin       = errorsmod.Register(ModuleName, 22, "owner cannot overwrite admin")
	ErrOracleNotEnabled     = errorsmod.Register(ModuleName, 23, "oracle not enabled")
	ErrOracleAdminMismatch  = errorsmod.Register(ModuleName, 24, "need same oracle and admin count")
	ErrMaxOracles           = errorsmod.Register(ModuleName, 25, "max oracles allowed")
	ErrOnlyOwner            = errorsmod.Register(ModuleName, 26, "Only contract owner can call this method.")
	ErrInvalidOracleAddress = errorsmod.Register(ModuleName, 27, "invalid oracle address")

	// Round configuration errors
	ErrMaxBelowMin         = errorsmod.Register(ModuleName, 30, "max must equal/exceed min")
	ErrMaxExceedsTotal     = errorsmod.Register(ModuleName, 31, "max cannot exceed total")
	ErrDelayExceedsTotal   = errorsmod.Register(ModuleName, 32, "delay cannot exceed total")
	ErrInsufficientPayment = errorsmod.Register(ModuleName, 33, "insufficient funds for payment")
	ErrMinSubmissionsZero  = errorsmod.Register(ModuleName, 34, "min must be greater than 0")

	// Requester errors
	ErrNotAuthorizedRequester = errorsmod.Register(ModuleName, 40, "not authorized requester")
	ErrPrevRoundNotFinished   = errorsmod.Register(ModuleName, 41, "prev round must be supersedable")
	ErrMustDelayRequests      = errorsmod.Register(ModuleName, 42, "must delay requests")

	// Funds and admin errors
	ErrOnlyAdmin                = errorsmod.Register(ModuleName, 50, "only callable by admin")
	ErrInsufficientWithdrawable = errorsmod.Register(ModuleName, 51, "insufficient withdrawable funds")
	ErrInsufficientReserve      = errorsmod.Register(ModuleName, 52, "insufficient reserve funds")
	ErrOnlyPendingAdmin         = errorsmod.Register(ModuleName, 53, "only callable by pending admin")
	ErrTransferFailed           = errorsmod.Register(ModuleName, 54, "token transfer failed")
	ErrInvalidPaymentAmount     = errorsmod.Register(ModuleName, 55, "payment amount must be non-negative")

	// Read errors
	ErrNoData   = errorsmod.Register(ModuleName, 60, "No data present")
	ErrNoAccess = errorsmod.Register(ModuleName, 61, "No access")

	// Arithmetic and state errors
	ErrSubtractionOverflow = errorsmod.Register(ModuleName, 70, "subtraction overflow")
	ErrAdditionOverflow    = errorsmod.Register(ModuleName, 71, "addition overflow")
	ErrStateCorruption     = errorsmod.Register(ModuleName, 72, "state corruption detected")
)
