package types

// Event types for the fluxagg module
const (
	EventTypeNewRound                   = "new_round"
	EventTypeAnswerUpdated              = "answer_updated"
	EventTypeSubmissionReceived         = "submission_received"
	EventTypeAvailableFundsUpdated      = "available_funds_updated"
	EventTypeOraclePermissionsUpdated   = "oracle_permissions_updated"
	EventTypeOracleAdminUpdated         = "oracle_admin_updated"
	EventTypeOracleAdminUpdateRequested = "oracle_admin_update_requested"
	EventTypeRoundDetailsUpdated        = "round_details_updated"
	EventTypeRequesterPermissionsSet    = "requester_permissions_set"
	EventTypeValidatorUpdated           = "validator_updated"
	EventTypePaymentWithdrawn           = "payment_withdrawn"
	EventTypeFundsWithdrawn             = "funds_withdrawn"
)

// Event attribute keys for the fluxagg module
const (
	AttributeKeyRoundID        = "round_id"
	AttributeKeyStartedBy      = "started_by"
	AttributeKeyStartedAt      = "started_at"
	AttributeKeyAnswer         = "answer"
	AttributeKeyUpdatedAt      = "updated_at"
	AttributeKeySubmission     = "submission"
	AttributeKeyOracle         = "oracle"
	AttributeKeyAmount         = "amount"
	AttributeKeyWhitelisted    = "whitelisted"
	AttributeKeyAdmin          = "admin"
	AttributeKeyNewAdmin       = "new_admin"
	AttributeKeyPaymentAmount  = "payment_amount"
	AttributeKeyMinSubmissions = "min_submission_count"
	AttributeKeyMaxSubmissions = "max_submission_count"
	AttributeKeyRestartDelay   = "restart_delay"
	AttributeKeyTimeout        = "timeout"
	AttributeKeyRequester      = "requester"
	AttributeKeyAuthorized     = "authorized"
	AttributeKeyDelay          = "delay"
	AttributeKeyPrevious       = "previous"
	AttributeKeyCurrent        = "current"
	AttributeKeyRecipient      = "recipient"
)
