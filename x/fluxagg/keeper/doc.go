// Package keeper implements the fluxagg module keeper, a round based
// aggregator for values reported by a set of oracles.
//
// # Rounds
//
// Rounds are identified by increasing uint32 ids. Any enabled oracle opens the
// round after the reporting round by submitting to it, subject to its restart
// delay; authorized requesters may open it through RequestNewRound. A round
// accepts submissions until it holds MaxSubmissions values. Once it holds
// MinSubmissions values its answer is the median of the submissions and is
// recomputed on every later submission. A round that outlives its timeout
// without an answer takes over the previous answer when the next round opens.
// Nothing happens between calls: timeouts are only noticed by later calls.
//
// # Funds
//
// The aggregator pays each accepted submission from its available funds into
// the oracle's withdrawable balance. Configuration changes must leave enough
// available funds to pay every oracle for ReserveRounds rounds, and the owner
// can only withdraw what exceeds that reserve.
//
// # Atomicity
//
// Every mutating call runs in a cached context and only commits when it
// succeeds. The answer validator is notified after the submission commits, in
// its own cached context, and its failures are logged and dropped.
package keeper
