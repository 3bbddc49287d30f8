// Package vote implements the vote submission gatekeeper: validation,
// throttling, deduplication, and the compensating-write logic that decides
// whether a submission is accepted.
//
// The decision sequence per request is
//
//	Validator -> ThrottleGate -> DedupGate.Check -> LedgerWriter.Append -> DedupGate.Commit
//
// composed by Service.Submit. A request that fails any stage short-circuits
// with a specific outcome; no partial effects are committed past the failing
// stage except the explicit marker rollback in LedgerWriter.
package vote
