// Package aggregates defines domain-facing aggregate contracts.
//
// Each contract is a write boundary where several rows must change together:
// completing a practice session, completing or skipping a daily challenge, and
// mutating a user's reward ledger.
package aggregates
