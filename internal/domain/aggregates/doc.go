// Package aggregates defines domain-facing aggregate contracts for the
// transfer ledger and the error taxonomy shared by every write path.
//
// Contracts avoid persistence details beyond the transaction handle, and
// represent the write boundaries where ledger invariants hold atomically.
package aggregates
