// Package market holds the transfer marketplace model: read-model rows,
// listing statuses, domain events, and the pure folds that rebuild team and
// transfer state from an event stream.
package market
