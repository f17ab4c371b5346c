package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate means aggregate write methods start/manage atomic DB transactions internally.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	// WriteTxJoinsCaller means aggregate writes run in a savepoint of the caller's
	// transaction when one is supplied, and only open their own otherwise.
	WriteTxJoinsCaller WriteTxOwnership = "caller_joined"
)

// ReadPolicy defines how aggregate contracts should expose reads.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped allows only reads needed for invariant decisions in write flows.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyEventStream derives state exclusively by folding the aggregate's own stream.
	ReadPolicyEventStream ReadPolicy = "event_stream_fold"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
type Aggregate interface {
	Contract() Contract
}

// RequiresAggregateOwnedTx returns true when write transaction ownership is aggregate-owned.
func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// JoinsCallerTx returns true when writes participate in the caller's transaction.
func (c Contract) JoinsCallerTx() bool {
	return c.WriteTxOwnership == WriteTxJoinsCaller
}
