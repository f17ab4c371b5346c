package aggregates

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

var TeamAggregateContract = Contract{
	Name:             "Market.TeamAggregate",
	WriteTxOwnership: WriteTxJoinsCaller,
	ReadPolicy:       ReadPolicyEventStream,
	Notes:            "Team balance is the fold of funding and transfer events on the team stream.",
}

// TeamAggregate records team lifecycle and funding facts.
type TeamAggregate interface {
	Aggregate

	// Retrieve folds the team stream. An empty stream yields a state with Created=false.
	Retrieve(dbc dbctx.Context, teamUUID uuid.UUID) (*market.TeamState, error)

	// CreateTeam appends TeamCreated to an empty stream.
	CreateTeam(dbc dbctx.Context, in CreateTeamInput) (TeamResult, error)

	// AllocateInitialFunds appends InitialFundsAllocated to a created team.
	AllocateInitialFunds(dbc dbctx.Context, teamUUID uuid.UUID, amount decimal.Decimal) (TeamResult, error)

	// RecordFundsTransferred appends a transfer's funds movement to a participating team.
	RecordFundsTransferred(dbc dbctx.Context, teamUUID uuid.UUID, ev market.FundsTransferred) (TeamResult, error)
}

type CreateTeamInput struct {
	TeamUUID uuid.UUID
	Name     string
	Country  string
}

type TeamResult struct {
	State  market.TeamState
	Events []market.RecordedEvent
}
