package aggregates

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

type TeamAggregateDeps struct {
	Base BaseDeps

	Store eventstore.Store
}

type teamAggregate struct {
	deps TeamAggregateDeps
}

func NewTeamAggregate(deps TeamAggregateDeps) domainagg.TeamAggregate {
	deps.Base = deps.Base.withDefaults()
	return &teamAggregate{deps: deps}
}

func (a *teamAggregate) Contract() domainagg.Contract {
	return domainagg.TeamAggregateContract
}

func (a *teamAggregate) Retrieve(dbc dbctx.Context, teamUUID uuid.UUID) (*types.TeamState, error) {
	events, err := eventstore.Collect(eventstore.Decoded(a.deps.Store.Load(dbc, teamUUID)))
	if err != nil {
		return nil, err
	}
	return types.FoldTeam(teamUUID, events), nil
}

func (a *teamAggregate) CreateTeam(dbc dbctx.Context, in domainagg.CreateTeamInput) (domainagg.TeamResult, error) {
	const op = "Market.Team.CreateTeam"
	var out domainagg.TeamResult

	name := strings.TrimSpace(in.Name)
	if in.TeamUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing team_uuid", nil)
	}
	if name == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing team name", nil)
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		state, err := a.Retrieve(dbc, in.TeamUUID)
		if err != nil {
			return err
		}
		if state.Version > 0 {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("team %s already exists", in.TeamUUID), nil)
		}
		out, err = a.record(dbc, state, types.TeamCreated{
			TeamUUID: in.TeamUUID,
			Name:     name,
			Country:  strings.TrimSpace(in.Country),
		})
		return err
	})
	if err != nil {
		return domainagg.TeamResult{}, err
	}
	return out, nil
}

func (a *teamAggregate) AllocateInitialFunds(dbc dbctx.Context, teamUUID uuid.UUID, amount decimal.Decimal) (domainagg.TeamResult, error) {
	const op = "Market.Team.AllocateInitialFunds"
	var out domainagg.TeamResult

	amount = types.RoundMoney(amount)
	if teamUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing team_uuid", nil)
	}
	if !amount.IsPositive() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "initial funds must be positive", nil)
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		state, err := a.Retrieve(dbc, teamUUID)
		if err != nil {
			return err
		}
		if !state.Created {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("team %s not created", teamUUID), nil)
		}
		out, err = a.record(dbc, state, types.InitialFundsAllocated{
			TeamUUID: teamUUID,
			Amount:   amount,
			Reason:   types.ReasonInitialFunding,
		})
		return err
	})
	if err != nil {
		return domainagg.TeamResult{}, err
	}
	return out, nil
}

func (a *teamAggregate) RecordFundsTransferred(dbc dbctx.Context, teamUUID uuid.UUID, ev types.FundsTransferred) (domainagg.TeamResult, error) {
	const op = "Market.Team.RecordFundsTransferred"
	var out domainagg.TeamResult

	if teamUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing team_uuid", nil)
	}
	if ev.FromUUID != teamUUID && ev.ToUUID != teamUUID {
		return out, InvariantError(fmt.Sprintf("team %s is not a party to transfer %s", teamUUID, ev.TransferUUID))
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		state, err := a.Retrieve(dbc, teamUUID)
		if err != nil {
			return err
		}
		if !state.Created {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("team %s not created", teamUUID), nil)
		}
		out, err = a.record(dbc, state, ev)
		return err
	})
	if err != nil {
		return domainagg.TeamResult{}, err
	}
	return out, nil
}

func (a *teamAggregate) record(dbc dbctx.Context, state *types.TeamState, events ...types.Event) (domainagg.TeamResult, error) {
	res, err := a.deps.Store.Append(dbc, state.TeamUUID, types.StreamTeam, state.Version, events...)
	if err != nil {
		return domainagg.TeamResult{}, err
	}
	for _, rec := range res.Events {
		state.Apply(rec.Event)
	}
	return domainagg.TeamResult{State: *state, Events: res.Events}, nil
}
