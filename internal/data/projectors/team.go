package projectors

import (
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

func (p *Projector) OnTeamCreated(dbc dbctx.Context, ev types.TeamCreated) error {
	return p.deps.Teams.Upsert(dbc, &types.Team{
		ID:      ev.TeamUUID,
		Name:    ev.Name,
		Country: ev.Country,
		Balance: decimal.Zero,
	})
}

// OnInitialFundsAllocated assigns the folded stream balance, so replaying
// the event never double counts.
func (p *Projector) OnInitialFundsAllocated(dbc dbctx.Context, ev types.InitialFundsAllocated) error {
	state, err := p.foldTeam(dbc, ev)
	if err != nil {
		return err
	}
	return p.deps.Teams.SetBalance(dbc, ev.TeamUUID, state.Balance)
}

func (p *Projector) foldTeam(dbc dbctx.Context, ev types.InitialFundsAllocated) (*types.TeamState, error) {
	if p.deps.Reader == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, "Projector.foldTeam", "projector has no stream reader", nil)
	}
	events, err := eventstore.Collect(eventstore.Decoded(p.deps.Reader.Load(dbc, ev.TeamUUID)))
	if err != nil {
		return nil, err
	}
	return types.FoldTeam(ev.TeamUUID, events), nil
}
