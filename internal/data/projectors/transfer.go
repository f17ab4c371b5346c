package projectors

import (
	"fmt"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

// OnFundsTransferred debits the buyer and credits the seller. The debit is
// conditional on the balance covering the amount.
func (p *Projector) OnFundsTransferred(dbc dbctx.Context, ev types.FundsTransferred) error {
	const op = "Projector.OnFundsTransferred"
	ok, err := p.deps.Teams.Debit(dbc, ev.FromUUID, ev.Amount)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeInsufficientFunds, op, domainagg.MsgInsufficientFunds, nil)
	}
	ok, err = p.deps.Teams.Credit(dbc, ev.ToUUID, ev.Amount)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("selling team %s not found", ev.ToUUID), nil)
	}
	return nil
}

func (p *Projector) OnTransferCompleted(dbc dbctx.Context, ev types.TransferCompleted) error {
	const op = "Projector.OnTransferCompleted"
	ok, err := p.deps.Players.AssignTeam(dbc, ev.PlayerID, ev.NewTeamUUID)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("player %s not found", ev.PlayerID), nil)
	}
	if p.deps.Listings == nil {
		return nil
	}
	return p.deps.Listings.MarkSold(dbc, ev.PlayerID)
}
