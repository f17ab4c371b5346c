package projectors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

type RebuildReport struct {
	Teams     int
	Transfers int
}

type BalanceCheck struct {
	TeamUUID  uuid.UUID
	Folded    decimal.Decimal
	ReadModel decimal.Decimal
	Version   int64
}

func (c BalanceCheck) Match() bool { return c.Folded.Equal(c.ReadModel) }

// Rebuild recomputes team balances and player ownership from the log.
// Balances are assigned from each team's fold under the team's row lock,
// ownership is replayed from TransferCompleted in global order. Running it
// twice yields the same state, and a failed team leaves its row untouched.
//
// When dbc carries a transaction the rebuild runs serially inside it;
// otherwise every team is rebuilt in its own transaction, concurrently.
func (p *Projector) Rebuild(dbc dbctx.Context) (RebuildReport, error) {
	var report RebuildReport
	if p.deps.Reader == nil {
		return report, domainagg.NewError(domainagg.CodeInternal, "Projector.Rebuild", "projector has no stream reader", nil)
	}

	ids, err := p.deps.Teams.ListIDs(dbc)
	if err != nil {
		return report, fmt.Errorf("list teams: %w", err)
	}

	limit := p.deps.RebuildConcurrency
	if dbc.Tx != nil {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctxOf(dbc))
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return p.inTx(dbctx.Context{Ctx: gctx, Tx: dbc.Tx}, func(tdbc dbctx.Context) error {
				return p.rebuildTeam(tdbc, id)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Teams = len(ids)

	n, err := p.replayOwnership(dbc)
	if err != nil {
		return report, err
	}
	report.Transfers = n

	p.log.Info("projections rebuilt", "teams", report.Teams, "transfers", report.Transfers)
	return report, nil
}

func (p *Projector) rebuildTeam(dbc dbctx.Context, id uuid.UUID) error {
	// Appends to this team's stream project under the same lock.
	if _, err := p.deps.Teams.LockByIDs(dbc, []uuid.UUID{id}); err != nil {
		return fmt.Errorf("lock team %s: %w", id, err)
	}
	events, err := eventstore.Collect(eventstore.Decoded(p.deps.Reader.Load(dbc, id)))
	if err != nil {
		return fmt.Errorf("load team %s: %w", id, err)
	}
	state := types.FoldTeam(id, events)
	if state.Version == 0 {
		// Seeded without a stream; the row keeps its balance.
		return nil
	}
	if state.Balance.IsNegative() {
		return domainagg.NewError(domainagg.CodeInvariantViolation, "Projector.Rebuild",
			fmt.Sprintf("team %s folds to negative balance %s", id, state.Balance), nil)
	}
	return p.deps.Teams.SetBalance(dbc, id, state.Balance)
}

func (p *Projector) replayOwnership(dbc dbctx.Context) (int, error) {
	var n int
	for row, err := range p.deps.Reader.LoadAfter(dbc, 0, types.StreamTransfer) {
		if err != nil {
			return n, err
		}
		if row.EventType != types.EventTransferCompleted {
			continue
		}
		rec, err := eventstore.Decode(row)
		if err != nil {
			return n, err
		}
		ev := rec.Event.(types.TransferCompleted)
		if _, err := p.deps.Players.AssignTeam(dbc, ev.PlayerID, ev.NewTeamUUID); err != nil {
			return n, fmt.Errorf("assign player %s: %w", ev.PlayerID, err)
		}
		n++
	}
	return n, nil
}

// VerifyTeamBalance compares the folded team stream with the read model.
func (p *Projector) VerifyTeamBalance(dbc dbctx.Context, teamUUID uuid.UUID) (BalanceCheck, error) {
	const op = "Projector.VerifyTeamBalance"
	check := BalanceCheck{TeamUUID: teamUUID}
	if p.deps.Reader == nil {
		return check, domainagg.NewError(domainagg.CodeInternal, op, "projector has no stream reader", nil)
	}
	events, err := eventstore.Collect(eventstore.Decoded(p.deps.Reader.Load(dbc, teamUUID)))
	if err != nil {
		return check, err
	}
	state := types.FoldTeam(teamUUID, events)
	team, err := p.deps.Teams.GetByID(dbc, teamUUID)
	if err != nil {
		return check, err
	}
	if team == nil {
		return check, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("team %s not found", teamUUID), nil)
	}
	check.Folded = state.Balance
	check.ReadModel = team.Balance
	check.Version = state.Version
	return check, nil
}

func (p *Projector) inTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return p.deps.DB.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func ctxOf(dbc dbctx.Context) context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return dbc.Ctx
}
