// Package projectors keeps the relational read models in step with the
// event log. Handle is installed as the event store's append hook, so every
// projection runs inside the transaction that appended the event.
package projectors

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type Deps struct {
	DB  *gorm.DB
	Log *logger.Logger

	// Reader loads streams for fold-based projections. It must not carry
	// this projector as its append hook.
	Reader eventstore.Store

	Teams    repos.TeamRepo
	Players  repos.PlayerRepo
	Listings domainagg.ListingStateMachine

	// RebuildConcurrency bounds concurrent team rebuilds. Defaults to 4.
	RebuildConcurrency int
}

type Projector struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) *Projector {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.RebuildConcurrency <= 0 {
		deps.RebuildConcurrency = 4
	}
	return &Projector{deps: deps, log: deps.Log.With("component", "Projector")}
}

// Handle dispatches one appended event to its projection.
func (p *Projector) Handle(dbc dbctx.Context, rec types.RecordedEvent) error {
	var err error
	switch ev := types.Deref(rec.Event).(type) {
	case types.TeamCreated:
		err = p.OnTeamCreated(dbc, ev)
	case types.InitialFundsAllocated:
		err = p.OnInitialFundsAllocated(dbc, ev)
	case types.FundsTransferred:
		// The same fact is recorded on both team streams; move money once.
		if rec.StreamType != types.StreamTransfer {
			return nil
		}
		err = p.OnFundsTransferred(dbc, ev)
	case types.TransferCompleted:
		err = p.OnTransferCompleted(dbc, ev)
	case types.TransferInitiated:
		return nil
	default:
		return domainagg.NewError(domainagg.CodeInternal, "Projector.Handle", fmt.Sprintf("no projection for %s", rec.Type), nil)
	}
	if err != nil {
		p.log.Warn("projection failed",
			"event_type", rec.Type,
			"stream_id", rec.StreamID,
			"version", rec.Version,
			"error", err,
		)
	}
	return err
}
