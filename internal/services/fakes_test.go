package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
)

type fakeRunner struct {
	calls int
}

func (r *fakeRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

func (r *fakeRunner) InNestedTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	return fn(dbc)
}

type fakeListings struct {
	listing       *types.TransferListing
	lockErr       error
	processingFor []uuid.UUID
}

func (f *fakeListings) Contract() domainagg.Contract {
	return domainagg.ListingStateMachineContract
}

func (f *fakeListings) Create(dbctx.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*types.TransferListing, error) {
	return f.listing, nil
}

func (f *fakeListings) LockActiveForPlayer(_ dbctx.Context, playerID uuid.UUID) (*types.TransferListing, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	if f.listing == nil || f.listing.PlayerID != playerID {
		return nil, domainagg.NewError(domainagg.CodeNotAvailable, "fake", domainagg.MsgNotAvailable, nil)
	}
	return f.listing, nil
}

func (f *fakeListings) LockByID(dbctx.Context, uuid.UUID) (*types.TransferListing, error) {
	return f.listing, nil
}

func (f *fakeListings) MarkProcessing(_ dbctx.Context, l *types.TransferListing) error {
	f.processingFor = append(f.processingFor, l.PlayerID)
	l.Status = types.TransferStatusProcessing
	return nil
}

func (f *fakeListings) MarkSold(dbctx.Context, uuid.UUID) error { return nil }

func (f *fakeListings) MarkCanceled(_ dbctx.Context, l *types.TransferListing) error {
	l.Status = types.TransferStatusCanceled
	return nil
}

type fakeTransfers struct {
	initiateErr error
	fundsErr    error
	lastInput   domainagg.InitiateTransferInput
	sellerUUID  uuid.UUID
}

func (f *fakeTransfers) Contract() domainagg.Contract {
	return domainagg.TransferAggregateContract
}

func (f *fakeTransfers) Retrieve(dbctx.Context, uuid.UUID) (*types.TransferState, error) {
	return nil, nil
}

func (f *fakeTransfers) InitiateTransfer(_ dbctx.Context, in domainagg.InitiateTransferInput) (domainagg.TransferResult, error) {
	f.lastInput = in
	if f.initiateErr != nil {
		return domainagg.TransferResult{}, f.initiateErr
	}
	state := types.TransferState{
		TransferUUID: in.TransferUUID,
		PlayerID:     in.PlayerID,
		SellerUUID:   f.sellerUUID,
		BuyerUUID:    in.BuyerTeamUUID,
		Fee:          in.Fee,
		Version:      1,
	}
	return domainagg.TransferResult{
		State: state,
		Events: []types.RecordedEvent{
			transferEvent(in.TransferUUID, 1, types.TransferInitiated{TransferUUID: in.TransferUUID, PlayerID: in.PlayerID, BuyerUUID: in.BuyerTeamUUID, SellerUUID: f.sellerUUID, Fee: in.Fee}),
		},
	}, nil
}

func (f *fakeTransfers) TransferFunds(_ dbctx.Context, transferUUID uuid.UUID) (domainagg.TransferResult, error) {
	if f.fundsErr != nil {
		return domainagg.TransferResult{}, f.fundsErr
	}
	ev := types.FundsTransferred{TransferUUID: transferUUID, FromUUID: f.lastInput.BuyerTeamUUID, ToUUID: f.sellerUUID, Amount: f.lastInput.Fee, Reason: types.ReasonPlayerTransfer}
	return domainagg.TransferResult{
		Events: []types.RecordedEvent{
			transferEvent(transferUUID, 2, ev),
			{StreamID: f.lastInput.BuyerTeamUUID, StreamType: types.StreamTeam, Version: 3, Type: ev.EventType(), Event: ev},
			{StreamID: f.sellerUUID, StreamType: types.StreamTeam, Version: 3, Type: ev.EventType(), Event: ev},
		},
	}, nil
}

func (f *fakeTransfers) CompleteTransfer(_ dbctx.Context, transferUUID uuid.UUID) (domainagg.TransferResult, error) {
	ev := types.TransferCompleted{TransferUUID: transferUUID, PlayerID: f.lastInput.PlayerID, NewTeamUUID: f.lastInput.BuyerTeamUUID, PreviousTeamUUID: f.sellerUUID}
	return domainagg.TransferResult{
		Events: []types.RecordedEvent{transferEvent(transferUUID, 3, ev)},
	}, nil
}

func transferEvent(streamID uuid.UUID, version int64, ev types.Event) types.RecordedEvent {
	return types.RecordedEvent{
		StreamID:   streamID,
		StreamType: types.StreamTransfer,
		Version:    version,
		Type:       ev.EventType(),
		Event:      ev,
	}
}

type fakeTeamRepo struct {
	repos.TeamRepo
	teams map[uuid.UUID]*types.Team
}

func (f *fakeTeamRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Team, error) {
	return f.teams[id], nil
}

type fakePlayerRepo struct {
	repos.PlayerRepo
	players map[uuid.UUID]*types.Player
}

func (f *fakePlayerRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Player, error) {
	return f.players[id], nil
}

func (f *fakePlayerRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Player, error) {
	return f.GetByID(dbc, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	calls  int
	events []types.RecordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events []types.RecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.events = append(p.events, events...)
	return p.err
}

type recordingScheduler struct {
	mu      sync.Mutex
	players []uuid.UUID
	err     error
}

func (s *recordingScheduler) Schedule(_ context.Context, _ uuid.UUID, playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, playerID)
	return s.err
}

func (s *recordingScheduler) Name() string { return "recording" }

type recordingSink struct {
	msgs []realtime.FeedMessage
	err  error
}

func (s *recordingSink) Publish(_ context.Context, msg realtime.FeedMessage) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}
