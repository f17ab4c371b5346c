package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	"github.com/yungbote/transfermarket-backend/internal/data/projectors"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	"github.com/yungbote/transfermarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type market struct {
	db        *gorm.DB
	teams     repos.TeamRepo
	players   repos.PlayerRepo
	listings  repos.TransferListingRepo
	proj      *projectors.Projector
	teamSvc   services.TeamService
	listSvc   services.TransferListingService
	transfers services.TransferService
	growth    services.ValueGrowthService
	auth      services.AuthService
}

func newMarket(t *testing.T) market {
	t.Helper()
	return newMarketWithHook(t, nil)
}

// newMarketWithHook builds the market with wrap around the projection hook.
func newMarketWithHook(t *testing.T, wrap func(eventstore.AppendHook) eventstore.AppendHook) market {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	cfg := services.DefaultMarketConfig()
	base := aggregates.BaseDeps{DB: db, Log: log}
	runner := aggregates.NewGormTxRunner(db)

	teams := repos.NewTeamRepo(db, log)
	players := repos.NewPlayerRepo(db, log)
	listingRows := repos.NewTransferListingRepo(db, log)
	listings := aggregates.NewListingStateMachine(aggregates.ListingStateMachineDeps{Base: base, Listings: listingRows})
	proj := projectors.New(projectors.Deps{
		DB:       db,
		Log:      log,
		Reader:   eventstore.New(db, log, nil),
		Teams:    teams,
		Players:  players,
		Listings: listings,
	})
	hook := eventstore.AppendHook(proj.Handle)
	if wrap != nil {
		hook = wrap(hook)
	}
	store := eventstore.New(db, log, hook)
	teamAgg := aggregates.NewTeamAggregate(aggregates.TeamAggregateDeps{Base: base, Store: store})
	transferAgg := aggregates.NewTransferAggregate(aggregates.TransferAggregateDeps{
		Base:       base,
		Store:      store,
		Teams:      teamAgg,
		TeamRepo:   teams,
		PlayerRepo: players,
	})

	teamSvc := services.NewTeamService(log, runner, teamAgg, teams, players, nil, cfg)
	return market{
		db:       db,
		teams:    teams,
		players:  players,
		listings: listingRows,
		proj:     proj,
		teamSvc:  teamSvc,
		listSvc:  services.NewTransferListingService(log, runner, listings, listingRows, players, teams, nil, cfg),
		transfers: services.NewTransferService(log, services.TransferServiceDeps{
			Runner:    runner,
			Listings:  listings,
			Transfers: transferAgg,
			Teams:     teams,
			Players:   players,
			Config:    cfg,
		}),
		growth: services.NewValueGrowthService(db, log, players, cfg, func(int, int) int { return 10 }),
		auth:   services.NewAuthService(log, runner, repos.NewUserRepo(db, log), teamSvc, "integration-secret", 0),
	}
}

func (m market) team(t *testing.T, name string) *types.Team {
	t.Helper()
	team, err := m.teamSvc.CreateTeam(dbctx.Background(context.Background()), name, "Georgia")
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	testutil.Cleanup(t, m.db, team.ID)
	return team
}

func (m market) firstPlayer(t *testing.T, teamID uuid.UUID) *types.Player {
	t.Helper()
	rows, err := m.players.ListByTeam(dbctx.Background(context.Background()), teamID, 0, 1)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByTeam: rows=%d err=%v", len(rows), err)
	}
	return rows[0]
}

func (m market) balance(t *testing.T, teamID uuid.UUID) decimal.Decimal {
	t.Helper()
	team, err := m.teams.GetByID(dbctx.Background(context.Background()), teamID)
	if err != nil || team == nil {
		t.Fatalf("GetByID team: %v", err)
	}
	return team.Balance
}

func (m market) list(t *testing.T, playerID, teamID uuid.UUID, price int64) *types.TransferListing {
	t.Helper()
	row, err := m.listSvc.ListForTransfer(context.Background(), playerID, teamID, decimal.NewFromInt(price))
	if err != nil {
		t.Fatalf("ListForTransfer: %v", err)
	}
	return row
}

func TestCreateTeamGeneratesFundedRoster(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	team := m.team(t, "Dinamo")

	if !team.Balance.Equal(decimal.NewFromInt(5_000_000)) {
		t.Fatalf("balance: want=5000000 got=%s", team.Balance)
	}
	view, err := m.teamSvc.GetTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if view.PlayerCount != 20 {
		t.Fatalf("player count: want=%d got=%d", 20, view.PlayerCount)
	}
	if !view.TeamValue.Equal(decimal.NewFromInt(20_000_000)) {
		t.Fatalf("team value: want=20000000 got=%s", view.TeamValue)
	}
	check, err := m.proj.VerifyTeamBalance(dbctx.Background(ctx), team.ID)
	if err != nil {
		t.Fatalf("VerifyTeamBalance: %v", err)
	}
	if !check.Match() {
		t.Fatalf("folded balance %s does not match read model %s", check.Folded, check.ReadModel)
	}
}

func TestPurchaseMovesPlayerAndMoney(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	seller := m.team(t, "Seller")
	buyer := m.team(t, "Buyer")
	player := m.firstPlayer(t, seller.ID)
	listing := m.list(t, player.ID, seller.ID, 1_500_000)

	res, err := m.transfers.Purchase(ctx, player.ID, buyer.ID)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.Player.TeamID != buyer.ID {
		t.Fatalf("player team: want=%s got=%s", buyer.ID, res.Player.TeamID)
	}
	if got := m.balance(t, buyer.ID); !got.Equal(decimal.NewFromInt(3_500_000)) {
		t.Fatalf("buyer balance: want=3500000 got=%s", got)
	}
	if got := m.balance(t, seller.ID); !got.Equal(decimal.NewFromInt(6_500_000)) {
		t.Fatalf("seller balance: want=6500000 got=%s", got)
	}

	row, err := m.listings.GetByID(dbctx.Background(ctx), listing.ID)
	if err != nil {
		t.Fatalf("GetByID listing: %v", err)
	}
	if row.Status != types.TransferStatusSold {
		t.Fatalf("listing status: want=%s got=%s", types.TransferStatusSold, row.Status)
	}
	if row.UniqueKey != nil {
		t.Fatalf("sold listing keeps unique key %q", *row.UniqueKey)
	}

	for _, id := range []uuid.UUID{buyer.ID, seller.ID} {
		check, err := m.proj.VerifyTeamBalance(dbctx.Background(ctx), id)
		if err != nil {
			t.Fatalf("VerifyTeamBalance: %v", err)
		}
		if !check.Match() {
			t.Fatalf("team %s: folded=%s read model=%s", id, check.Folded, check.ReadModel)
		}
	}

	grown, err := m.growth.Grow(ctx, player.ID)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if !grown.Value.Equal(decimal.NewFromInt(1_100_000)) {
		t.Fatalf("grown value: want=1100000 got=%s", grown.Value)
	}
	view, err := m.teamSvc.GetTeam(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if view.PlayerCount != 21 || !view.TeamValue.Equal(decimal.NewFromInt(21_100_000)) {
		t.Fatalf("buyer roster: want=21/21100000 got=%d/%s", view.PlayerCount, view.TeamValue)
	}

	// The sold player can be listed again by the new owner.
	m.list(t, player.ID, buyer.ID, 2_000_000)
}

func TestPurchaseRejections(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	seller := m.team(t, "Seller")
	buyer := m.team(t, "Buyer")

	t.Run("insufficient_funds", func(t *testing.T) {
		player := m.firstPlayer(t, seller.ID)
		m.list(t, player.ID, seller.ID, 9_000_000)
		defer func() {
			listing, err := m.listings.GetByPlayerID(dbctx.Background(ctx), player.ID, nil)
			if err == nil && listing != nil {
				_, _ = m.listSvc.CancelListing(ctx, listing.ID, seller.ID)
			}
		}()

		_, err := m.transfers.Purchase(ctx, player.ID, buyer.ID)
		if got := domainagg.CodeOf(err); got != domainagg.CodeInsufficientFunds {
			t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodeInsufficientFunds, got, err)
		}
		if got := m.balance(t, buyer.ID); !got.Equal(decimal.NewFromInt(5_000_000)) {
			t.Fatalf("buyer balance changed: got=%s", got)
		}
		listing, err := m.listings.GetByPlayerID(dbctx.Background(ctx), player.ID, nil)
		if err != nil {
			t.Fatalf("GetByPlayerID: %v", err)
		}
		if listing.Status != types.TransferStatusActive {
			t.Fatalf("listing status after rejection: want=%s got=%s", types.TransferStatusActive, listing.Status)
		}
	})

	t.Run("self_purchase", func(t *testing.T) {
		player := m.firstPlayer(t, buyer.ID)
		m.list(t, player.ID, buyer.ID, 100)

		_, err := m.transfers.Purchase(ctx, player.ID, buyer.ID)
		if got := domainagg.CodeOf(err); got != domainagg.CodeSelfPurchase {
			t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodeSelfPurchase, got, err)
		}
	})

	t.Run("not_listed", func(t *testing.T) {
		_, err := m.transfers.Purchase(ctx, uuid.New(), buyer.ID)
		if got := domainagg.CodeOf(err); got != domainagg.CodeNotAvailable {
			t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodeNotAvailable, got, err)
		}
	})

	t.Run("seller_no_longer_owns_player", func(t *testing.T) {
		// A listing left behind for a player that now belongs to buyer.
		rows, err := m.players.ListByTeam(dbctx.Background(ctx), buyer.ID, 3, 1)
		if err != nil || len(rows) != 1 {
			t.Fatalf("ListByTeam: %v", err)
		}
		player := rows[0]
		testutil.SeedListing(t, ctx, m.db, player.ID, seller.ID, decimal.NewFromInt(100), types.TransferStatusActive)
		other := m.team(t, "Other")

		_, err = m.transfers.Purchase(ctx, player.ID, other.ID)
		if got := domainagg.CodeOf(err); got != domainagg.CodeNotAvailable {
			t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodeNotAvailable, got, err)
		}
		if got := m.balance(t, other.ID); !got.Equal(decimal.NewFromInt(5_000_000)) {
			t.Fatalf("buyer balance changed: got=%s", got)
		}
		if got := m.balance(t, seller.ID); !got.Equal(decimal.NewFromInt(5_000_000)) {
			t.Fatalf("seller balance changed: got=%s", got)
		}
		owner, err := m.players.GetByID(dbctx.Background(ctx), player.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if owner.TeamID != buyer.ID {
			t.Fatalf("owner: want=%s got=%s", buyer.ID, owner.TeamID)
		}
	})

	t.Run("price_mismatch", func(t *testing.T) {
		rows, err := m.players.ListByTeam(dbctx.Background(ctx), seller.ID, 5, 1)
		if err != nil || len(rows) != 1 {
			t.Fatalf("ListByTeam: %v", err)
		}
		m.list(t, rows[0].ID, seller.ID, 1000)

		_, err = m.transfers.PurchaseAtFee(ctx, rows[0].ID, buyer.ID, decimal.NewFromInt(900))
		if got := domainagg.CodeOf(err); got != domainagg.CodePriceMismatch {
			t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodePriceMismatch, got, err)
		}
	})
}

func TestListingTwiceIsRejected(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	seller := m.team(t, "Seller")
	player := m.firstPlayer(t, seller.ID)
	listing := m.list(t, player.ID, seller.ID, 1000)

	_, err := m.listSvc.ListForTransfer(ctx, player.ID, seller.ID, decimal.NewFromInt(2000))
	if got := domainagg.CodeOf(err); got != domainagg.CodeAlreadyListed {
		t.Fatalf("code: want=%s got=%s (%v)", domainagg.CodeAlreadyListed, got, err)
	}

	if _, err := m.listSvc.CancelListing(ctx, listing.ID, seller.ID); err != nil {
		t.Fatalf("CancelListing: %v", err)
	}
	m.list(t, player.ID, seller.ID, 2000)
}

func TestConcurrentPurchasesSellOnce(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	seller := m.team(t, "Seller")
	player := m.firstPlayer(t, seller.ID)
	m.list(t, player.ID, seller.ID, 1_000_000)

	const buyers = 5
	buyerIDs := make([]uuid.UUID, buyers)
	for i := range buyerIDs {
		buyerIDs[i] = m.team(t, "Buyer").ID
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i, id := range buyerIDs {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = m.transfers.Purchase(ctx, player.ID, id)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	var winner uuid.UUID
	for i, err := range errs {
		if err == nil {
			wins++
			winner = buyerIDs[i]
			continue
		}
		if code := domainagg.CodeOf(err); code != domainagg.CodeNotAvailable {
			t.Fatalf("losing purchase code: want=%s got=%s (%v)", domainagg.CodeNotAvailable, code, err)
		}
	}
	if wins != 1 {
		t.Fatalf("successful purchases: want=%d got=%d", 1, wins)
	}

	owner, err := m.players.GetByID(dbctx.Background(ctx), player.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if owner.TeamID != winner {
		t.Fatalf("owner: want=%s got=%s", winner, owner.TeamID)
	}
	listing, err := m.listings.GetByPlayerID(dbctx.Background(ctx), player.ID, nil)
	if err != nil {
		t.Fatalf("GetByPlayerID: %v", err)
	}
	if listing.Status != types.TransferStatusSold || listing.UniqueKey != nil {
		t.Fatalf("listing after sale: status=%s unique_key=%v", listing.Status, listing.UniqueKey)
	}

	total := m.balance(t, seller.ID)
	for _, id := range buyerIDs {
		total = total.Add(m.balance(t, id))
	}
	want := decimal.NewFromInt(5_000_000 * (buyers + 1))
	if !total.Equal(want) {
		t.Fatalf("money not conserved: want=%s got=%s", want, total)
	}
}

func TestPurchaseFailingAtCompletionRollsBack(t *testing.T) {
	errCompletion := errors.New("completion projection failed")
	m := newMarketWithHook(t, func(next eventstore.AppendHook) eventstore.AppendHook {
		return func(dbc dbctx.Context, rec types.RecordedEvent) error {
			if rec.Type == types.EventTransferCompleted {
				return errCompletion
			}
			return next(dbc, rec)
		}
	})
	ctx := context.Background()
	seller := m.team(t, "Seller")
	buyer := m.team(t, "Buyer")
	player := m.firstPlayer(t, seller.ID)
	m.list(t, player.ID, seller.ID, 1_500_000)

	if _, err := m.transfers.Purchase(ctx, player.ID, buyer.ID); err == nil {
		t.Fatalf("Purchase: want error, got nil")
	}

	for _, id := range []uuid.UUID{buyer.ID, seller.ID} {
		if got := m.balance(t, id); !got.Equal(decimal.NewFromInt(5_000_000)) {
			t.Fatalf("team %s balance: want=5000000 got=%s", id, got)
		}
		check, err := m.proj.VerifyTeamBalance(dbctx.Background(ctx), id)
		if err != nil {
			t.Fatalf("VerifyTeamBalance: %v", err)
		}
		// created + funded
		if check.Version != 2 {
			t.Fatalf("team %s version: want=%d got=%d", id, 2, check.Version)
		}
	}

	owner, err := m.players.GetByID(dbctx.Background(ctx), player.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if owner.TeamID != seller.ID {
		t.Fatalf("owner: want=%s got=%s", seller.ID, owner.TeamID)
	}

	listing, err := m.listings.GetByPlayerID(dbctx.Background(ctx), player.ID, nil)
	if err != nil {
		t.Fatalf("GetByPlayerID: %v", err)
	}
	if listing.Status != types.TransferStatusActive {
		t.Fatalf("listing status: want=%s got=%s", types.TransferStatusActive, listing.Status)
	}
	if listing.UniqueKey == nil || *listing.UniqueKey != types.ListingUniqueKeyActive {
		t.Fatalf("listing unique key: want=%q got=%v", types.ListingUniqueKeyActive, listing.UniqueKey)
	}

	var transferEvents int64
	err = m.db.Model(&types.StoredEvent{}).
		Where("stream_type = ? AND payload->>'player_id' = ?", types.StreamTransfer, player.ID.String()).
		Count(&transferEvents).Error
	if err != nil {
		t.Fatalf("count transfer events: %v", err)
	}
	if transferEvents != 0 {
		t.Fatalf("transfer events: want=%d got=%d", 0, transferEvents)
	}
}

func TestConcurrentListingsCreateOne(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	seller := m.team(t, "Seller")
	player := m.firstPlayer(t, seller.ID)

	const callers = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = m.listSvc.ListForTransfer(ctx, player.ID, seller.ID, decimal.NewFromInt(int64(1000*(i+1))))
		}(i)
	}
	close(start)
	wg.Wait()

	created, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case domainagg.IsCode(err, domainagg.CodeAlreadyListed):
			rejected++
		default:
			t.Fatalf("unexpected listing error: %v", err)
		}
	}
	if created != 1 || rejected != 1 {
		t.Fatalf("listings: want=1 created/1 rejected got=%d/%d", created, rejected)
	}

	var active int64
	err := m.db.Model(&types.TransferListing{}).
		Where("player_id = ? AND status = ?", player.ID, types.TransferStatusActive).
		Count(&active).Error
	if err != nil {
		t.Fatalf("count listings: %v", err)
	}
	if active != 1 {
		t.Fatalf("active listings: want=%d got=%d", 1, active)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	email := "manager-" + uuid.NewString()[:8] + "@example.com"

	res, err := m.auth.Register(ctx, services.RegisterInput{Email: email, Password: "secret-pass", TeamName: "Torpedo"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	testutil.Cleanup(t, m.db, res.Team.ID)
	if res.User.TeamID != res.Team.ID {
		t.Fatalf("user team: want=%s got=%s", res.Team.ID, res.User.TeamID)
	}

	_, err = m.auth.Register(ctx, services.RegisterInput{Email: email, Password: "secret-pass"})
	if got := domainagg.CodeOf(err); got != domainagg.CodeConflict {
		t.Fatalf("duplicate register code: want=%s got=%s", domainagg.CodeConflict, got)
	}

	login, err := m.auth.Login(ctx, email, "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	rd, err := m.auth.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if rd.TeamID != res.Team.ID {
		t.Fatalf("token team: want=%s got=%s", res.Team.ID, rd.TeamID)
	}

	if _, err := m.auth.Login(ctx, email, "wrong-pass"); err != services.ErrInvalidCredentials {
		t.Fatalf("wrong password: want=%v got=%v", services.ErrInvalidCredentials, err)
	}
}
