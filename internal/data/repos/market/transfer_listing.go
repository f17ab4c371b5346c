package market

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type TransferListingRepo interface {
	Create(dbc dbctx.Context, row *types.TransferListing) (*types.TransferListing, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TransferListing, error)
	GetByPlayerID(dbc dbctx.Context, playerID uuid.UUID, statuses []types.TransferStatus) (*types.TransferListing, error)

	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.TransferListing, error)
	LockByPlayerID(dbc dbctx.Context, playerID uuid.UUID, statuses []types.TransferStatus) (*types.TransferListing, error)

	ListByStatus(dbc dbctx.Context, statuses []types.TransferStatus, offset, limit int) ([]*types.TransferListing, error)
	CountByStatus(dbc dbctx.Context, statuses []types.TransferStatus) (int64, error)
}

type transferListingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransferListingRepo(db *gorm.DB, baseLog *logger.Logger) TransferListingRepo {
	return &transferListingRepo{db: db, log: baseLog.With("repo", "TransferListingRepo")}
}

func (r *transferListingRepo) Create(dbc dbctx.Context, row *types.TransferListing) (*types.TransferListing, error) {
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = types.TransferStatusActive
	}
	row.UniqueKey = row.Status.UniqueKey()
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *transferListingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TransferListing, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.TransferListing
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *transferListingRepo) GetByPlayerID(dbc dbctx.Context, playerID uuid.UUID, statuses []types.TransferStatus) (*types.TransferListing, error) {
	if playerID == uuid.Nil {
		return nil, nil
	}
	var row types.TransferListing
	q := dbc.DB(r.db).Where("player_id = ?", playerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", types.StatusStrings(statuses))
	}
	if err := q.Order("created_at DESC").Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *transferListingRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.TransferListing, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.TransferListing
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// LockByPlayerID locks the newest listing of the player in one of statuses.
// A waiter re-evaluates the status predicate once the holder commits, so a
// row that left the requested statuses is not returned.
func (r *transferListingRepo) LockByPlayerID(dbc dbctx.Context, playerID uuid.UUID, statuses []types.TransferStatus) (*types.TransferListing, error) {
	if playerID == uuid.Nil {
		return nil, nil
	}
	var row types.TransferListing
	q := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ?", playerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", types.StatusStrings(statuses))
	}
	if err := q.Order("created_at DESC").Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *transferListingRepo) ListByStatus(dbc dbctx.Context, statuses []types.TransferStatus, offset, limit int) ([]*types.TransferListing, error) {
	var out []*types.TransferListing
	q := dbc.DB(r.db).Model(&types.TransferListing{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", types.StatusStrings(statuses))
	}
	q = q.Order("created_at DESC, id ASC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transferListingRepo) CountByStatus(dbc dbctx.Context, statuses []types.TransferStatus) (int64, error) {
	var n int64
	q := dbc.DB(r.db).Model(&types.TransferListing{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", types.StatusStrings(statuses))
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
