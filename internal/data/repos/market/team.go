package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type TeamRepo interface {
	Upsert(dbc dbctx.Context, row *types.Team) error

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Team, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Team, error)
	ListIDs(dbc dbctx.Context) ([]uuid.UUID, error)

	// LockByIDs locks rows in id order so concurrent callers cannot deadlock.
	LockByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Team, error)

	SetBalance(dbc dbctx.Context, id uuid.UUID, balance decimal.Decimal) error
	Credit(dbc dbctx.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
	// Debit subtracts amount only when the balance covers it.
	Debit(dbc dbctx.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return &teamRepo{db: db, log: baseLog.With("repo", "TeamRepo")}
}

func (r *teamRepo) Upsert(dbc dbctx.Context, row *types.Team) error {
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "country", "updated_at"}),
		}).
		Create(row).Error
}

func (r *teamRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Team, error) {
	var out []*types.Team
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Team, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *teamRepo) ListIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if err := dbc.DB(r.db).Model(&types.Team{}).Order("id ASC").Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepo) LockByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Team, error) {
	var out []*types.Team
	if len(ids) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepo) SetBalance(dbc dbctx.Context, id uuid.UUID, balance decimal.Decimal) error {
	return dbc.DB(r.db).
		Model(&types.Team{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":    types.RoundMoney(balance),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *teamRepo) Credit(dbc dbctx.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Team{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *teamRepo) Debit(dbc dbctx.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Team{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
