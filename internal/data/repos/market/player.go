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

type PlayerRepo interface {
	Create(dbc dbctx.Context, rows []*types.Player) ([]*types.Player, error)

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Player, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Player, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Player, error)

	ListByTeam(dbc dbctx.Context, teamID uuid.UUID, offset, limit int) ([]*types.Player, error)
	CountByTeam(dbc dbctx.Context, teamID uuid.UUID) (int64, error)
	// SumValueByTeam is the combined market value of the team's roster.
	SumValueByTeam(dbc dbctx.Context, teamID uuid.UUID) (decimal.Decimal, error)

	AssignTeam(dbc dbctx.Context, id, teamID uuid.UUID) (bool, error)
	UpdateValue(dbc dbctx.Context, id uuid.UUID, value decimal.Decimal) error
}

type playerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlayerRepo(db *gorm.DB, baseLog *logger.Logger) PlayerRepo {
	return &playerRepo{db: db, log: baseLog.With("repo", "PlayerRepo")}
}

func (r *playerRepo) Create(dbc dbctx.Context, rows []*types.Player) ([]*types.Player, error) {
	if len(rows) == 0 {
		return []*types.Player{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *playerRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Player, error) {
	var out []*types.Player
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Player, error) {
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

func (r *playerRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Player, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Player
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

func (r *playerRepo) ListByTeam(dbc dbctx.Context, teamID uuid.UUID, offset, limit int) ([]*types.Player, error) {
	var out []*types.Player
	if teamID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("team_id = ?", teamID).Order("position ASC, last_name ASC, id ASC")
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

func (r *playerRepo) CountByTeam(dbc dbctx.Context, teamID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Player{}).Where("team_id = ?", teamID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *playerRepo) SumValueByTeam(dbc dbctx.Context, teamID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := dbc.DB(r.db).
		Model(&types.Player{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("team_id = ?", teamID).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (r *playerRepo) AssignTeam(dbc dbctx.Context, id, teamID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Player{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"team_id":    teamID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *playerRepo) UpdateValue(dbc dbctx.Context, id uuid.UUID, value decimal.Decimal) error {
	return dbc.DB(r.db).
		Model(&types.Player{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"value":      types.RoundMoney(value),
			"updated_at": time.Now().UTC(),
		}).Error
}
