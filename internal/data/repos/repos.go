package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/repos/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type TeamRepo = market.TeamRepo
type PlayerRepo = market.PlayerRepo
type TransferListingRepo = market.TransferListingRepo
type UserRepo = market.UserRepo

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return market.NewTeamRepo(db, baseLog)
}

func NewPlayerRepo(db *gorm.DB, baseLog *logger.Logger) PlayerRepo {
	return market.NewPlayerRepo(db, baseLog)
}

func NewTransferListingRepo(db *gorm.DB, baseLog *logger.Logger) TransferListingRepo {
	return market.NewTransferListingRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return market.NewUserRepo(db, baseLog)
}
