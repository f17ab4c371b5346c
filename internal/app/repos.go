package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type Repos struct {
	Team            repos.TeamRepo
	Player          repos.PlayerRepo
	TransferListing repos.TransferListingRepo
	User            repos.UserRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Team:            repos.NewTeamRepo(db, log),
		Player:          repos.NewPlayerRepo(db, log),
		TransferListing: repos.NewTransferListingRepo(db, log),
		User:            repos.NewUserRepo(db, log),
	}
}
