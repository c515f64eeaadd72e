package services

import (
	"github.com/kendall-kelly/gig-marketplace-api/events"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure holds the optional outside collaborators of the services
type Infrastructure struct {
	Images    ImageService
	Publisher events.Publisher
	Log       *zap.Logger
}

// Registry is the set of services the API exposes, sharing one database
type Registry struct {
	Accounts     *AccountService
	Verification *VerificationService
	Gigs         *GigService
	Messages     *MessageService
	References   *ReferenceService
}

func NewRegistry(db *gorm.DB, infra Infrastructure) *Registry {
	log := orNop(infra.Log)

	accounts := repositories.NewAccountRepository(db)
	gigs := repositories.NewGigRepository(db)
	references := repositories.NewReferenceRepository(db)
	verification := NewVerificationService(accounts, repositories.NewVerificationRepository(db), log)

	return &Registry{
		Accounts:     NewAccountService(accounts, log),
		Verification: verification,
		Gigs: NewGigService(GigDependencies{
			Gigs:       gigs,
			GigEvents:  repositories.NewGigEventRepository(db),
			Accounts:   accounts,
			References: references,
			Ratings:    repositories.NewRatingRepository(db),
			Gate:       verification,
			Images:     infra.Images,
			Publisher:  infra.Publisher,
			Log:        log,
		}),
		Messages:   NewMessageService(gigs, repositories.NewMessageRepository(db), log),
		References: NewReferenceService(references, log),
	}
}
