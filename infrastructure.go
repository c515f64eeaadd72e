package main

import (
	"context"
	"errors"

	"github.com/kendall-kelly/gig-marketplace-api/config"
	"github.com/kendall-kelly/gig-marketplace-api/events"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"github.com/kendall-kelly/gig-marketplace-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildInfrastructure wires the optional collaborators selected by cfg:
// S3 image storage, allocation emails, and Redis or in-process event
// delivery. The returned func releases whatever was opened.
func buildInfrastructure(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (services.Infrastructure, func(), error) {
	infra := services.Infrastructure{Log: log}
	closeFn := func() {}

	if cfg.S3Enabled() {
		store, err := services.NewS3Service(ctx, cfg, log)
		if err != nil {
			return infra, closeFn, err
		}
		infra.Images = services.NewImageService(store)
		log.Info("Image storage enabled", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		log.Warn("AWS_S3_BUCKET not set, gig image uploads are disabled")
	}

	var handlers []events.Handler
	if cfg.MailEnabled() {
		notifier := services.NewNotificationService(
			repositories.NewAccountRepository(db),
			repositories.NewGigRepository(db),
			services.NewGomailMailer(cfg),
			log,
		)
		handlers = append(handlers, notifier.HandleGigAllocated)
	}

	if !cfg.RedisEnabled() {
		infra.Publisher = events.NewLocalPublisher(log, handlers...)
		return infra, closeFn, nil
	}

	client, err := events.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return infra, closeFn, err
	}
	infra.Publisher = events.NewRedisPublisher(client, cfg.EventsChannel)

	subscriber := events.NewRedisSubscriber(client, cfg.EventsChannel, log)
	for _, handler := range handlers {
		go func(h events.Handler) {
			if err := subscriber.Run(ctx, h); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event subscriber stopped", zap.Error(err))
			}
		}(handler)
	}

	return infra, func() { _ = client.Close() }, nil
}
