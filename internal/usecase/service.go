package usecase

import (
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Event   EventService
	Booking BookingService
	Review  ReviewService
	System  SystemService
}

func NewService(repo *repository.Repository, config *utils.Config, notifier BookingNotifier, log *zap.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Event:   NewEventService(repo, log),
		Booking: NewBookingService(repo, notifier, log),
		Review:  NewReviewService(repo, log),
		System:  NewSystemService(repo, log),
	}
}
