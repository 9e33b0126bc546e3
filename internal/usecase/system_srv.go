package usecase

import (
	"context"
	"fmt"

	"gastrotour/internal/data/repository"
	"gastrotour/internal/dto/response"

	"go.uber.org/zap"
)

type SystemService interface {
	GetRecentErrors(ctx context.Context, limit int) ([]response.ErrorLogResponse, error)
}

type systemService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSystemService(repo *repository.Repository, log *zap.Logger) SystemService {
	return &systemService{
		repo: repo,
		log:  log.With(zap.String("service", "system")),
	}
}

func (s *systemService) GetRecentErrors(ctx context.Context, limit int) ([]response.ErrorLogResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	logs, err := s.repo.ErrorLog.FindRecent(ctx, limit)
	if err != nil {
		s.log.Error("Failed to load error logs", zap.Error(err))
		return nil, fmt.Errorf("load error logs: %w", err)
	}

	logResponses := make([]response.ErrorLogResponse, len(logs))
	for i, errorLog := range logs {
		logResponses[i] = response.ErrorLogToResponse(errorLog)
	}
	return logResponses, nil
}
