package service

import (
	"context"

	"go-stock-opname/internal/repository"
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	repo repository.StockItemRepository
}

func NewDashboardService(repo repository.StockItemRepository) DashboardService {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.repo.Stats(ctx)
}
