package services

import (
	"context"
	"fmt"

	"github.com/agroleads/api/internal/logger"
	"github.com/agroleads/api/internal/models"
	"github.com/agroleads/api/internal/repository"
)

// DashboardService exposes the read-only reporting aggregates.
type DashboardService interface {
	// GetStats assembles the dashboard payload from committed state.
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	log  *logger.Logger
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(repo repository.DashboardRepository, log *logger.Logger) DashboardService {
	return &dashboardService{
		repo: repo,
		log:  log,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.log.Error("Failed to compute dashboard stats", err, nil)
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	s.log.Debug("Dashboard stats computed", map[string]interface{}{
		"total_leads":    stats.TotalLeads,
		"priority_leads": len(stats.PriorityLeads),
	})

	return stats, nil
}
