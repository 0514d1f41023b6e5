package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agroleads/api/internal/logger"
	"github.com/agroleads/api/internal/models"
	"github.com/agroleads/api/internal/repository"
	"github.com/google/uuid"
)

// Service-level errors
var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrDuplicateCPF  = errors.New("cpf already registered")
	ErrInvalidStatus = errors.New("invalid lead status")
	ErrInvalidArea   = errors.New("area must be at least 0.01 hectares")
)

// LeadService defines the interface for lead business logic operations.
type LeadService interface {
	// ListLeads returns every lead with its total property area,
	// newest first.
	ListLeads(ctx context.Context) ([]models.LeadWithArea, error)

	// CreateLead persists a lead and its optional properties as one
	// atomic unit. Business invariants (status set, positive areas,
	// geometry validity) are re-checked here even though the transport
	// layer validates shapes.
	// Returns ErrDuplicateCPF when the cpf is already registered.
	// Returns ErrInvalidStatus or ErrInvalidArea on invariant violations.
	CreateLead(ctx context.Context, input repository.CreateLeadInput) (*models.Lead, error)

	// UpdateLead applies a sparse field set.
	// Returns ErrLeadNotFound when no lead matches id.
	UpdateLead(ctx context.Context, id uuid.UUID, input repository.UpdateLeadInput) (*models.Lead, error)

	// DeleteLead removes the lead and everything it owns.
	// Returns ErrLeadNotFound when no lead matches id.
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

type leadService struct {
	repo repository.LeadRepository
	log  *logger.Logger
}

// NewLeadService creates a new instance of LeadService.
func NewLeadService(repo repository.LeadRepository, log *logger.Logger) LeadService {
	return &leadService{
		repo: repo,
		log:  log,
	}
}

func (s *leadService) ListLeads(ctx context.Context) ([]models.LeadWithArea, error) {
	leads, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list leads", err, nil)
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	s.log.Debug("Leads listed", map[string]interface{}{
		"count": len(leads),
	})

	return leads, nil
}

func (s *leadService) CreateLead(ctx context.Context, input repository.CreateLeadInput) (*models.Lead, error) {
	if input.Status == "" {
		input.Status = models.StatusNovo
	}
	if !models.ValidStatus(input.Status) {
		s.log.Warn("Invalid lead status provided", map[string]interface{}{
			"status": input.Status,
		})
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}

	for _, prop := range input.Propriedades {
		if err := validateArea(prop.AreaHectares); err != nil {
			s.log.Warn("Invalid property area in lead batch", map[string]interface{}{
				"property":      prop.Nome,
				"area_hectares": prop.AreaHectares,
			})
			return nil, err
		}
	}

	lead, err := s.repo.Create(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCPF) {
			s.log.Warn("Duplicate cpf on lead create", map[string]interface{}{
				"cpf": input.CPF,
			})
			return nil, ErrDuplicateCPF
		}
		if errors.Is(err, repository.ErrCheckViolation) {
			return nil, ErrInvalidArea
		}
		s.log.Error("Failed to create lead", err, map[string]interface{}{
			"nome": input.Nome,
		})
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.log.Info("Lead created", map[string]interface{}{
		"lead_id":      lead.ID,
		"propriedades": len(input.Propriedades),
	})

	return lead, nil
}

func (s *leadService) UpdateLead(ctx context.Context, id uuid.UUID, input repository.UpdateLeadInput) (*models.Lead, error) {
	if input.Status != nil && !models.ValidStatus(*input.Status) {
		s.log.Warn("Invalid lead status provided", map[string]interface{}{
			"lead_id": id,
			"status":  *input.Status,
		})
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *input.Status)
	}

	lead, err := s.repo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		if errors.Is(err, repository.ErrDuplicateCPF) {
			return nil, ErrDuplicateCPF
		}
		s.log.Error("Failed to update lead", err, map[string]interface{}{
			"lead_id": id,
		})
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.log.Info("Lead updated", map[string]interface{}{
		"lead_id": id,
	})

	return lead, nil
}

func (s *leadService) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLeadNotFound
		}
		s.log.Error("Failed to delete lead", err, map[string]interface{}{
			"lead_id": id,
		})
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	s.log.Info("Lead deleted with owned properties", map[string]interface{}{
		"lead_id": id,
	})

	return nil
}

// validateArea enforces the minimum property area invariant.
func validateArea(area float64) error {
	if area < models.MinAreaHectares {
		return fmt.Errorf("%w: got %v", ErrInvalidArea, area)
	}
	return nil
}
