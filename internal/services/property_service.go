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

// Property-specific service errors
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrLeadReference    = errors.New("referenced lead does not exist")
)

// PropertyService defines the interface for property business logic operations.
type PropertyService interface {
	// ListProperties returns properties newest first, optionally
	// filtered to one lead.
	ListProperties(ctx context.Context, leadID *uuid.UUID) ([]models.Property, error)

	// GetProperty returns one property.
	// Returns ErrPropertyNotFound when absent.
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// CreateProperty persists a property with its geometry.
	// Returns ErrInvalidArea for areas below the minimum and
	// ErrLeadReference when the owning lead does not exist.
	CreateProperty(ctx context.Context, input repository.CreatePropertyInput) (*models.Property, error)

	// UpdateProperty applies a sparse field set; geometry is re-encoded
	// only when explicitly provided.
	// Returns ErrPropertyNotFound when no property matches id.
	UpdateProperty(ctx context.Context, id uuid.UUID, input repository.UpdatePropertyInput) (*models.Property, error)

	// DeleteProperty removes the property.
	// Returns ErrPropertyNotFound when no row was affected.
	DeleteProperty(ctx context.Context, id uuid.UUID) error
}

type propertyService struct {
	repo repository.PropertyRepository
	log  *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, log *logger.Logger) PropertyService {
	return &propertyService{
		repo: repo,
		log:  log,
	}
}

func (s *propertyService) ListProperties(ctx context.Context, leadID *uuid.UUID) ([]models.Property, error) {
	properties, err := s.repo.FindAll(ctx, leadID)
	if err != nil {
		s.log.Error("Failed to list properties", err, map[string]interface{}{
			"lead_id": leadID,
		})
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	s.log.Debug("Properties listed", map[string]interface{}{
		"count": len(properties),
	})

	return properties, nil
}

func (s *propertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to get property", err, map[string]interface{}{
			"property_id": id,
		})
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return prop, nil
}

func (s *propertyService) CreateProperty(ctx context.Context, input repository.CreatePropertyInput) (*models.Property, error) {
	if err := validateArea(input.AreaHectares); err != nil {
		s.log.Warn("Invalid property area", map[string]interface{}{
			"area_hectares": input.AreaHectares,
		})
		return nil, err
	}

	prop, err := s.repo.Create(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrLeadReference) {
			s.log.Warn("Property references missing lead", map[string]interface{}{
				"lead_id": input.LeadID,
			})
			return nil, ErrLeadReference
		}
		if errors.Is(err, repository.ErrCheckViolation) {
			return nil, ErrInvalidArea
		}
		if errors.Is(err, models.ErrInvalidGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			return nil, err
		}
		s.log.Error("Failed to create property", err, map[string]interface{}{
			"nome": input.Nome,
		})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", map[string]interface{}{
		"property_id": prop.ID,
		"lead_id":     prop.LeadID,
	})

	return prop, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, id uuid.UUID, input repository.UpdatePropertyInput) (*models.Property, error) {
	if input.AreaHectares != nil {
		if err := validateArea(*input.AreaHectares); err != nil {
			s.log.Warn("Invalid property area", map[string]interface{}{
				"property_id":   id,
				"area_hectares": *input.AreaHectares,
			})
			return nil, err
		}
	}

	prop, err := s.repo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		if errors.Is(err, repository.ErrLeadReference) {
			return nil, ErrLeadReference
		}
		if errors.Is(err, repository.ErrCheckViolation) {
			return nil, ErrInvalidArea
		}
		if errors.Is(err, models.ErrInvalidGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			return nil, err
		}
		s.log.Error("Failed to update property", err, map[string]interface{}{
			"property_id": id,
		})
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	s.log.Info("Property updated", map[string]interface{}{
		"property_id": id,
	})

	return prop, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		s.log.Error("Failed to delete property", err, map[string]interface{}{
			"property_id": id,
		})
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.log.Info("Property deleted", map[string]interface{}{
		"property_id": id,
	})

	return nil
}
