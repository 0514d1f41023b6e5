package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/agroleads/api/internal/errors"
	"github.com/agroleads/api/internal/models"
	"github.com/agroleads/api/internal/repository"
	"github.com/agroleads/api/internal/services"
)

// PropertyHandler handles rural property HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// CreatePropertyRequest represents the body for POST /propriedades.
type CreatePropertyRequest struct {
	LeadID       uuid.UUID       `json:"lead_id" binding:"required"`
	Nome         string          `json:"nome" binding:"required,max=255"`
	Cultura      *string         `json:"cultura"`
	AreaHectares float64         `json:"area_hectares" binding:"required,gt=0"`
	Municipio    *string         `json:"municipio"`
	Estado       *string         `json:"estado"`
	Geometria    *models.Polygon `json:"geometria"`
}

// UpdatePropertyRequest represents the body for PATCH /propriedades/:id.
// Absent fields stay untouched; geometry is re-encoded only when present.
type UpdatePropertyRequest struct {
	LeadID       *uuid.UUID      `json:"lead_id"`
	Nome         *string         `json:"nome" binding:"omitempty,max=255"`
	Cultura      *string         `json:"cultura"`
	AreaHectares *float64        `json:"area_hectares" binding:"omitempty,gt=0"`
	Municipio    *string         `json:"municipio"`
	Estado       *string         `json:"estado"`
	Geometria    *models.Polygon `json:"geometria"`
}

// List handles GET /api/v1/propriedades, optionally filtered by ?leadId=.
func (h *PropertyHandler) List(c *gin.Context) {
	var leadID *uuid.UUID
	if raw := c.Query("leadId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid leadId parameter", nil)
			return
		}
		leadID = &parsed
	}

	properties, err := h.service.ListProperties(c.Request.Context(), leadID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list properties", err)
		return
	}

	c.JSON(http.StatusOK, properties)
}

// Get handles GET /api/v1/propriedades/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	prop, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get property", err)
		return
	}

	c.JSON(http.StatusOK, prop)
}

// Create handles POST /api/v1/propriedades.
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		if errors.Is(err, models.ErrInvalidGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	input := repository.CreatePropertyInput{
		LeadID:       req.LeadID,
		Nome:         req.Nome,
		Cultura:      req.Cultura,
		AreaHectares: req.AreaHectares,
		Municipio:    req.Municipio,
		Estado:       req.Estado,
		Geometria:    req.Geometria,
	}

	prop, err := h.service.CreateProperty(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadReference):
			apierrors.BadRequest(c, "Referenced lead does not exist", nil)
		case errors.Is(err, services.ErrInvalidArea),
			errors.Is(err, models.ErrInvalidGeometry),
			errors.Is(err, models.ErrUnsupportedGeometryType):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create property", err)
		}
		return
	}

	c.JSON(http.StatusCreated, prop)
}

// Update handles PATCH /api/v1/propriedades/:id.
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		if errors.Is(err, models.ErrInvalidGeometry) || errors.Is(err, models.ErrUnsupportedGeometryType) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	input := repository.UpdatePropertyInput{
		LeadID:       req.LeadID,
		Nome:         req.Nome,
		Cultura:      req.Cultura,
		AreaHectares: req.AreaHectares,
		Municipio:    req.Municipio,
		Estado:       req.Estado,
		Geometria:    req.Geometria,
	}

	prop, err := h.service.UpdateProperty(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		case errors.Is(err, services.ErrLeadReference):
			apierrors.BadRequest(c, "Referenced lead does not exist", nil)
		case errors.Is(err, services.ErrInvalidArea),
			errors.Is(err, models.ErrInvalidGeometry),
			errors.Is(err, models.ErrUnsupportedGeometryType):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to update property", err)
		}
		return
	}

	c.JSON(http.StatusOK, prop)
}

// Delete handles DELETE /api/v1/propriedades/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete property", err)
		return
	}

	c.Status(http.StatusNoContent)
}
