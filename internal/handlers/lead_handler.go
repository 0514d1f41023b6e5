package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/agroleads/api/internal/errors"
	"github.com/agroleads/api/internal/middleware"
	"github.com/agroleads/api/internal/models"
	"github.com/agroleads/api/internal/repository"
	"github.com/agroleads/api/internal/services"
)

// LeadHandler handles lead-related HTTP requests.
type LeadHandler struct {
	service services.LeadService
}

// NewLeadHandler creates a new LeadHandler instance.
func NewLeadHandler(service services.LeadService) *LeadHandler {
	return &LeadHandler{
		service: service,
	}
}

// LeadPropertyRequest is a property created together with its lead;
// the lead id comes from the batch, not the caller.
type LeadPropertyRequest struct {
	Nome         string          `json:"nome" binding:"required"`
	Cultura      *string         `json:"cultura"`
	AreaHectares float64         `json:"area_hectares" binding:"required,gt=0"`
	Municipio    *string         `json:"municipio"`
	Estado       *string         `json:"estado"`
	Geometria    *models.Polygon `json:"geometria"`
}

// CreateLeadRequest represents the body for POST /leads.
type CreateLeadRequest struct {
	Nome         string                `json:"nome" binding:"required,max=255"`
	CPF          string                `json:"cpf" binding:"required,len=11,numeric"`
	Email        *string               `json:"email" binding:"omitempty,email"`
	Telefone     *string               `json:"telefone" binding:"omitempty,max=20"`
	Status       string                `json:"status" binding:"omitempty,oneof=novo contato_inicial em_negociacao convertido perdido"`
	Comentarios  *string               `json:"comentarios"`
	Propriedades []LeadPropertyRequest `json:"propriedades" binding:"omitempty,dive"`
}

// UpdateLeadRequest represents the body for PATCH /leads/:id.
// Absent fields stay untouched.
type UpdateLeadRequest struct {
	Nome        *string `json:"nome" binding:"omitempty,max=255"`
	CPF         *string `json:"cpf" binding:"omitempty,len=11,numeric"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Telefone    *string `json:"telefone" binding:"omitempty,max=20"`
	Status      *string `json:"status" binding:"omitempty,oneof=novo contato_inicial em_negociacao convertido perdido"`
	Comentarios *string `json:"comentarios"`
}

// List handles GET /api/v1/leads.
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.service.ListLeads(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list leads", err)
		return
	}

	c.JSON(http.StatusOK, leads)
}

// Create handles POST /api/v1/leads.
// The lead and any nested properties persist as one atomic unit.
func (h *LeadHandler) Create(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req CreateLeadRequest
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

	input := repository.CreateLeadInput{
		Nome:        req.Nome,
		CPF:         req.CPF,
		Email:       req.Email,
		Telefone:    req.Telefone,
		Status:      req.Status,
		Comentarios: req.Comentarios,
	}
	for _, prop := range req.Propriedades {
		input.Propriedades = append(input.Propriedades, repository.CreatePropertyInput{
			Nome:         prop.Nome,
			Cultura:      prop.Cultura,
			AreaHectares: prop.AreaHectares,
			Municipio:    prop.Municipio,
			Estado:       prop.Estado,
			Geometria:    prop.Geometria,
		})
	}

	if log != nil {
		log.Info("Processing lead create", map[string]interface{}{
			"propriedades": len(input.Propriedades),
		})
	}

	lead, err := h.service.CreateLead(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateCPF):
			apierrors.Conflict(c, "A lead with this cpf already exists")
		case errors.Is(err, services.ErrInvalidStatus),
			errors.Is(err, services.ErrInvalidArea),
			errors.Is(err, models.ErrInvalidGeometry),
			errors.Is(err, models.ErrUnsupportedGeometryType):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create lead", err)
		}
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// Update handles PATCH /api/v1/leads/:id.
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	input := repository.UpdateLeadInput{
		Nome:        req.Nome,
		CPF:         req.CPF,
		Email:       req.Email,
		Telefone:    req.Telefone,
		Status:      req.Status,
		Comentarios: req.Comentarios,
	}

	lead, err := h.service.UpdateLead(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			apierrors.NotFound(c, "Lead not found")
		case errors.Is(err, services.ErrDuplicateCPF):
			apierrors.Conflict(c, "A lead with this cpf already exists")
		case errors.Is(err, services.ErrInvalidStatus):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to update lead", err)
		}
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Delete handles DELETE /api/v1/leads/:id.
// The lead's properties are removed in the same transaction.
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLead(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			apierrors.NotFound(c, "Lead not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete lead", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseIDParam parses the :id path parameter as a UUID, responding with
// 400 when it is malformed.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid id: must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
