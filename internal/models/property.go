package models

import (
	"time"

	"github.com/google/uuid"
)

// MinAreaHectares is the smallest area accepted for a rural property.
const MinAreaHectares = 0.01

// Property represents a rural landholding owned by exactly one lead.
// LeadNome is populated on reads that join the owning lead; it is
// display-only and never written back.
type Property struct {
	ID           uuid.UUID `json:"id"`
	LeadID       uuid.UUID `json:"lead_id"`
	LeadNome     *string   `json:"lead_nome,omitempty"`
	Nome         string    `json:"nome"`
	Cultura      *string   `json:"cultura,omitempty"`
	AreaHectares float64   `json:"area_hectares"`
	Municipio    *string   `json:"municipio,omitempty"`
	Estado       *string   `json:"estado,omitempty"`
	Geometria    *Polygon  `json:"geometria,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
