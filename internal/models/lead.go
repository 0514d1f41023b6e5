package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead status values. The set is closed; anything else is rejected.
const (
	StatusNovo           = "novo"
	StatusContatoInicial = "contato_inicial"
	StatusEmNegociacao   = "em_negociacao"
	StatusConvertido     = "convertido"
	StatusPerdido        = "perdido"
)

// ValidStatus reports whether s is one of the recognized lead statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNovo, StatusContatoInicial, StatusEmNegociacao, StatusConvertido, StatusPerdido:
		return true
	}
	return false
}

// Lead represents a prospective client.
// Nullable columns use pointers to distinguish zero values from NULL.
type Lead struct {
	ID          uuid.UUID `json:"id"`
	Nome        string    `json:"nome"`
	CPF         string    `json:"cpf"`
	Email       *string   `json:"email,omitempty"`
	Telefone    *string   `json:"telefone,omitempty"`
	Status      string    `json:"status"`
	Comentarios *string   `json:"comentarios,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LeadWithArea annotates a lead with the summed area of its properties,
// zero when it owns none. Computed on read, never persisted.
type LeadWithArea struct {
	Lead
	TotalArea float64 `json:"total_area"`
}
