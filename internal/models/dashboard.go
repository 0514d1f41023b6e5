package models

import "github.com/google/uuid"

// StatusCount is a lead count for one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MunicipioCount is the number of distinct leads with at least one
// property in a municipality.
type MunicipioCount struct {
	Municipio string `json:"municipio"`
	Count     int    `json:"count"`
}

// PriorityLead is a lead whose combined property area crosses the
// priority threshold.
type PriorityLead struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	CPF       string    `json:"cpf"`
	Status    string    `json:"status"`
	TotalArea float64   `json:"totalArea"`
}

// PropertyStats holds global property aggregates, zero-safe when no
// properties exist.
type PropertyStats struct {
	TotalPropriedades int     `json:"totalPropriedades"`
	AreaTotal         float64 `json:"areaTotal"`
	AreaMedia         float64 `json:"areaMedia"`
}

// DashboardStats is the full dashboard payload. Each section is computed
// by an independent query against committed state.
type DashboardStats struct {
	TotalLeads       int              `json:"totalLeads"`
	LeadsByStatus    []StatusCount    `json:"leadsByStatus"`
	LeadsByMunicipio []MunicipioCount `json:"leadsByMunicipio"`
	PriorityLeads    []PriorityLead   `json:"priorityLeads"`
	PropertyStats    PropertyStats    `json:"propertyStats"`
}
