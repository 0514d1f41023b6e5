package repository

import (
	"context"
	"fmt"

	"github.com/agroleads/api/internal/database"
	"github.com/agroleads/api/internal/models"
)

// PriorityAreaHectares is the combined property area above which a lead
// counts as priority.
const PriorityAreaHectares = 100

// maxMunicipioResults caps the by-municipality ranking.
const maxMunicipioResults = 10

// DashboardRepository computes read-only cross-table aggregates against
// committed state. No query runs inside a write transaction.
type DashboardRepository interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardRepository struct {
	db *database.Database
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *database.Database) DashboardRepository {
	return &dashboardRepository{db: db}
}

// Stats runs each aggregate as an independent query and assembles the
// dashboard payload. Numeric aggregates are cast in SQL so they scan
// into parsed numeric types, never text.
func (r *dashboardRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM leads`,
	).Scan(&stats.TotalLeads); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	byStatus, err := r.leadsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.LeadsByStatus = byStatus

	byMunicipio, err := r.leadsByMunicipio(ctx)
	if err != nil {
		return nil, err
	}
	stats.LeadsByMunicipio = byMunicipio

	priority, err := r.priorityLeads(ctx)
	if err != nil {
		return nil, err
	}
	stats.PriorityLeads = priority

	if err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COALESCE(SUM(area_hectares), 0)::float8,
			COALESCE(AVG(area_hectares), 0)::float8
		FROM propriedades_rurais`,
	).Scan(
		&stats.PropertyStats.TotalPropriedades,
		&stats.PropertyStats.AreaTotal,
		&stats.PropertyStats.AreaMedia,
	); err != nil {
		return nil, fmt.Errorf("failed to query property stats: %w", err)
	}

	return stats, nil
}

func (r *dashboardRepository) leadsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT status, COUNT(*)::int AS count
		FROM leads
		GROUP BY status
		ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads by status: %w", err)
	}
	defer rows.Close()

	counts := []models.StatusCount{}
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

func (r *dashboardRepository) leadsByMunicipio(ctx context.Context) ([]models.MunicipioCount, error) {
	// Leads without a recorded municipality stay out of the ranking
	rows, err := r.db.Pool.Query(ctx, `
		SELECT p.municipio, COUNT(DISTINCT p.lead_id)::int AS count
		FROM propriedades_rurais p
		WHERE p.municipio IS NOT NULL AND p.municipio <> ''
		GROUP BY p.municipio
		ORDER BY count DESC
		LIMIT $1`, maxMunicipioResults)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads by municipality: %w", err)
	}
	defer rows.Close()

	counts := []models.MunicipioCount{}
	for rows.Next() {
		var c models.MunicipioCount
		if err := rows.Scan(&c.Municipio, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan municipality count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating municipality counts: %w", err)
	}

	return counts, nil
}

func (r *dashboardRepository) priorityLeads(ctx context.Context) ([]models.PriorityLead, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT l.id, l.nome, l.cpf, l.status, SUM(p.area_hectares)::float8 AS total_area
		FROM leads l
		JOIN propriedades_rurais p ON p.lead_id = l.id
		GROUP BY l.id
		HAVING SUM(p.area_hectares) > $1
		ORDER BY total_area DESC`, PriorityAreaHectares)
	if err != nil {
		return nil, fmt.Errorf("failed to query priority leads: %w", err)
	}
	defer rows.Close()

	leads := []models.PriorityLead{}
	for rows.Next() {
		var lead models.PriorityLead
		if err := rows.Scan(&lead.ID, &lead.Nome, &lead.CPF, &lead.Status, &lead.TotalArea); err != nil {
			return nil, fmt.Errorf("failed to scan priority lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating priority leads: %w", err)
	}

	return leads, nil
}
