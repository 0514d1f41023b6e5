package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/agroleads/api/internal/database"
	"github.com/agroleads/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// leadColumns is the scan order shared by every lead query.
const leadColumns = "id, nome, cpf, email, telefone, status, comentarios, created_at, updated_at"

// CreateLeadInput carries the fields for a new lead, optionally with
// properties inserted in the same transaction.
type CreateLeadInput struct {
	Nome         string
	CPF          string
	Email        *string
	Telefone     *string
	Status       string
	Comentarios  *string
	Propriedades []CreatePropertyInput
}

// UpdateLeadInput is a sparse field set for a partial lead update.
// Nil means "leave unchanged".
type UpdateLeadInput struct {
	Nome        *string
	CPF         *string
	Email       *string
	Telefone    *string
	Status      *string
	Comentarios *string
}

// LeadRepository defines data access for leads and their owned properties.
type LeadRepository interface {
	// FindAll returns every lead ordered by creation time descending,
	// each annotated with its current total property area.
	FindAll(ctx context.Context) ([]models.LeadWithArea, error)

	// Create inserts the lead and all given properties in one
	// transaction. On any failure nothing is persisted.
	// Returns ErrDuplicateCPF when the cpf is already registered.
	Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error)

	// Update applies only the provided fields and refreshes updated_at.
	// Returns ErrNotFound when no lead matches id.
	Update(ctx context.Context, id uuid.UUID, input UpdateLeadInput) (*models.Lead, error)

	// Delete removes the lead and all of its properties in one
	// transaction. Returns ErrNotFound when no lead matches id.
	Delete(ctx context.Context, id uuid.UUID) error
}

type leadRepository struct {
	db *database.Database
}

// NewLeadRepository creates a new instance of LeadRepository.
func NewLeadRepository(db *database.Database) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindAll(ctx context.Context) ([]models.LeadWithArea, error) {
	query := `
		SELECT
			l.id, l.nome, l.cpf, l.email, l.telefone, l.status, l.comentarios,
			l.created_at, l.updated_at,
			COALESCE(SUM(p.area_hectares), 0)::float8 AS total_area
		FROM leads l
		LEFT JOIN propriedades_rurais p ON p.lead_id = l.id
		GROUP BY l.id
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.LeadWithArea
	for rows.Next() {
		var lead models.LeadWithArea
		err := rows.Scan(
			&lead.ID,
			&lead.Nome,
			&lead.CPF,
			&lead.Email,
			&lead.Telefone,
			&lead.Status,
			&lead.Comentarios,
			&lead.CreatedAt,
			&lead.UpdatedAt,
			&lead.TotalArea,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lead rows: %w", err)
	}

	if leads == nil {
		leads = []models.LeadWithArea{}
	}

	return leads, nil
}

func (r *leadRepository) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	insertLead := `
		INSERT INTO leads (nome, cpf, email, telefone, status, comentarios)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leadColumns

	var lead models.Lead
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertLead,
			input.Nome, input.CPF, input.Email, input.Telefone, input.Status, input.Comentarios)

		err := row.Scan(
			&lead.ID,
			&lead.Nome,
			&lead.CPF,
			&lead.Email,
			&lead.Telefone,
			&lead.Status,
			&lead.Comentarios,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if err != nil {
			return mapPgError(err)
		}

		for _, prop := range input.Propriedades {
			if err := insertProperty(ctx, tx, lead.ID, prop); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lead, nil
}

// insertProperty inserts one property row inside the caller's transaction,
// encoding geometry to geographic text when present.
func insertProperty(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, prop CreatePropertyInput) error {
	query := `
		INSERT INTO propriedades_rurais (lead_id, nome, cultura, area_hectares, municipio, estado)
		VALUES ($1, $2, $3, $4, $5, $6)`
	args := []interface{}{leadID, prop.Nome, prop.Cultura, prop.AreaHectares, prop.Municipio, prop.Estado}

	if prop.Geometria != nil {
		wkt, err := prop.Geometria.WKT()
		if err != nil {
			return err
		}
		query = `
			INSERT INTO propriedades_rurais (lead_id, nome, cultura, area_hectares, municipio, estado, geometria)
			VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromText($7, 4326))`
		args = append(args, wkt)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *leadRepository) Update(ctx context.Context, id uuid.UUID, input UpdateLeadInput) (*models.Lead, error) {
	b := newUpdateBuilder()
	if input.Nome != nil {
		b.Set("nome", *input.Nome)
	}
	if input.CPF != nil {
		b.Set("cpf", *input.CPF)
	}
	if input.Email != nil {
		b.Set("email", *input.Email)
	}
	if input.Telefone != nil {
		b.Set("telefone", *input.Telefone)
	}
	if input.Status != nil {
		b.Set("status", *input.Status)
	}
	if input.Comentarios != nil {
		b.Set("comentarios", *input.Comentarios)
	}

	// updated_at refreshes unconditionally, even when no field changed
	query, params := b.Build("leads", id, leadColumns)

	var lead models.Lead
	err := r.db.Pool.QueryRow(ctx, query, params...).Scan(
		&lead.ID,
		&lead.Nome,
		&lead.CPF,
		&lead.Email,
		&lead.Telefone,
		&lead.Status,
		&lead.Comentarios,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}

	return &lead, nil
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// Owned properties go first so the foreign key never dangles
		if _, err := tx.Exec(ctx, `DELETE FROM propriedades_rurais WHERE lead_id = $1`, id); err != nil {
			return mapPgError(err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
		if err != nil {
			return mapPgError(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		return nil
	})
}
