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

// propertySelect joins the owning lead's name and decodes geometry to
// GeoJSON so rows scan uniformly across every read path.
const propertySelect = `
	SELECT
		p.id,
		p.lead_id,
		l.nome AS lead_nome,
		p.nome,
		p.cultura,
		p.area_hectares::float8,
		p.municipio,
		p.estado,
		ST_AsGeoJSON(p.geometria) AS geometria,
		p.created_at,
		p.updated_at
	FROM propriedades_rurais p
	LEFT JOIN leads l ON l.id = p.lead_id
`

// propertyReturning mirrors propertySelect for INSERT/UPDATE ... RETURNING,
// where the lead join is unavailable.
const propertyReturning = `id, lead_id, nome, cultura, area_hectares::float8, municipio, estado, ST_AsGeoJSON(geometria), created_at, updated_at`

// CreatePropertyInput carries the fields for a new property.
type CreatePropertyInput struct {
	LeadID       uuid.UUID
	Nome         string
	Cultura      *string
	AreaHectares float64
	Municipio    *string
	Estado       *string
	Geometria    *models.Polygon
}

// UpdatePropertyInput is a sparse field set for a partial property
// update. Nil means "leave unchanged"; geometry is re-encoded only when
// explicitly provided.
type UpdatePropertyInput struct {
	LeadID       *uuid.UUID
	Nome         *string
	Cultura      *string
	AreaHectares *float64
	Municipio    *string
	Estado       *string
	Geometria    *models.Polygon
}

// PropertyRepository defines data access for rural properties.
type PropertyRepository interface {
	// FindAll returns properties joined with their owning lead's name,
	// ordered by creation time descending. leadID filters to one lead
	// when non-nil.
	FindAll(ctx context.Context, leadID *uuid.UUID) ([]models.Property, error)

	// FindByID returns one property. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// Create inserts a property, encoding geometry when present.
	// Returns ErrLeadReference when the lead id does not exist.
	Create(ctx context.Context, input CreatePropertyInput) (*models.Property, error)

	// Update applies only the provided fields. When nothing besides
	// updated_at would change it is a no-op returning the current row.
	// Returns ErrNotFound when no property matches id.
	Update(ctx context.Context, id uuid.UUID, input UpdatePropertyInput) (*models.Property, error)

	// Delete removes the property. Returns ErrNotFound when no row
	// was affected.
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) FindAll(ctx context.Context, leadID *uuid.UUID) ([]models.Property, error) {
	query := propertySelect
	var args []interface{}

	if leadID != nil {
		query += " WHERE p.lead_id = $1"
		args = append(args, *leadID)
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		prop, err := scanProperty(rows.Scan, true)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *prop)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	if properties == nil {
		properties = []models.Property{}
	}

	return properties, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.Pool.QueryRow(ctx, propertySelect+" WHERE p.id = $1", id)

	prop, err := scanProperty(row.Scan, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return prop, nil
}

func (r *propertyRepository) Create(ctx context.Context, input CreatePropertyInput) (*models.Property, error) {
	query := `
		INSERT INTO propriedades_rurais (lead_id, nome, cultura, area_hectares, municipio, estado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + propertyReturning
	args := []interface{}{input.LeadID, input.Nome, input.Cultura, input.AreaHectares, input.Municipio, input.Estado}

	if input.Geometria != nil {
		wkt, err := input.Geometria.WKT()
		if err != nil {
			return nil, err
		}
		query = `
			INSERT INTO propriedades_rurais (lead_id, nome, cultura, area_hectares, municipio, estado, geometria)
			VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromText($7, 4326))
			RETURNING ` + propertyReturning
		args = append(args, wkt)
	}

	row := r.db.Pool.QueryRow(ctx, query, args...)
	prop, err := scanProperty(row.Scan, false)
	if err != nil {
		return nil, mapPgError(err)
	}

	return prop, nil
}

func (r *propertyRepository) Update(ctx context.Context, id uuid.UUID, input UpdatePropertyInput) (*models.Property, error) {
	// Existence check first so a missing row surfaces as NotFound even
	// when the sparse set is empty
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := newUpdateBuilder()
	if input.LeadID != nil {
		b.Set("lead_id", *input.LeadID)
	}
	if input.Nome != nil {
		b.Set("nome", *input.Nome)
	}
	if input.Cultura != nil {
		b.Set("cultura", *input.Cultura)
	}
	if input.AreaHectares != nil {
		b.Set("area_hectares", *input.AreaHectares)
	}
	if input.Municipio != nil {
		b.Set("municipio", *input.Municipio)
	}
	if input.Estado != nil {
		b.Set("estado", *input.Estado)
	}
	if input.Geometria != nil {
		wkt, err := input.Geometria.WKT()
		if err != nil {
			return nil, err
		}
		b.SetExpr("geometria", "ST_GeomFromText(%s, 4326)", wkt)
	}

	// Only updated_at would change: skip the write, return current state
	if b.Empty() {
		return current, nil
	}

	query, params := b.Build("propriedades_rurais", id, propertyReturning)

	row := r.db.Pool.QueryRow(ctx, query, params...)
	prop, err := scanProperty(row.Scan, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}

	// The RETURNING clause cannot join the lead; refetch when ownership
	// moved, otherwise the known name still holds
	if input.LeadID != nil && *input.LeadID != current.LeadID {
		return r.FindByID(ctx, id)
	}
	prop.LeadNome = current.LeadNome

	return prop, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM propriedades_rurais WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProperty scans one property row. withLeadNome matches queries built
// from propertySelect; RETURNING rows lack the joined column.
func scanProperty(scan func(dest ...interface{}) error, withLeadNome bool) (*models.Property, error) {
	var prop models.Property
	var geomJSON []byte

	dest := []interface{}{&prop.ID, &prop.LeadID}
	if withLeadNome {
		dest = append(dest, &prop.LeadNome)
	}
	dest = append(dest,
		&prop.Nome,
		&prop.Cultura,
		&prop.AreaHectares,
		&prop.Municipio,
		&prop.Estado,
		&geomJSON,
		&prop.CreatedAt,
		&prop.UpdatedAt,
	)

	if err := scan(dest...); err != nil {
		return nil, err
	}

	if geomJSON != nil {
		var poly models.Polygon
		if err := poly.Scan(geomJSON); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for property %s: %w", prop.ID, err)
		}
		prop.Geometria = &poly
	}

	return &prop, nil
}
