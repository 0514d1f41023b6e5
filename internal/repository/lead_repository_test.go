package repository

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/agroleads/api/internal/config"
	"github.com/agroleads/api/internal/database"
	"github.com/agroleads/api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestConfig returns database configuration for integration tests.
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "agroleads"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestDB connects to the integration database; skipped in short mode.
func setupTestDB(t *testing.T) *database.Database {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

// randomCPF generates an 11-digit value unique enough for test isolation.
func randomCPF() string {
	return fmt.Sprintf("%011d", rand.Int63n(100_000_000_000))
}

func testSquare() *models.Polygon {
	poly, err := models.NewPolygon([][][2]float64{{
		{-47.0, -15.0},
		{-47.0, -14.0},
		{-46.0, -14.0},
		{-46.0, -15.0},
	}})
	if err != nil {
		panic(err)
	}
	return poly
}

func strPtr(s string) *string { return &s }

func countLeads(t *testing.T, db *database.Database) int {
	var count int
	err := db.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM leads`).Scan(&count)
	require.NoError(t, err)
	return count
}

// findLead locates one lead in a FindAll result by id.
func findLead(leads []models.LeadWithArea, id uuid.UUID) *models.LeadWithArea {
	for i := range leads {
		if leads[i].ID == id {
			return &leads[i]
		}
	}
	return nil
}

func TestLeadRepository_CreateAndFindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	input := CreateLeadInput{
		Nome:   "Maria Oliveira",
		CPF:    randomCPF(),
		Email:  strPtr("maria@example.com"),
		Status: models.StatusNovo,
		Propriedades: []CreatePropertyInput{
			{Nome: "Sítio Norte", AreaHectares: 30, Municipio: strPtr("Uberaba"), Geometria: testSquare()},
			{Nome: "Sítio Sul", AreaHectares: 20.5},
		},
	}

	lead, err := repo.Create(ctx, input)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, lead.ID) })

	assert.NotEqual(t, uuid.Nil, lead.ID)
	assert.Equal(t, input.Nome, lead.Nome)
	assert.Equal(t, input.CPF, lead.CPF)
	assert.False(t, lead.CreatedAt.IsZero())

	leads, err := repo.FindAll(ctx)
	require.NoError(t, err)

	found := findLead(leads, lead.ID)
	require.NotNil(t, found, "created lead missing from FindAll")
	assert.InDelta(t, 50.5, found.TotalArea, 0.001)
}

func TestLeadRepository_FindAllZeroAreaWithoutProperties(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	lead, err := repo.Create(ctx, CreateLeadInput{
		Nome:   "Sem Propriedades",
		CPF:    randomCPF(),
		Status: models.StatusNovo,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, lead.ID) })

	leads, err := repo.FindAll(ctx)
	require.NoError(t, err)

	found := findLead(leads, lead.ID)
	require.NotNil(t, found)
	assert.Zero(t, found.TotalArea)
}

func TestLeadRepository_DuplicateCPFLeavesNothingBehind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	cpf := randomCPF()
	first, err := repo.Create(ctx, CreateLeadInput{Nome: "Primeiro", CPF: cpf, Status: models.StatusNovo})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, first.ID) })

	before := countLeads(t, db)

	_, err = repo.Create(ctx, CreateLeadInput{
		Nome:   "Segundo",
		CPF:    cpf,
		Status: models.StatusNovo,
		Propriedades: []CreatePropertyInput{
			{Nome: "Fazenda Fantasma", AreaHectares: 10},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateCPF)

	assert.Equal(t, before, countLeads(t, db), "failed create must not change row count")
}

func TestLeadRepository_InvalidAreaRollsBackWholeBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	before := countLeads(t, db)
	cpf := randomCPF()

	// Second property violates the area check; lead and first property
	// must both disappear with it.
	_, err := repo.Create(ctx, CreateLeadInput{
		Nome:   "Rollback Total",
		CPF:    cpf,
		Status: models.StatusNovo,
		Propriedades: []CreatePropertyInput{
			{Nome: "Válida", AreaHectares: 25},
			{Nome: "Inválida", AreaHectares: -1},
		},
	})
	assert.ErrorIs(t, err, ErrCheckViolation)

	assert.Equal(t, before, countLeads(t, db))

	leads, err := repo.FindAll(ctx)
	require.NoError(t, err)
	for _, l := range leads {
		assert.NotEqual(t, cpf, l.CPF, "rolled-back lead is visible")
	}
}

func TestLeadRepository_PartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	lead, err := repo.Create(ctx, CreateLeadInput{
		Nome:     "Carlos Souza",
		CPF:      randomCPF(),
		Email:    strPtr("carlos@example.com"),
		Telefone: strPtr("11988887777"),
		Status:   models.StatusNovo,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, lead.ID) })

	updated, err := repo.Update(ctx, lead.ID, UpdateLeadInput{
		Status: strPtr(models.StatusEmNegociacao),
	})
	require.NoError(t, err)

	// Only status and updated_at may differ
	assert.Equal(t, models.StatusEmNegociacao, updated.Status)
	assert.Equal(t, lead.Nome, updated.Nome)
	assert.Equal(t, lead.CPF, updated.CPF)
	assert.Equal(t, lead.Email, updated.Email)
	assert.Equal(t, lead.Telefone, updated.Telefone)
	assert.Equal(t, lead.Comentarios, updated.Comentarios)
	assert.Equal(t, lead.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(lead.UpdatedAt))
}

func TestLeadRepository_UpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeadRepository(db)

	_, err := repo.Update(context.Background(), uuid.New(), UpdateLeadInput{
		Nome: strPtr("Ninguém"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeadRepository_DeleteCascadesToProperties(t *testing.T) {
	db := setupTestDB(t)
	leadRepo := NewLeadRepository(db)
	propRepo := NewPropertyRepository(db)
	ctx := context.Background()

	lead, err := leadRepo.Create(ctx, CreateLeadInput{
		Nome:   "Para Remover",
		CPF:    randomCPF(),
		Status: models.StatusNovo,
		Propriedades: []CreatePropertyInput{
			{Nome: "Gleba A", AreaHectares: 12},
			{Nome: "Gleba B", AreaHectares: 8, Geometria: testSquare()},
		},
	})
	require.NoError(t, err)

	require.NoError(t, leadRepo.Delete(ctx, lead.ID))

	props, err := propRepo.FindAll(ctx, &lead.ID)
	require.NoError(t, err)
	assert.Empty(t, props, "properties must be removed with their lead")

	leads, err := leadRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, findLead(leads, lead.ID))

	assert.ErrorIs(t, leadRepo.Delete(ctx, lead.ID), ErrNotFound)
}
