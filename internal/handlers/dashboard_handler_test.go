package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agroleads/api/internal/models"
)

// MockDashboardService is a mock implementation of DashboardService for testing
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func TestDashboardHandler_Stats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockDashboardService)
	handler := NewDashboardHandler(mockService)

	router := gin.New()
	router.GET("/api/v1/leads/statistics/dashboard", handler.Stats)

	stats := &models.DashboardStats{
		TotalLeads: 2,
		LeadsByStatus: []models.StatusCount{
			{Status: models.StatusNovo, Count: 2},
		},
		LeadsByMunicipio: []models.MunicipioCount{
			{Municipio: "Rio Verde", Count: 1},
		},
		PriorityLeads: []models.PriorityLead{
			{ID: uuid.New(), Nome: "Grande Produtor", CPF: "12345678901", Status: models.StatusNovo, TotalArea: 150},
		},
		PropertyStats: models.PropertyStats{TotalPropriedades: 3, AreaTotal: 200, AreaMedia: 66.7},
	}
	mockService.On("GetStats", mock.Anything).Return(stats, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/statistics/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.TotalLeads)
	require.Len(t, response.PriorityLeads, 1)
	assert.InDelta(t, 150, response.PriorityLeads[0].TotalArea, 0.001)

	mockService.AssertExpectations(t)
}

func TestDashboardHandler_StatsFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockDashboardService)
	handler := NewDashboardHandler(mockService)

	router := gin.New()
	router.GET("/api/v1/leads/statistics/dashboard", handler.Stats)

	mockService.On("GetStats", mock.Anything).Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/statistics/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertExpectations(t)
}
