package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ierrors "github.com/abezpalov/inventory_service/internal/errors"
	"github.com/abezpalov/inventory_service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInventoryService is a mock implementation of the InventoryService interface
type mockInventoryService struct {
	product  *service.ProductDto
	products []service.ProductDto
	error    error
}

func (m *mockInventoryService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockInventoryService) FindAll(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockInventoryService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockInventoryService) Update(_ context.Context, _ uuid.UUID, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockInventoryService) Purchase(_ context.Context, _ uuid.UUID, _ int32) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

// newTestRouter wires the handler under test into a fresh chi router.
func newTestRouter(svc service.InventoryService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func Test_Handler_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  *mockInventoryService
		productID    string
		expectedCode int
	}{
		{
			name: "Success - product found",
			mockService: &mockInventoryService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Toy", Version: 1},
			},
			productID:    mockID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockInventoryService{error: ierrors.ErrProductNotFound},
			productID:    mockID.String(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - malformed ID",
			mockService:  &mockInventoryService{},
			productID:    "not-a-uuid",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodGet, "/api/v1/products/"+tc.productID, "")
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusOK {
				var got service.ProductDto
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, *tc.mockService.product, got)
			}
		})
	}
}

func Test_Handler_FindAll(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	// given
	mux := newTestRouter(&mockInventoryService{
		products: []service.ProductDto{{ID: mockID.String(), Name: "Toy", Version: 1}},
	})

	// when
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var got []service.ProductDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Toy", got[0].Name)
}

func Test_Handler_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  *mockInventoryService
		body         string
		expectedCode int
	}{
		{
			name: "Success - product created",
			mockService: &mockInventoryService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Toy", Price: 100, Stock: 10, Version: 1},
			},
			body:         `{"name":"Toy","price":100,"stock":10}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - empty name",
			mockService:  &mockInventoryService{},
			body:         `{"name":"","price":100,"stock":10}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative price",
			mockService:  &mockInventoryService{},
			body:         `{"name":"Toy","price":-1,"stock":10}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative stock",
			mockService:  &mockInventoryService{},
			body:         `{"name":"Toy","price":100,"stock":-5}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - malformed body",
			mockService:  &mockInventoryService{},
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/products", tc.body)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  *mockInventoryService
		body         string
		expectedCode int
	}{
		{
			name: "Success - product updated",
			mockService: &mockInventoryService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Toy", Price: 100, Stock: 10, Version: 2},
			},
			body:         `{"name":"Toy","price":100,"stock":10,"version":1}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockInventoryService{error: ierrors.ErrProductNotFound},
			body:         `{"name":"Toy","price":100,"stock":10,"version":1}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - stale version maps to conflict",
			mockService:  &mockInventoryService{error: ierrors.ErrVersionConflict},
			body:         `{"name":"Toy","price":100,"stock":10,"version":1}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - version zero is stale, not malformed",
			mockService:  &mockInventoryService{error: ierrors.ErrVersionConflict},
			body:         `{"name":"Toy","price":100,"stock":10,"version":0}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - missing version is stale, not malformed",
			mockService:  &mockInventoryService{error: ierrors.ErrVersionConflict},
			body:         `{"name":"Toy","price":100,"stock":10}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - negative version",
			mockService:  &mockInventoryService{},
			body:         `{"name":"Toy","price":100,"stock":10,"version":-1}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPut, "/api/v1/products/"+mockID.String(), tc.body)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Purchase(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  *mockInventoryService
		body         string
		expectedCode int
	}{
		{
			name: "Success - stock decremented",
			mockService: &mockInventoryService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Toy", Stock: 8, Version: 2},
			},
			body:         `{"quantity":2}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockInventoryService{error: ierrors.ErrProductNotFound},
			body:         `{"quantity":2}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - insufficient stock maps to conflict",
			mockService:  &mockInventoryService{error: ierrors.ErrInsufficientStock},
			body:         `{"quantity":100}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - lock timeout maps to conflict",
			mockService:  &mockInventoryService{error: ierrors.ErrLockTimeout},
			body:         `{"quantity":1}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - zero quantity",
			mockService:  &mockInventoryService{},
			body:         `{"quantity":0}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative quantity",
			mockService:  &mockInventoryService{},
			body:         `{"quantity":-1}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - malformed body",
			mockService:  &mockInventoryService{},
			body:         `{"quantity":`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/products/"+mockID.String()+"/purchase", tc.body)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	mux := newTestRouter(&mockInventoryService{})
	rec := doRequest(t, mux, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
