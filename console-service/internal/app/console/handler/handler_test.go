package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/repository/mocks"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/util"
	"stockdesk/console-service/internal/app/console/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Хелперы для создания тестового окружения

type testEnv struct {
	router   *gin.Engine
	stores   *service.Stores
	sessions *mocks.MockSessionRepository
	jwt      *util.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stores := service.NewStores(service.NewMockBackends(0), nil, false)
	sessions := new(mocks.MockSessionRepository)
	jwt := util.NewJWTManager("test-secret-key", time.Hour)
	auth := service.NewAuthService(sessions, stores.Companies, jwt,
		service.AdminAccount{Email: "admin@stockdesk.local", Password: "root", Name: "Admin"})
	inventory := service.NewInventoryService(stores, true)

	h := NewHandlers(stores, auth, inventory, nil, NewHealthCheckHandler(nil, nil, stores))
	router := SetupRoutes(h, NewAuthMiddleware(auth), []string{"http://localhost:5173"})

	return &testEnv{router: router, stores: stores, sessions: sessions, jwt: jwt}
}

func (e *testEnv) token(t *testing.T, role string, id int64) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(id, role+"@example.com", role, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Pages   int `json:"pages"`
}

type success[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ==================== Middleware Tests ====================

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/categories", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header required", decode[entity.ErrorResponse](t, rec).Message)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/categories", "garbage", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decode[entity.ErrorResponse](t, rec).Message)
}

func TestAuthMiddleware_CompaniesAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/companies", env.token(t, entity.RoleCompany, 5), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/companies", env.token(t, entity.RoleAdmin, 0), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==================== Resource Handler Tests ====================

func TestResourceHandler_ListLoadsAndSorts(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	token := env.token(t, entity.RoleCompany, 5)

	// Act
	rec := env.do(http.MethodGet, "/api/categories?sort=name&dir=desc", token, nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[page[entity.Category]](t, rec)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Pages)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Groceries", resp.Items[0].Name)
}

func TestResourceHandler_CreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, entity.RoleAdmin, 0)

	// create
	rec := env.do(http.MethodPost, "/api/products", token, map[string]any{
		"name": "Mouse", "sku": "MS-1", "costPrice": 4, "sellingPrice": 9, "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[success[entity.Product]](t, rec)
	assert.Equal(t, "Product added", created.Message)
	require.NotZero(t, created.Data.ID)

	// partial update keeps other fields
	path := "/api/products/" + strconv.FormatInt(created.Data.ID, 10)
	rec = env.do(http.MethodPut, path, token, map[string]any{"quantity": 8})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[success[entity.Product]](t, rec)
	assert.Equal(t, 8, updated.Data.Quantity)
	assert.Equal(t, "MS-1", updated.Data.SKU)

	// delete twice
	rec = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.stores.Products.Items())
}

func TestResourceHandler_CreateValidationError(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/categories", env.token(t, entity.RoleAdmin, 0), map[string]any{"name": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[entity.ErrorResponse](t, rec).Message, "name")
	assert.Empty(t, env.stores.Categories.Items(), "nothing reached the store")
}

func TestResourceHandler_UpdateRejectsUnknownField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/categories/1", env.token(t, entity.RoleAdmin, 0), map[string]any{"colour": "red"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandler_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodDelete, "/api/categories/abc", env.token(t, entity.RoleAdmin, 0), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandler_State(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, entity.RoleAdmin, 0)
	env.do(http.MethodGet, "/api/categories", token, nil)

	rec := env.do(http.MethodGet, "/api/categories/state", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[map[string]any](t, rec)
	assert.Equal(t, "ready", state["status"])
	assert.Nil(t, state["lastError"])
	assert.Nil(t, state["pendingDeleteId"])
}

func TestResourceHandler_ExportCSV(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/categories/export", env.token(t, entity.RoleAdmin, 0), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Regexp(t, `filename="categories-\d{4}-\d{2}-\d{2}\.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,name\n\"1\",\"Electronics\"\n\"2\",\"Groceries\"", rec.Body.String())
}

func TestResourceHandler_ExportUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/categories/export?format=pdf", env.token(t, entity.RoleAdmin, 0), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandler_ExportXLSXUsesClock(t *testing.T) {
	stores := service.NewStores(service.NewMockBackends(0), nil, false)
	fixed := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)
	h := NewResourceHandler(stores.Categories, views.CategorySchema, views.CategoryTable,
		WithExportClock[entity.Category](func() time.Time { return fixed }))

	router := gin.New()
	h.Register(router.Group("/categories"), nil)

	req := httptest.NewRequest(http.MethodGet, "/categories/export?format=xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="categories-2024-03-05.xlsx"`, rec.Header().Get("Content-Disposition"))

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("categories")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "Electronics"}, {"2", "Groceries"}}, rows)
}

// ==================== Companies ====================

func TestCompanies_RegisterHidesPasswordAndAllowsLogin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, entity.RoleAdmin, 0)

	rec := env.do(http.MethodPost, "/api/companies", admin, map[string]any{
		"name": "Acme", "email": "ops@acme.io", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPost, "/api/companies", admin, map[string]any{
		"name": "Acme", "email": "OPS@acme.io", "password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.sessions.On("Save", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	rec = env.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "ops@acme.io", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[entity.User](t, rec)
	assert.Equal(t, entity.RoleCompany, user.Role)
	assert.NotEmpty(t, user.Token)
}

// ==================== Auth ====================

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "nobody@example.com", "password": "x"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthHandler_LoginBadBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, entity.RoleAdmin, 0)

	env.sessions.On("Load", mock.Anything).Return(&entity.User{Name: "Admin", Role: entity.RoleAdmin, Token: token}, nil).Once()
	rec := env.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[entity.User](t, rec)
	assert.Equal(t, "Admin", me.Name)
	assert.Empty(t, me.Token)

	env.sessions.On("Clear", mock.Anything).Return(nil)
	rec = env.do(http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.sessions.On("Load", mock.Anything).Return(nil, repository.ErrNoSession)
	rec = env.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==================== Movements ====================

func seedProduct(t *testing.T, env *testEnv, quantity int) int64 {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/products", env.token(t, entity.RoleAdmin, 0), map[string]any{
		"name": "Mouse", "costPrice": 4, "sellingPrice": 9, "quantity": quantity,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[success[entity.Product]](t, rec).Data.ID
}

func TestMovementHandler_RecordSale(t *testing.T) {
	env := newTestEnv(t)
	id := seedProduct(t, env, 5)
	token := env.token(t, entity.RoleCompany, 5)

	rec := env.do(http.MethodPost, "/api/sales", token, map[string]any{"productId": id, "quantity": 2})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, true, resp["stockAdjusted"])
	product, _ := env.stores.Products.Find(id)
	assert.Equal(t, 3, product.Quantity)

	rec = env.do(http.MethodPost, "/api/sales", token, map[string]any{"productId": id, "quantity": 4})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMovementHandler_RecordPurchaseOwnedByCompany(t *testing.T) {
	env := newTestEnv(t)
	id := seedProduct(t, env, 1)
	token := env.token(t, entity.RoleCompany, 42)

	rec := env.do(http.MethodPost, "/api/purchases", token, map[string]any{"productId": id, "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/profile/totals", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[map[string]map[string]any](t, rec)
	assert.EqualValues(t, 1, totals["userRelated"]["count"])
	assert.EqualValues(t, 12, totals["display"]["spend"])
}

func TestMovementHandler_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/sales", env.token(t, entity.RoleCompany, 5), map[string]any{"productId": 999, "quantity": 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==================== Dashboard ====================

func TestDashboardHandler(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env, 4)
	token := env.token(t, entity.RoleAdmin, 0)

	rec := env.do(http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, stats["productsTotal"])
	assert.EqualValues(t, 4, stats["averageStock"])

	rec = env.do(http.MethodGet, "/api/dashboard/revenue?days=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	series := decode[map[string]any](t, rec)
	assert.Len(t, series["revenue"], 7)

	rec = env.do(http.MethodGet, "/api/dashboard/revenue?days=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler_ActivityForAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/activity", env.token(t, entity.RoleAdmin, 0), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec), "registrations")

	rec = env.do(http.MethodGet, "/api/activity", env.token(t, entity.RoleCompany, 5), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode[map[string]any](t, rec), "registrations")
}

// ==================== Health ====================

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)

	rec = env.do(http.MethodGet, "/health/liveness", "", nil)
	assert.Equal(t, "alive", strings.TrimSpace(rec.Body.String()))
}
