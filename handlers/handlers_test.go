package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/i18n"
	"expense-tracker-backend/metrics"
	"expense-tracker-backend/models"
	"expense-tracker-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu       sync.Mutex
	expenses []models.Expense
	creates  int
	deletes  []uint
	err      error
}

func (s *memoryStore) Create(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.err != nil {
		return s.err
	}
	e.ID = uint(len(s.expenses) + 1)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *memoryStore) FindAll(context.Context) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Expense(nil), s.expenses...), s.err
}

func (s *memoryStore) DeleteByID(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return apperr.ErrExpenseNotFound
}

type memoryDirectory struct {
	users      []models.User
	categories []models.Category
	tokens     map[uint]string
}

func (d *memoryDirectory) ListUsers(context.Context) ([]models.User, error) {
	return d.users, nil
}

func (d *memoryDirectory) ListCategories(context.Context) ([]models.Category, error) {
	return d.categories, nil
}

func (d *memoryDirectory) UpdateFCMToken(_ context.Context, id uint, token string) error {
	for _, u := range d.users {
		if u.ID == id {
			d.tokens[id] = token
			return nil
		}
	}
	return apperr.ErrUserNotFound
}

type testServer struct {
	router    *gin.Engine
	store     *memoryStore
	directory *memoryDirectory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr, err := i18n.New("en")
	require.NoError(t, err)

	store := &memoryStore{}
	directory := &memoryDirectory{
		users: []models.User{
			{ID: 1, Name: "Alice", Email: "alice@example.com"},
			{ID: 2, Name: "Bob", Email: "bob@example.com"},
		},
		categories: []models.Category{{ID: 1, Code: "FOOD", Label: "Food"}},
		tokens:     map[uint]string{},
	}
	renderer := NewErrorRenderer(tr)
	m := metrics.New()

	router := SetupRouter(RouterConfig{
		AppName:     "Expense Manager",
		CORSOrigins: []string{"*"},
		Logger:      zap.NewNop(),
		Metrics:     m,
		Errors:      renderer,
		Expenses:    NewExpenseHandler(services.NewExpenseService(store, nil, m, zap.NewNop()), renderer),
		Directory:   NewDirectoryHandler(directory, renderer),
	})
	return &testServer{router: router, store: store, directory: directory}
}

func (s *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func validBody() map[string]any {
	return map[string]any{
		"title":        "Team Lunch",
		"amount":       120,
		"paidById":     1,
		"categoryId":   1,
		"splitWithIds": []int{1, 2},
		"expenseDate":  "2025-09-29",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Expense Manager API running")

	w = s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"Expense Manager"}`, w.Body.String())
}

func TestCreateExpense_Created(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/expenses", validBody(), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[models.ExpenseResponse](t, w)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, models.CurrencyGBP, resp.Currency)
	assert.Equal(t, models.SplitTypeEqual, resp.SplitType)
	assert.Equal(t, []float64{60, 60}, resp.SplitAmount)
	assert.Equal(t, []float64{}, resp.SplitPercentage)
	assert.Equal(t, []uint{1, 2}, resp.SplitWithIDs)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateExpense_SplitErrorsAreLocalized(t *testing.T) {
	s := newTestServer(t)

	body := validBody()
	body["amount"] = 100
	body["splitType"] = "AMOUNT"
	body["splitAmount"] = []float64{40, 40}

	w := s.do(http.MethodPost, "/api/expenses", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	en := decode[errorBody](t, w)
	assert.Equal(t, "SPLIT_SUM_MISMATCH", en.Code)
	assert.Equal(t, "The split amounts must add up to the expense amount (100)", en.Error)

	w = s.do(http.MethodPost, "/api/expenses", body, map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fr := decode[errorBody](t, w)
	assert.Equal(t, "SPLIT_SUM_MISMATCH", fr.Code)
	assert.NotEqual(t, en.Error, fr.Error)

	body["splitType"] = "PERCENTAGE"
	body["splitPercentage"] = []float64{50, 40}
	w = s.do(http.MethodPost, "/api/expenses", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SPLIT_PERCENTAGE_INVALID", decode[errorBody](t, w).Code)

	assert.Zero(t, s.store.creates)
}

func TestCreateExpense_StructuralValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		mut   func(map[string]any)
		field string
	}{
		{"missing title", func(b map[string]any) { delete(b, "title") }, "title"},
		{"zero amount", func(b map[string]any) { b["amount"] = 0 }, "amount"},
		{"negative amount", func(b map[string]any) { b["amount"] = -5 }, "amount"},
		{"sub-cent amount", func(b map[string]any) { b["amount"] = 100.555 }, "amount"},
		{"bad currency", func(b map[string]any) { b["currency"] = "XYZ" }, "currency"},
		{"bad split type", func(b map[string]any) { b["splitType"] = "SHARES" }, "splitType"},
		{"duplicate participants", func(b map[string]any) { b["splitWithIds"] = []int{1, 1} }, "splitWithIds"},
		{"non-positive share", func(b map[string]any) { b["splitAmount"] = []float64{0, 120} }, "splitAmount[0]"},
		{"bad date", func(b map[string]any) { b["expenseDate"] = "someday" }, "expenseDate"},
		{"missing date", func(b map[string]any) { delete(b, "expenseDate") }, "expenseDate"},
		{"wrong type", func(b map[string]any) { b["paidById"] = "one" }, "paidById"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mut(body)

			w := s.do(http.MethodPost, "/api/expenses", body, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := decode[errorBody](t, w)
			assert.Equal(t, "VALIDATION_ERROR", resp.Code)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.field, resp.Details[0].Field)
			assert.NotEmpty(t, resp.Details[0].Message)
		})
	}
	assert.Zero(t, s.store.creates)
}

func TestCreateExpense_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/expenses", `{"title":`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decode[errorBody](t, w).Code)
}

func TestCreateExpense_InternalErrorIsGeneric(t *testing.T) {
	s := newTestServer(t)
	s.store.err = errors.New("pq: password authentication failed for user postgres")

	w := s.do(http.MethodPost, "/api/expenses", validBody(), map[string]string{"Accept-Language": "fr"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[errorBody](t, w)
	assert.Equal(t, "Erreur interne du serveur", resp.Error)
	assert.Empty(t, resp.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetExpenses(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/expenses", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	s.do(http.MethodPost, "/api/expenses", validBody(), nil)
	w = s.do(http.MethodGet, "/api/expenses", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.ExpenseResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Team Lunch", list[0].Title)
}

func TestDeleteExpense(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/expenses", validBody(), nil)

	w := s.do(http.MethodDelete, "/api/expenses/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Expense deleted successfully"}`, w.Body.String())
	assert.Equal(t, []uint{1}, s.store.deletes)

	w = s.do(http.MethodDelete, "/api/expenses/1", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EXPENSE_NOT_FOUND", decode[errorBody](t, w).Code)

	w = s.do(http.MethodDelete, "/api/expenses/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode[errorBody](t, w).Code)
	assert.Len(t, s.store.deletes, 2)
}

func TestDirectoryRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.UserResponse](t, w)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)

	w = s.do(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Category](t, w), 1)

	w = s.do(http.MethodPut, "/api/users/2/fcm-token", map[string]string{"token": "device-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "device-1", s.directory.tokens[2])

	w = s.do(http.MethodPut, "/api/users/9/fcm-token", map[string]string{"token": "x"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPut, "/api/users/2/fcm-token", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "token", decode[errorBody](t, w).Details[0].Field)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/expenses", validBody(), nil)

	w := s.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `expenses_created_total{split_type="EQUAL"} 1`)
}

func TestRecoveryRendersLocalizedError(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := s.do(http.MethodGet, "/boom", nil, map[string]string{"Accept-Language": "fr"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Erreur interne du serveur", decode[errorBody](t, w).Error)
}
