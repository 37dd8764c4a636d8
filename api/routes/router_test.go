package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalorders "github.com/retailops/retailops-backend/internal/orders"
	"github.com/retailops/retailops-backend/pkg/config"
	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/logger"
	"github.com/retailops/retailops-backend/pkg/pagination"
	"github.com/redis/go-redis/v9"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.data == nil {
		m.data = map[string]string{}
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type stubOrdersService struct {
	order  *models.Order
	getErr error
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	return s.order, nil
}

func (s *stubOrdersService) EditOrder(ctx context.Context, input internalorders.EditOrderInput) (*models.Order, error) {
	return s.order, nil
}

func (s *stubOrdersService) TransitionStatus(ctx context.Context, input internalorders.TransitionStatusInput) (*internalorders.TransitionResult, error) {
	return &internalorders.TransitionResult{Order: s.order, Diagnostic: "inventory not adjusted"}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.order, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{Orders: []models.Order{*s.order}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	svc := &stubOrdersService{order: &models.Order{
		ID:        uuid.New(),
		Name:      "order",
		BuyerID:   uuid.New(),
		OrderType: enums.OrderTypeRetail,
		Status:    enums.OrderStatusPending,
	}}
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, &memoryStore{}, svc)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if resp.Header().Get("X-RetailOps-Env") != "test" {
			t.Fatalf("%s: missing env header", path)
		}
	}
}

func TestRouterOrderRoutesAreWired(t *testing.T) {
	router := newTestRouter(t)
	orderID := uuid.NewString()

	tests := []struct {
		method string
		path   string
		body   string
		idem   bool
		want   int
	}{
		{http.MethodGet, "/api/v1/orders", "", false, http.StatusOK},
		{http.MethodGet, "/api/v1/orders/" + orderID, "", false, http.StatusOK},
		{http.MethodPost, "/api/v1/orders", `{"name":"o","buyer_id":"` + uuid.NewString() + `","order_type":"retail"}`, true, http.StatusCreated},
		{http.MethodPatch, "/api/v1/orders/" + orderID + "/status", `{"paid":true}`, true, http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		if tt.idem {
			req.Header.Set("Idempotency-Key", uuid.NewString())
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s %s: expected %d got %d (%s)", tt.method, tt.path, tt.want, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterDetailUnknownOrderReturns404(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	svc := &stubOrdersService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	router := NewRouter(cfg, logg, stubPinger{}, stubPinger{}, &memoryStore{}, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "order not found") {
		t.Fatalf("expected public not-found message, got %s", resp.Body.String())
	}
}

func TestRouterMutationRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"o","buyer_id":"` + uuid.NewString() + `","order_type":"retail"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", resp.Code)
	}
}

func TestRouterReadyFailsWhenDependencyDown(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	svc := &stubOrdersService{order: &models.Order{ID: uuid.New()}}
	router := NewRouter(cfg, logg, stubPinger{err: context.DeadlineExceeded}, stubPinger{}, &memoryStore{}, svc)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
