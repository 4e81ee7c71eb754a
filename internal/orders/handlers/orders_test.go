package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-court/internal/common/logger"
	"food-court/internal/domain"
	"food-court/internal/orders/service"
)

type memOrders struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[int64]*domain.Order), nextID: 1}
}

func (m *memOrders) seed(status domain.Status, userID, venueID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.orders[id] = &domain.Order{ID: id, VenueID: venueID, StallID: 1, UserID: userID, Status: status}
	return id
}

func (m *memOrders) Create(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextID
	m.nextID++
	o.Status = domain.StatusPending
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatusCAS(ctx context.Context, id int64, expected, next domain.Status, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	o.UpdatedAt = at
	return true, nil
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []*domain.StatusUpdate
}

func (c *captureDispatcher) Dispatch(ctx context.Context, ev *domain.StatusUpdate, userID, venueID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureDispatcher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func setup(t *testing.T) (*memOrders, *captureDispatcher, *http.ServeMux) {
	t.Helper()
	repo := newMemOrders()
	disp := &captureDispatcher{}
	svc := service.NewOrderService(repo, logger.New("test"))
	mux := http.NewServeMux()
	NewOrderHandler(svc, disp, logger.New("test")).Register(mux)
	return repo, disp, mux
}

func doPut(mux *http.ServeMux, orderID int64, status string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"status": status})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatusCommitsAndDispatches(t *testing.T) {
	repo, disp, mux := setup(t)
	id := repo.seed(domain.StatusPending, 1, 7)

	rec := doPut(mux, id, "in_progress")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "in_progress", resp.Status)

	require.Equal(t, 1, disp.count())
	ev := disp.events[0]
	assert.Equal(t, id, ev.OrderID)
	assert.Equal(t, domain.StatusPending, ev.OldStatus)
	assert.Equal(t, domain.StatusInProgress, ev.NewStatus)
}

func TestUpdateStatusIdempotentRepeat(t *testing.T) {
	repo, disp, mux := setup(t)
	id := repo.seed(domain.StatusPending, 1, 7)

	require.Equal(t, http.StatusOK, doPut(mux, id, "in_progress").Code)
	require.Equal(t, 1, disp.count())

	// identical second PUT: success, no further event
	rec := doPut(mux, id, "in_progress")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, disp.count(), "no-op must not dispatch")
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	repo, disp, mux := setup(t)
	id := repo.seed(domain.StatusPending, 1, 7)

	rec := doPut(mux, id, "completed")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, disp.count(), "failed transition must not dispatch")

	o, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, domain.StatusPending, o.Status)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	repo, disp, mux := setup(t)
	id := repo.seed(domain.StatusPending, 1, 7)

	rec := doPut(mux, id, "cooking")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, disp.count())
}

func TestUpdateStatusNotFound(t *testing.T) {
	_, disp, mux := setup(t)
	rec := doPut(mux, 404, "in_progress")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, disp.count())
}

func TestCreateOrder(t *testing.T) {
	_, _, mux := setup(t)
	body, _ := json.Marshal(domain.CreateOrderRequest{
		VenueID: 7, StallID: 2, UserID: 1,
		Items: []domain.CreateOrderItem{{MenuItemID: 3, Quantity: 2}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp domain.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(7), resp.VenueID)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	_, _, mux := setup(t)
	body, _ := json.Marshal(domain.CreateOrderRequest{VenueID: 7, StallID: 2, UserID: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	repo, _, mux := setup(t)
	id := repo.seed(domain.StatusReady, 1, 7)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
}

func TestListOrdersRequiresUserID(t *testing.T) {
	_, _, mux := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
