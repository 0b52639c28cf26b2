package request

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/domain/request"
	"ustaad-service/internal/middleware"
	xerrors "ustaad-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateRequest(ctx context.Context, customer *request.CustomerInfo, req *request.CreateRequest) (*request.ServiceRequest, error) {
	args := m.Called(ctx, customer, req)
	r, _ := args.Get(0).(*request.ServiceRequest)
	return r, args.Error(1)
}

func (m *mockService) CancelRequest(ctx context.Context, id string, customerID int64, reason string) request.Result {
	return m.Called(ctx, id, customerID, reason).Get(0).(request.Result)
}

func (m *mockService) AcceptRequest(ctx context.Context, id string, provider *request.ProviderInfo) request.Result {
	return m.Called(ctx, id, provider).Get(0).(request.Result)
}

func (m *mockService) RejectRequest(ctx context.Context, id string, provider *request.ProviderInfo, reason string) request.Result {
	return m.Called(ctx, id, provider, reason).Get(0).(request.Result)
}

func (m *mockService) ListCustomerRequests(ctx context.Context, customerID int64, limit int) ([]*request.ServiceRequest, error) {
	args := m.Called(ctx, customerID, limit)
	list, _ := args.Get(0).([]*request.ServiceRequest)
	return list, args.Error(1)
}

func (m *mockService) ListOpenRequests(ctx context.Context, serviceType string, limit int) ([]*request.ServiceRequest, error) {
	args := m.Called(ctx, serviceType, limit)
	list, _ := args.Get(0).([]*request.ServiceRequest)
	return list, args.Error(1)
}

func (m *mockService) GetRequest(ctx context.Context, id string, identityID int64, role string) (*request.ServiceRequest, error) {
	args := m.Called(ctx, id, identityID, role)
	r, _ := args.Get(0).(*request.ServiceRequest)
	return r, args.Error(1)
}

type staticProfiles map[int64]*auth.Me

func (p staticProfiles) GetMe(_ context.Context, id int64) (*auth.Me, error) {
	me, ok := p[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return me, nil
}

var profiles = staticProfiles{
	1: {IdentityID: 1, FullName: "Ayesha", Phone: "+923001234567", Role: auth.RoleCustomer},
	2: {IdentityID: 2, FullName: "Bilal", Phone: "+923111234567", Role: auth.RoleProvider},
}

func newRouter(svc Service, as middleware.CurrentUser) *gin.Engine {
	h := NewRequestHandler(svc, profiles, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetCurrentUser(c, as)
		c.Next()
	})
	r.POST("/requests", h.Create)
	r.GET("/requests/mine", h.Mine)
	r.GET("/requests/open", h.Open)
	r.GET("/requests/:id", h.Get)
	r.POST("/requests/:id/accept", h.Accept)
	r.POST("/requests/:id/reject", h.Reject)
	r.POST("/requests/:id/cancel", h.Cancel)
	return r
}

var (
	customer = middleware.CurrentUser{IdentityID: 1, Role: auth.RoleCustomer}
	provider = middleware.CurrentUser{IdentityID: 2, Role: auth.RoleProvider}
)

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestCreate_StampsCustomerProfile(t *testing.T) {
	svc := new(mockService)
	svc.On("CreateRequest", mock.Anything,
		&request.CustomerInfo{ID: 1, Name: "Ayesha", Phone: "+923001234567"},
		&request.CreateRequest{ServiceType: "plumber", Address: "House 12, Street 4, F-7"},
	).Return(&request.ServiceRequest{ID: "r1", Status: request.StatusPending}, nil)

	w, body := do(t, newRouter(svc, customer), http.MethodPost, "/requests", gin.H{
		"service_type": "plumber",
		"address":      "House 12, Street 4, F-7",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "r1", body["data"].(map[string]any)["id"])
	svc.AssertExpectations(t)
}

func TestAccept_Success(t *testing.T) {
	svc := new(mockService)
	pid := int64(2)
	svc.On("AcceptRequest", mock.Anything, "r1", &request.ProviderInfo{ID: 2, Name: "Bilal", Phone: "+923111234567"}).
		Return(request.Succeeded(&request.ServiceRequest{ID: "r1", Status: request.StatusAccepted, ProviderID: &pid}))

	w, body := do(t, newRouter(svc, provider), http.MethodPost, "/requests/r1/accept", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "accepted", data["request"].(map[string]any)["status"])
}

func TestMatchFailures_StatusMapping(t *testing.T) {
	cases := map[string]int{
		request.MsgUnavailable:      http.StatusConflict,
		request.MsgNotAuthenticated: http.StatusUnauthorized,
		request.MsgNotOwner:         http.StatusForbidden,
		request.MsgCancelFailed:     http.StatusInternalServerError,
	}
	for msg, status := range cases {
		t.Run(msg, func(t *testing.T) {
			svc := new(mockService)
			svc.On("CancelRequest", mock.Anything, "r1", int64(1), "changed plans").Return(request.Failed(msg))

			w, body := do(t, newRouter(svc, customer), http.MethodPost, "/requests/r1/cancel", gin.H{"reason": "changed plans"})

			assert.Equal(t, status, w.Code)
			assert.Equal(t, msg, body["message"])
			assert.Equal(t, msg, body["data"].(map[string]any)["error"])
		})
	}
}

func TestReject_EmptyBody(t *testing.T) {
	svc := new(mockService)
	svc.On("RejectRequest", mock.Anything, "r1", mock.Anything, "").
		Return(request.Succeeded(&request.ServiceRequest{ID: "r1", Status: request.StatusRejected}))

	w, _ := do(t, newRouter(svc, provider), http.MethodPost, "/requests/r1/reject", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOpen_PassesFilterAndLimit(t *testing.T) {
	svc := new(mockService)
	svc.On("ListOpenRequests", mock.Anything, "electrician", 10).Return([]*request.ServiceRequest{{ID: "r1"}}, nil)

	w, body := do(t, newRouter(svc, provider), http.MethodGet, "/requests/open?service_type=electrician&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
}

func TestMine(t *testing.T) {
	svc := new(mockService)
	svc.On("ListCustomerRequests", mock.Anything, int64(1), 0).Return([]*request.ServiceRequest{{ID: "a"}, {ID: "b"}}, nil)

	w, body := do(t, newRouter(svc, customer), http.MethodGet, "/requests/mine", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 2)
}

func TestGet_NotFound(t *testing.T) {
	svc := new(mockService)
	svc.On("GetRequest", mock.Anything, "missing", int64(2), auth.RoleProvider).Return(nil, xerrors.ErrNotFound)

	w, _ := do(t, newRouter(svc, provider), http.MethodGet, "/requests/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
