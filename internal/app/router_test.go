package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ustaad-service/internal/domain/auth"
	authHandler "ustaad-service/internal/handlers/auth"
	requestHandler "ustaad-service/internal/handlers/request"
	validationHandler "ustaad-service/internal/handlers/validation"
	wsHandler "ustaad-service/internal/handlers/websocket"
	"ustaad-service/internal/middleware"
	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/jwt"
	"ustaad-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubValidator map[string]string

func (s stubValidator) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	role, ok := s[token]
	if !ok {
		return nil, xerrors.ErrSessionExpired
	}
	return &jwt.Claims{IdentityID: 1, Role: role}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	v := stubValidator{"cust": auth.RoleCustomer, "prov": auth.RoleProvider}
	logger := zap.NewNop()

	r := gin.New()
	SetupRouter(r, &Handlers{
		AuthHandler:       authHandler.NewAuthHandler(nil, logger),
		RequestHandler:    requestHandler.NewRequestHandler(nil, nil, logger),
		ValidationHandler: validationHandler.NewValidationHandler(),
		WSHandler:         wsHandler.NewWebSocketHandler(websocket.NewHub(v, logger), nil, logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(v),
		Metrics:           promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	})
	return r
}

func get(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter()
	assert.Equal(t, http.StatusOK, get(r, http.MethodGet, "/api/v1/health", ""))
	assert.Equal(t, http.StatusOK, get(r, http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, http.MethodGet, "/ws", ""))
}

func TestRouter_AuthRequired(t *testing.T) {
	r := newTestRouter()
	assert.Equal(t, http.StatusUnauthorized, get(r, http.MethodGet, "/api/v1/auth/me", ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, http.MethodPost, "/api/v1/requests", "expired"))
}

func TestRouter_RoleGates(t *testing.T) {
	r := newTestRouter()
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodGet, "/api/v1/requests/open", "cust"))
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodPost, "/api/v1/requests/r1/accept", "cust"))
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodPost, "/api/v1/requests/r1/reject", "cust"))
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodPost, "/api/v1/requests", "prov"))
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodGet, "/api/v1/requests/mine", "prov"))
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodPost, "/api/v1/requests/r1/cancel", "prov"))
}
