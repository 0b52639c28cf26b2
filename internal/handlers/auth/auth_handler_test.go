package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/middleware"
	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = validation.RegisterBindings(v)
	}
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*auth.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*auth.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockService) Logout(ctx context.Context, identityID int64, jti string) error {
	return m.Called(ctx, identityID, jti).Error(0)
}

func (m *mockService) GetMe(ctx context.Context, identityID int64) (*auth.Me, error) {
	args := m.Called(ctx, identityID)
	me, _ := args.Get(0).(*auth.Me)
	return me, args.Error(1)
}

func (m *mockService) UpdateProfile(ctx context.Context, identityID int64, req *auth.UpdateProfileRequest) (*auth.Me, error) {
	args := m.Called(ctx, identityID, req)
	me, _ := args.Get(0).(*auth.Me)
	return me, args.Error(1)
}

func (m *mockService) UpdateSettings(ctx context.Context, identityID int64, settings map[string]interface{}) (*auth.Me, error) {
	args := m.Called(ctx, identityID, settings)
	me, _ := args.Get(0).(*auth.Me)
	return me, args.Error(1)
}

func (m *mockService) ChangePassword(ctx context.Context, identityID int64, req *auth.ChangePasswordRequest) error {
	return m.Called(ctx, identityID, req).Error(0)
}

func newRouter(svc Service) *gin.Engine {
	h := NewAuthHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	authed := r.Group("/", func(c *gin.Context) {
		middleware.SetCurrentUser(c, middleware.CurrentUser{IdentityID: 7, JTI: "jti-7", Role: auth.RoleCustomer})
		c.Next()
	})
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/me", h.GetMe)
	authed.PUT("/me", h.UpdateProfile)
	authed.PUT("/me/settings", h.UpdateSettings)
	authed.POST("/me/password", h.ChangePassword)
	return r
}

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

func TestRegister_Created(t *testing.T) {
	svc := new(mockService)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(r *auth.RegisterRequest) bool {
		return r.Phone == "03001234567" && r.UserAgent == ""
	})).Return(&auth.LoginResponse{AccessToken: "tok", User: auth.Me{IdentityID: 1}}, nil)

	w, body := do(t, newRouter(svc), http.MethodPost, "/auth/register", gin.H{
		"full_name": "Ali Khan",
		"phone":     "03001234567",
		"password":  "Passw0rd!",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok", body["data"].(map[string]any)["access_token"])
	svc.AssertExpectations(t)
}

func TestRegister_FieldErrors(t *testing.T) {
	svc := new(mockService)
	phone := validation.MsgPhoneTaken
	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, validation.NewFormError(validation.RegisterFormErrors{Phone: &phone}))

	w, body := do(t, newRouter(svc), http.MethodPost, "/auth/register", gin.H{"phone": "03001234567"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := body["data"].(map[string]any)["errors"].(map[string]any)
	assert.Equal(t, validation.MsgPhoneTaken, errs["phone"])
}

func TestLogin_StatusMapping(t *testing.T) {
	cases := map[error]int{
		xerrors.ErrInvalidCreds:    http.StatusUnauthorized,
		xerrors.ErrRateLimited:     http.StatusTooManyRequests,
		xerrors.ErrAccountInactive: http.StatusForbidden,
	}
	for err, status := range cases {
		t.Run(err.Error(), func(t *testing.T) {
			svc := new(mockService)
			svc.On("Login", mock.Anything, mock.Anything).Return(nil, err)

			w, body := do(t, newRouter(svc), http.MethodPost, "/auth/login", gin.H{
				"identifier": "0300 1234567",
				"password":   "x",
			})
			assert.Equal(t, status, w.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestLogout_UsesCurrentSession(t *testing.T) {
	svc := new(mockService)
	svc.On("Logout", mock.Anything, int64(7), "jti-7").Return(nil)

	w, _ := do(t, newRouter(svc), http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetMe(t *testing.T) {
	svc := new(mockService)
	svc.On("GetMe", mock.Anything, int64(7)).Return(&auth.Me{IdentityID: 7, FullName: "Ali"}, nil)

	w, body := do(t, newRouter(svc), http.MethodGet, "/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ali", body["data"].(map[string]any)["full_name"])
}

func TestUpdateProfile_BindingRejectsBadCNIC(t *testing.T) {
	svc := new(mockService)

	w, body := do(t, newRouter(svc), http.MethodPut, "/me", gin.H{"cnic": "12"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := body["data"].(map[string]any)["errors"].(map[string]any)
	assert.Equal(t, validation.MsgCNICInvalid, errs["cnic"])
	svc.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings(t *testing.T) {
	svc := new(mockService)
	svc.On("UpdateSettings", mock.Anything, int64(7), map[string]interface{}{"lang": "ur"}).
		Return(&auth.Me{IdentityID: 7, Settings: map[string]interface{}{"lang": "ur"}}, nil)

	w, _ := do(t, newRouter(svc), http.MethodPut, "/me/settings", gin.H{"settings": gin.H{"lang": "ur"}})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	t.Run("weak new password is a field error", func(t *testing.T) {
		svc := new(mockService)
		w, body := do(t, newRouter(svc), http.MethodPost, "/me/password", gin.H{
			"current_password": "Passw0rd!",
			"new_password":     "short",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		errs := body["data"].(map[string]any)["errors"].(map[string]any)
		assert.Contains(t, errs, "new_password")
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := new(mockService)
		svc.On("ChangePassword", mock.Anything, int64(7), mock.Anything).Return(xerrors.ErrInvalidCreds)

		w, _ := do(t, newRouter(svc), http.MethodPost, "/me/password", gin.H{
			"current_password": "Wrong0ne!",
			"new_password":     "N3wPassw0rd!",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
