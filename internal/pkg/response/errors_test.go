package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_Sentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{xerrors.ErrInvalidCreds, http.StatusUnauthorized},
		{fmt.Errorf("verify: %w", xerrors.ErrUnauthorized), http.StatusUnauthorized},
		{xerrors.ErrSessionExpired, http.StatusUnauthorized},
		{xerrors.ErrNotAuthenticated, http.StatusUnauthorized},
		{xerrors.ErrRateLimited, http.StatusTooManyRequests},
		{xerrors.ErrAccountInactive, http.StatusForbidden},
		{xerrors.ErrForbidden, http.StatusForbidden},
		{xerrors.ErrNotFound, http.StatusNotFound},
		{xerrors.ErrDuplicateEntry, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleError(c, "request failed", tc.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "request failed", decode(t, w)["message"])
		})
	}
}

func TestHandleError_FormError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	fields := validation.ValidateLoginForm(validation.LoginForm{})
	HandleError(c, "login failed", validation.NewFormError(fields))

	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode(t, w)["data"].(map[string]any)["errors"].(map[string]any)
	assert.NotEmpty(t, errs)
}

func TestHandleError_BindingErrors(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, validation.RegisterBindings(v))

	type body struct {
		Phone string `json:"phone" binding:"required"`
	}
	err := v.Struct(body{})
	require.Error(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleError(c, "bad body", err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode(t, w)["data"].(map[string]any)["errors"].(map[string]any)
	assert.Equal(t, validation.MsgPhoneRequired, errs["phone"])
}

func TestBindError_MalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	BindError(c, errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
