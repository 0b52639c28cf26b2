// internal/pkg/response/errors.go
package response

import (
	"errors"
	"net/http"

	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
)

const msgValidationFailed = "validation failed"

var statusBySentinel = []struct {
	err    error
	status int
}{
	{xerrors.ErrNotFound, http.StatusNotFound},
	{xerrors.ErrInvalidCreds, http.StatusUnauthorized},
	{xerrors.ErrNotAuthenticated, http.StatusUnauthorized},
	{xerrors.ErrSessionExpired, http.StatusUnauthorized},
	{xerrors.ErrUnauthorized, http.StatusUnauthorized},
	{xerrors.ErrAccountInactive, http.StatusForbidden},
	{xerrors.ErrForbidden, http.StatusForbidden},
	{xerrors.ErrRateLimited, http.StatusTooManyRequests},
	{xerrors.ErrDuplicateEntry, http.StatusConflict},
	{xerrors.ErrConflict, http.StatusConflict},
	{xerrors.ErrRequestUnavailable, http.StatusConflict},
	{xerrors.ErrInvalidInput, http.StatusBadRequest},
	{xerrors.ErrBadRequest, http.StatusBadRequest},
}

// HandleError writes err with the status its kind implies. Form and binding
// errors become per-field messages; unknown errors are a 500 with message.
func HandleError(c *gin.Context, message string, err error) {
	var fe *validation.FormError
	if errors.As(err, &fe) {
		FieldErrors(c, msgValidationFailed, fe.Fields)
		return
	}
	if fields := validation.BindingMessages(err); fields != nil {
		FieldErrors(c, msgValidationFailed, fields)
		return
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			Error(c, s.status, message, s.err)
			return
		}
	}
	Error(c, http.StatusInternalServerError, message, err)
}

// BindError reports a request body that failed to bind.
func BindError(c *gin.Context, err error) {
	if fields := validation.BindingMessages(err); fields != nil {
		FieldErrors(c, msgValidationFailed, fields)
		return
	}
	ValidationError(c, "invalid request", err)
}
