// internal/handlers/validation/validation_handler.go
package validation

import (
	"net/http"
	"strings"

	"ustaad-service/internal/pkg/response"
	"ustaad-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
)

type checkRequest struct {
	Value string `json:"value"`
}

// CheckResult mirrors what the signup screens show while the user types.
type CheckResult struct {
	Formatted string  `json:"formatted"`
	Canonical string  `json:"canonical,omitempty"`
	Valid     bool    `json:"valid"`
	Error     *string `json:"error"`
}

type checker func(value string) CheckResult

var checkers = map[string]checker{
	"phone": func(v string) CheckResult {
		display := validation.FormatPhone(v)
		res := CheckResult{Formatted: display, Error: validation.GetPhoneError(display)}
		if res.Error == nil {
			res.Valid = true
			res.Canonical = validation.CleanPhone(display)
		}
		return res
	},
	"cnic": func(v string) CheckResult {
		formatted := validation.FormatCNIC(v)
		return result(formatted, validation.GetCNICError(formatted))
	},
	"email": func(v string) CheckResult {
		formatted := strings.ToLower(strings.TrimSpace(v))
		return result(formatted, validation.GetEmailError(formatted))
	},
	"password": func(v string) CheckResult {
		return result("", validation.GetPasswordError(v))
	},
	"address": func(v string) CheckResult {
		return result(strings.TrimSpace(v), validation.GetAddressError(v))
	},
}

func result(formatted string, errMsg *string) CheckResult {
	return CheckResult{Formatted: formatted, Valid: errMsg == nil, Error: errMsg}
}

type ValidationHandler struct{}

func NewValidationHandler() *ValidationHandler {
	return &ValidationHandler{}
}

// Check formats and validates a single field value.
func (h *ValidationHandler) Check(c *gin.Context) {
	check, ok := checkers[c.Param("field")]
	if !ok {
		response.NotFound(c, "unknown field")
		return
	}

	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "field checked", check(req.Value))
}
