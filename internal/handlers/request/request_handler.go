// internal/handlers/request/request_handler.go
package request

import (
	"context"
	"net/http"
	"strconv"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/domain/request"
	"ustaad-service/internal/middleware"
	"ustaad-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the request-matching contract.
type Service interface {
	CreateRequest(ctx context.Context, customer *request.CustomerInfo, req *request.CreateRequest) (*request.ServiceRequest, error)
	CancelRequest(ctx context.Context, id string, customerID int64, reason string) request.Result
	AcceptRequest(ctx context.Context, id string, provider *request.ProviderInfo) request.Result
	RejectRequest(ctx context.Context, id string, provider *request.ProviderInfo, reason string) request.Result
	ListCustomerRequests(ctx context.Context, customerID int64, limit int) ([]*request.ServiceRequest, error)
	ListOpenRequests(ctx context.Context, serviceType string, limit int) ([]*request.ServiceRequest, error)
	GetRequest(ctx context.Context, id string, identityID int64, role string) (*request.ServiceRequest, error)
}

// ProfileReader supplies the display name and phone stamped on requests.
type ProfileReader interface {
	GetMe(ctx context.Context, identityID int64) (*auth.Me, error)
}

type RequestHandler struct {
	service  Service
	profiles ProfileReader
	logger   *zap.Logger
}

func NewRequestHandler(service Service, profiles ProfileReader, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		service:  service,
		profiles: profiles,
		logger:   logger,
	}
}

// ========== Customer ==========

func (h *RequestHandler) Create(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	var req request.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	me, err := h.profiles.GetMe(c.Request.Context(), user.IdentityID)
	if err != nil {
		response.HandleError(c, "failed to load profile", err)
		return
	}

	created, err := h.service.CreateRequest(c.Request.Context(), &request.CustomerInfo{
		ID:    me.IdentityID,
		Name:  me.FullName,
		Phone: me.Phone,
	}, &req)
	if err != nil {
		response.HandleError(c, "failed to create request", err)
		return
	}

	response.Success(c, http.StatusCreated, "request created", created)
}

func (h *RequestHandler) Mine(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	list, err := h.service.ListCustomerRequests(c.Request.Context(), user.IdentityID, queryLimit(c))
	if err != nil {
		response.HandleError(c, "failed to list requests", err)
		return
	}

	response.Success(c, http.StatusOK, "requests retrieved", list)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	var body request.CancelBody
	if !bindOptional(c, &body) {
		return
	}

	h.writeResult(c, "request cancelled",
		h.service.CancelRequest(c.Request.Context(), c.Param("id"), user.IdentityID, body.Reason))
}

// ========== Provider ==========

// Open lists pending requests, optionally for one service_type.
func (h *RequestHandler) Open(c *gin.Context) {
	list, err := h.service.ListOpenRequests(c.Request.Context(), c.Query("service_type"), queryLimit(c))
	if err != nil {
		response.HandleError(c, "failed to list requests", err)
		return
	}

	response.Success(c, http.StatusOK, "requests retrieved", list)
}

func (h *RequestHandler) Accept(c *gin.Context) {
	provider, ok := h.providerInfo(c)
	if !ok {
		return
	}

	result := h.service.AcceptRequest(c.Request.Context(), c.Param("id"), provider)
	if !result.Success {
		h.logger.Info("accept refused",
			zap.String("request_id", c.Param("id")),
			zap.Int64("provider_id", provider.ID),
			zap.String("reason", result.Error))
	}
	h.writeResult(c, "request accepted", result)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	var body request.RejectBody
	if !bindOptional(c, &body) {
		return
	}

	provider, ok := h.providerInfo(c)
	if !ok {
		return
	}

	h.writeResult(c, "request rejected",
		h.service.RejectRequest(c.Request.Context(), c.Param("id"), provider, body.Reason))
}

// ========== Shared ==========

func (h *RequestHandler) Get(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	r, err := h.service.GetRequest(c.Request.Context(), c.Param("id"), user.IdentityID, user.Role)
	if err != nil {
		response.HandleError(c, "failed to get request", err)
		return
	}

	response.Success(c, http.StatusOK, "request retrieved", r)
}

func (h *RequestHandler) providerInfo(c *gin.Context) (*request.ProviderInfo, bool) {
	user := middleware.MustGetCurrentUser(c)

	me, err := h.profiles.GetMe(c.Request.Context(), user.IdentityID)
	if err != nil {
		response.HandleError(c, "failed to load profile", err)
		return nil, false
	}
	return &request.ProviderInfo{ID: me.IdentityID, Name: me.FullName, Phone: me.Phone}, true
}

func (h *RequestHandler) writeResult(c *gin.Context, message string, result request.Result) {
	if result.Success {
		response.Success(c, http.StatusOK, message, result)
		return
	}
	response.Error(c, resultStatus(result.Error), result.Error, nil, result)
}

func resultStatus(msg string) int {
	switch msg {
	case request.MsgUnavailable:
		return http.StatusConflict
	case request.MsgNotAuthenticated:
		return http.StatusUnauthorized
	case request.MsgNotOwner:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// bindOptional accepts an empty body.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
