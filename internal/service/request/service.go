// internal/service/request/service.go
package request

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"strings"
	"time"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/domain/request"
	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/validation"
	"ustaad-service/internal/platform/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Store persists requests. Transition must apply the mutator atomically.
type Store interface {
	Create(ctx context.Context, r *request.ServiceRequest) error
	Get(ctx context.Context, id string) (*request.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]*request.ServiceRequest, error)
	ListPending(ctx context.Context, serviceType string, limit int) ([]*request.ServiceRequest, error)
	Transition(ctx context.Context, id string, mutate request.Mutator) (*request.ServiceRequest, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Notifier pushes request changes to connected clients.
type Notifier interface {
	NotifyUsers(identityIDs []int64, event request.EventType, r *request.ServiceRequest)
	NotifyRole(role string, event request.EventType, r *request.ServiceRequest)
}

type RequestService struct {
	store     Store
	publisher Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
	topic     string
	logger    *zap.Logger
	now       func() time.Time
}

func NewRequestService(store Store, publisher Publisher, notifier Notifier, m *metrics.Metrics, topic string, logger *zap.Logger) *RequestService {
	return &RequestService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		topic:     topic,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ========== Customer Operations ==========

// CreateRequest validates req and stores a new pending request for customer.
// Validation failures come back as *validation.FormError.
func (s *RequestService) CreateRequest(ctx context.Context, customer *request.CustomerInfo, req *request.CreateRequest) (*request.ServiceRequest, error) {
	if customer == nil || customer.ID == 0 {
		return nil, xerrors.ErrNotAuthenticated
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	if err := validation.NewFormError(validation.ValidateRequestForm(validation.RequestForm{
		ServiceType: serviceType,
		Address:     req.Address,
	}, request.ServiceTypes)); err != nil {
		return nil, err
	}

	now := s.now()
	r := &request.ServiceRequest{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		ServiceType:   serviceType,
		Description:   strings.TrimSpace(req.Description),
		Address:       strings.TrimSpace(req.Address),
		Status:        request.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	s.metrics.IncrementRequestsCreated()
	s.logger.Info("service request created",
		zap.String("request_id", r.ID),
		zap.Int64("customer_id", r.CustomerID),
		zap.String("service_type", r.ServiceType))

	s.emit(ctx, request.EventCreated, r)
	return r, nil
}

// CancelRequest lets the owning customer withdraw a pending or accepted request.
func (s *RequestService) CancelRequest(ctx context.Context, id string, customerID int64, reason string) request.Result {
	if customerID == 0 {
		return request.Failed(request.MsgNotAuthenticated)
	}

	now := s.now()
	updated, err := s.store.Transition(ctx, id, func(r *request.ServiceRequest) error {
		if r.CustomerID != customerID {
			return xerrors.ErrForbidden
		}
		if !r.Cancellable() {
			return xerrors.ErrRequestUnavailable
		}
		r.Status = request.StatusCancelled
		r.CancelReason = strings.TrimSpace(reason)
		r.CancelledAt = &now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrForbidden):
			return request.Failed(request.MsgNotOwner)
		case isUnavailable(err):
			return request.Failed(request.MsgUnavailable)
		}
		s.logger.Error("cancel request failed", zap.String("request_id", id), zap.Error(err))
		return request.Failed(request.MsgCancelFailed)
	}

	s.metrics.IncrementRequestsCancelled()
	s.logger.Info("service request cancelled",
		zap.String("request_id", id),
		zap.Int64("customer_id", customerID))

	s.emit(ctx, request.EventCancelled, updated)
	return request.Succeeded(updated)
}

func (s *RequestService) ListCustomerRequests(ctx context.Context, customerID int64, limit int) ([]*request.ServiceRequest, error) {
	out, err := s.store.ListByCustomer(ctx, customerID, normalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customer requests")
	}
	return out, nil
}

// ========== Provider Operations ==========

// AcceptRequest assigns a pending request to provider. Among concurrent
// callers for the same request at most one succeeds; the rest receive
// MsgUnavailable.
func (s *RequestService) AcceptRequest(ctx context.Context, id string, provider *request.ProviderInfo) request.Result {
	if provider == nil || provider.ID == 0 {
		return request.Failed(request.MsgNotAuthenticated)
	}
	s.metrics.IncrementAcceptAttempts()

	now := s.now()
	updated, err := s.store.Transition(ctx, id, func(r *request.ServiceRequest) error {
		if !r.IsPending() {
			return xerrors.ErrRequestUnavailable
		}
		pid := provider.ID
		r.Status = request.StatusAccepted
		r.ProviderID = &pid
		r.ProviderName = provider.Name
		r.ProviderPhone = provider.Phone
		r.AcceptedAt = &now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		if isUnavailable(err) {
			s.metrics.IncrementAcceptConflicts()
			s.logger.Debug("accept lost",
				zap.String("request_id", id),
				zap.Int64("provider_id", provider.ID))
			return request.Failed(request.MsgUnavailable)
		}
		s.logger.Error("accept request failed",
			zap.String("request_id", id),
			zap.Int64("provider_id", provider.ID),
			zap.Error(err))
		return request.Failed(request.MsgAcceptFailed)
	}

	s.metrics.IncrementAcceptSuccesses()
	s.logger.Info("service request accepted",
		zap.String("request_id", id),
		zap.Int64("provider_id", provider.ID))

	s.emit(ctx, request.EventAccepted, updated)
	return request.Succeeded(updated)
}

// RejectRequest records that provider declined a pending request.
func (s *RequestService) RejectRequest(ctx context.Context, id string, provider *request.ProviderInfo, reason string) request.Result {
	if provider == nil || provider.ID == 0 {
		return request.Failed(request.MsgNotAuthenticated)
	}

	now := s.now()
	updated, err := s.store.Transition(ctx, id, func(r *request.ServiceRequest) error {
		if !r.IsPending() {
			return xerrors.ErrRequestUnavailable
		}
		pid := provider.ID
		r.Status = request.StatusRejected
		r.ProviderID = &pid
		r.ProviderName = provider.Name
		r.ProviderPhone = provider.Phone
		r.RejectReason = strings.TrimSpace(reason)
		r.RejectedAt = &now
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		if isUnavailable(err) {
			return request.Failed(request.MsgUnavailable)
		}
		s.logger.Error("reject request failed",
			zap.String("request_id", id),
			zap.Int64("provider_id", provider.ID),
			zap.Error(err))
		return request.Failed(request.MsgRejectFailed)
	}

	s.metrics.IncrementRequestsRejected()
	s.logger.Info("service request rejected",
		zap.String("request_id", id),
		zap.Int64("provider_id", provider.ID))

	s.emit(ctx, request.EventRejected, updated)
	return request.Succeeded(updated)
}

// ListOpenRequests returns pending requests, oldest first. An empty
// serviceType means every type.
func (s *RequestService) ListOpenRequests(ctx context.Context, serviceType string, limit int) ([]*request.ServiceRequest, error) {
	out, err := s.store.ListPending(ctx, strings.TrimSpace(serviceType), normalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list open requests")
	}
	return out, nil
}

// ========== Shared ==========

// GetRequest returns the request if the caller may see it. Requests the
// caller may not see are reported as not found.
func (s *RequestService) GetRequest(ctx context.Context, id string, identityID int64, role string) (*request.ServiceRequest, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.VisibleTo(identityID, role) {
		return nil, xerrors.ErrNotFound
	}
	return r, nil
}

// emit runs after the write has committed. Failures here never undo it.
func (s *RequestService) emit(ctx context.Context, t request.EventType, r *request.ServiceRequest) {
	if s.notifier != nil {
		s.notifier.NotifyUsers(r.Participants(), t, r)
		// Remaining providers add or drop r from their open lists.
		s.notifier.NotifyRole(auth.RoleProvider, t, r)
	}

	if s.publisher == nil || s.topic == "" {
		return
	}
	payload, err := json.Marshal(request.NewEvent(t, r, r.UpdatedAt))
	if err != nil {
		s.logger.Error("marshal request event", zap.String("request_id", r.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, []byte(r.ID), payload); err != nil {
		s.logger.Warn("publish request event failed",
			zap.String("request_id", r.ID),
			zap.String("event", string(t)),
			zap.Error(err))
	}
}

func isUnavailable(err error) bool {
	return errors.Is(err, xerrors.ErrRequestUnavailable) || errors.Is(err, xerrors.ErrNotFound)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultListLimit
	}
	return limit
}
