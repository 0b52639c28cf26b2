// internal/domain/request/entity.go
package request

import (
	"time"

	"ustaad-service/internal/domain/auth"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ServiceTypes are the trades a customer can request.
var ServiceTypes = []string{
	"plumber",
	"electrician",
	"carpenter",
	"painter",
	"ac_technician",
	"cleaner",
	"mechanic",
}

// ServiceRequest is a customer's request for a tradesperson. Records are never
// deleted; every change is a status transition.
type ServiceRequest struct {
	ID            string `json:"id"`
	CustomerID    int64  `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	ServiceType string `json:"service_type"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address"`

	Status        Status `json:"status"`
	ProviderID    *int64 `json:"provider_id,omitempty"`
	ProviderName  string `json:"provider_name,omitempty"`
	ProviderPhone string `json:"provider_phone,omitempty"`

	RejectReason string `json:"reject_reason,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r *ServiceRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Cancellable reports whether the customer may still cancel.
func (r *ServiceRequest) Cancellable() bool {
	return r.Status == StatusPending || r.Status == StatusAccepted
}

// Participants are the identities that receive updates about r.
func (r *ServiceRequest) Participants() []int64 {
	ids := []int64{r.CustomerID}
	if r.ProviderID != nil && *r.ProviderID != r.CustomerID {
		ids = append(ids, *r.ProviderID)
	}
	return ids
}

// VisibleTo reports whether identityID acting as role may read r. Providers
// see pending requests and the ones they acted on.
func (r *ServiceRequest) VisibleTo(identityID int64, role string) bool {
	if r.CustomerID == identityID {
		return true
	}
	if role != auth.RoleProvider {
		return false
	}
	return r.IsPending() || (r.ProviderID != nil && *r.ProviderID == identityID)
}

// ProviderInfo identifies the provider acting on a request.
type ProviderInfo struct {
	ID    int64
	Name  string
	Phone string
}

// CustomerInfo identifies the customer creating a request.
type CustomerInfo struct {
	ID    int64
	Name  string
	Phone string
}

// Mutator changes r in place or returns an error to abort without writing.
type Mutator func(r *ServiceRequest) error
