package request

// CreateRequest is the customer's new-request form.
type CreateRequest struct {
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

type RejectBody struct {
	Reason string `json:"reason"`
}

type CancelBody struct {
	Reason string `json:"reason"`
}
