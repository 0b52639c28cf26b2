package request

// Messages returned to clients in Result.Error.
const (
	MsgUnavailable      = "This request is no longer available"
	MsgAcceptFailed     = "Failed to accept request"
	MsgRejectFailed     = "Failed to reject request"
	MsgCancelFailed     = "Failed to cancel request"
	MsgNotAuthenticated = "User not authenticated"
	MsgNotOwner         = "You can only cancel your own requests"
)

// Result is the outcome of a match operation. Failures are data, not errors.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Request *ServiceRequest `json:"request,omitempty"`
}

func Succeeded(r *ServiceRequest) Result {
	return Result{Success: true, Request: r}
}

func Failed(msg string) Result {
	return Result{Success: false, Error: msg}
}
