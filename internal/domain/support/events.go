package support

import "github.com/aquaportal/backend/internal/domain/shared"

const AggregateTypeComplaint = "Complaint"

const (
	EventTypeComplaintFiled     = "ComplaintFiled"
	EventTypeComplaintResponded = "ComplaintResponded"
)

// ComplaintFiledEvent is raised when a customer files a complaint
type ComplaintFiledEvent struct {
	shared.BaseDomainEvent
	Subject  string            `json:"subject"`
	Priority ComplaintPriority `json:"priority"`
}

func NewComplaintFiledEvent(c *Complaint) *ComplaintFiledEvent {
	return &ComplaintFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeComplaintFiled, AggregateTypeComplaint, c.ID, c.CustomerID),
		Subject:         c.Subject,
		Priority:        c.Priority,
	}
}

// ComplaintRespondedEvent is raised when an admin updates a complaint
type ComplaintRespondedEvent struct {
	shared.BaseDomainEvent
	Status   ComplaintStatus `json:"status"`
	Response string          `json:"response,omitempty"`
}

func NewComplaintRespondedEvent(c *Complaint) *ComplaintRespondedEvent {
	return &ComplaintRespondedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeComplaintResponded, AggregateTypeComplaint, c.ID, c.CustomerID),
		Status:          c.Status,
		Response:        c.ResponseOrEmpty(),
	}
}
