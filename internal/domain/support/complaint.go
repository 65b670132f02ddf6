package support

import (
	"fmt"
	"strings"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplaintStatus is the lifecycle state of a complaint
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

// IsValid checks if the status is a valid ComplaintStatus
func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

func (s ComplaintStatus) String() string {
	return string(s)
}

// ComplaintPriority ranks complaints for the support queue
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

// DefaultPriority applies when the customer does not choose one
const DefaultPriority = PriorityMedium

// IsValid checks if the priority is a valid ComplaintPriority
func (p ComplaintPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p ComplaintPriority) String() string {
	return string(p)
}

// Complaint is a customer support ticket
type Complaint struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID
	Subject       string
	Description   string
	Status        ComplaintStatus
	Priority      ComplaintPriority
	AdminResponse *string
	AttachmentKey *string
}

// NewComplaint files an open complaint. An empty priority becomes medium.
func NewComplaint(customerID uuid.UUID, subject, description string, priority ComplaintPriority) (*Complaint, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 5000 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}
	if priority == "" {
		priority = DefaultPriority
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidPriority,
			fmt.Sprintf("Priority must be one of low, medium, high, urgent; got %q", priority))
	}

	c := &Complaint{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Subject:           subject,
		Description:       description,
		Status:            ComplaintStatusOpen,
		Priority:          priority,
	}
	c.AddDomainEvent(NewComplaintFiledEvent(c))
	return c, nil
}

// Respond sets status and staff response together. Any of the four states
// may follow any other; only the value itself is checked.
func (c *Complaint) Respond(status ComplaintStatus, response string) error {
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Status must be one of open, in_progress, resolved, closed; got %q", status))
	}
	response = strings.TrimSpace(response)
	if len(response) > 5000 {
		return shared.NewDomainError("INVALID_RESPONSE", "Response cannot exceed 5000 characters")
	}

	c.Status = status
	// a status-only update keeps the earlier response
	if response != "" {
		c.AdminResponse = &response
	}
	c.IncrementVersion()
	c.AddDomainEvent(NewComplaintRespondedEvent(c))
	return nil
}

// Attach records the object storage key of an uploaded file
func (c *Complaint) Attach(key string) {
	c.AttachmentKey = &key
	c.IncrementVersion()
}

// ResponseOrEmpty returns the admin response or ""
func (c *Complaint) ResponseOrEmpty() string {
	if c.AdminResponse == nil {
		return ""
	}
	return *c.AdminResponse
}
