package support

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/google/uuid"
)

// FileComplaintInput holds a new complaint from a customer
type FileComplaintInput struct {
	Subject     string
	Description string
	// Priority defaults to medium when empty
	Priority support.ComplaintPriority
}

// RespondInput holds an admin's status change and response
type RespondInput struct {
	Status   support.ComplaintStatus
	Response string
}

// ListComplaintsFilter narrows a complaint listing
type ListComplaintsFilter struct {
	Status *support.ComplaintStatus
	shared.ListOptions
}

// AttachmentInput describes an uploaded file
type AttachmentInput struct {
	Filename    string
	ContentType string
	Size        int64
}

// AttachmentURLResult is a short-lived download link
type AttachmentURLResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingCountResult is the number of complaints awaiting a first response
type PendingCountResult struct {
	Count int64 `json:"count"`
}

// ComplaintResponse is the API view of a complaint
type ComplaintResponse struct {
	ID            uuid.UUID                 `json:"id"`
	CustomerID    uuid.UUID                 `json:"customer_id"`
	Subject       string                    `json:"subject"`
	Description   string                    `json:"description"`
	Status        support.ComplaintStatus   `json:"status"`
	Priority      support.ComplaintPriority `json:"priority"`
	AdminResponse *string                   `json:"admin_response,omitempty"`
	HasAttachment bool                      `json:"has_attachment"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// ToComplaintResponse converts a domain complaint
func ToComplaintResponse(c *support.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		Subject:       c.Subject,
		Description:   c.Description,
		Status:        c.Status,
		Priority:      c.Priority,
		AdminResponse: c.AdminResponse,
		HasAttachment: c.AttachmentKey != nil,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ComplaintListResult is a page of complaints
type ComplaintListResult = shared.Paginated[ComplaintResponse]
