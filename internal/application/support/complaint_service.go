// Package support files complaints, records staff responses and stores
// complaint attachments.
package support

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/storage"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAttachmentBytes caps an uploaded attachment at 5 MiB
const DefaultMaxAttachmentBytes int64 = 5 << 20

// AttachmentStorage stores attachment objects and hands out download links
type AttachmentStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

var (
	errAttachmentTooLarge = shared.NewDomainError("ATTACHMENT_TOO_LARGE", "Attachment exceeds the upload limit")
	errAttachmentType     = shared.NewDomainError("INVALID_ATTACHMENT_TYPE", "Attachments must be an image or a PDF")
	errNoAttachment       = shared.NewDomainError(shared.CodeNotFound, "Complaint has no attachment")
	errStorageDisabled    = shared.NewDomainError(shared.CodeInvalidState, "Attachments are not enabled")
)

// ComplaintService is the application service for complaints
type ComplaintService struct {
	complaints support.ComplaintRepository
	storage    AttachmentStorage
	policy     *access.Policy
	publisher  shared.EventPublisher
	maxUpload  int64
}

// NewComplaintService creates a new complaint service. A non-positive
// maxUpload falls back to DefaultMaxAttachmentBytes.
func NewComplaintService(
	complaints support.ComplaintRepository,
	attachments AttachmentStorage,
	policy *access.Policy,
	publisher shared.EventPublisher,
	maxUpload int64,
) *ComplaintService {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxAttachmentBytes
	}
	if attachments == nil {
		attachments = storage.DisabledStorage{}
	}
	return &ComplaintService{
		complaints: complaints,
		storage:    attachments,
		policy:     policy,
		publisher:  publisher,
		maxUpload:  maxUpload,
	}
}

// MaxUploadBytes returns the attachment size limit
func (s *ComplaintService) MaxUploadBytes() int64 {
	return s.maxUpload
}

// FileComplaint opens a complaint for the calling customer
func (s *ComplaintService) FileComplaint(ctx context.Context, principal identity.Principal, input FileComplaintInput) (*ComplaintResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "support", "file_complaint")
	defer span.End()

	if err := s.policy.Authorize(principal, access.ActionComplaintFile); err != nil {
		return nil, err
	}

	complaint, err := support.NewComplaint(principal.ProfileID, input.Subject, input.Description, input.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, complaint)
	telemetry.SetAttributes(span, telemetry.SpanAttrComplaintID, complaint.ID.String())
	logger.L(ctx).Info("Complaint filed",
		zap.String("complaint_id", complaint.ID.String()),
		zap.String("priority", complaint.Priority.String()),
	)

	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// ListComplaints returns the complaints visible to the caller, newest first
func (s *ComplaintService) ListComplaints(ctx context.Context, principal identity.Principal, filter ListComplaintsFilter) (*ComplaintListResult, error) {
	if err := s.policy.Authorize(principal, access.ActionComplaintRead); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidStatus, "Unknown complaint status")
	}

	opts := filter.ListOptions.Normalize()
	complaints, total, err := s.complaints.List(ctx, support.ComplaintFilter{
		CustomerID: s.policy.ScopeFor(principal).CustomerFilter(),
		Status:     filter.Status,
	}, opts)
	if err != nil {
		return nil, err
	}

	items := make([]ComplaintResponse, 0, len(complaints))
	for _, c := range complaints {
		items = append(items, ToComplaintResponse(c))
	}
	result := shared.NewPaginated(items, total, opts)
	return &result, nil
}

// RespondToComplaint sets status and response together. Any status may
// follow any other.
func (s *ComplaintService) RespondToComplaint(ctx context.Context, principal identity.Principal, complaintID uuid.UUID, input RespondInput) (*ComplaintResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "support", "respond")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrComplaintID, complaintID.String())

	if err := s.policy.Authorize(principal, access.ActionComplaintRespond); err != nil {
		return nil, err
	}

	complaint, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := complaint.Respond(input.Status, input.Response); err != nil {
		return nil, err
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, complaint)
	logger.L(ctx).Info("Complaint responded",
		zap.String("complaint_id", complaint.ID.String()),
		zap.String("status", complaint.Status.String()),
	)

	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// CountPendingComplaints counts complaints still in the open state
func (s *ComplaintService) CountPendingComplaints(ctx context.Context, principal identity.Principal) (*PendingCountResult, error) {
	if err := s.policy.Authorize(principal, access.ActionComplaintCount); err != nil {
		return nil, err
	}
	open := support.ComplaintStatusOpen
	count, err := s.complaints.Count(ctx, support.ComplaintFilter{Status: &open})
	if err != nil {
		return nil, err
	}
	return &PendingCountResult{Count: count}, nil
}

// AttachFile uploads a file for the caller's own complaint and records its key
func (s *ComplaintService) AttachFile(ctx context.Context, principal identity.Principal, complaintID uuid.UUID, input AttachmentInput, body io.Reader) (*ComplaintResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "support", "attach_file")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrComplaintID, complaintID.String())

	if err := s.policy.Authorize(principal, access.ActionComplaintAttach); err != nil {
		return nil, err
	}
	contentType, err := s.checkAttachment(input)
	if err != nil {
		return nil, err
	}

	complaint, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckOwnership(principal, complaint.CustomerID); err != nil {
		return nil, err
	}

	key := attachmentKey(complaint.ID, input.Filename, contentType)
	if err := s.storage.Put(ctx, key, io.LimitReader(body, s.maxUpload), input.Size, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, storageError(err)
	}

	complaint.Attach(key)
	if err := s.complaints.Update(ctx, complaint); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("Attachment uploaded but not recorded",
			zap.String("complaint_id", complaint.ID.String()),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}

	logger.L(ctx).Info("Complaint attachment stored",
		zap.String("complaint_id", complaint.ID.String()),
		zap.String("key", key),
		zap.Int64("size", input.Size),
	)

	resp := ToComplaintResponse(complaint)
	return &resp, nil
}

// AttachmentURL returns a presigned download link for a complaint's attachment
func (s *ComplaintService) AttachmentURL(ctx context.Context, principal identity.Principal, complaintID uuid.UUID) (*AttachmentURLResult, error) {
	complaint, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwned(principal, access.ActionComplaintRead, complaint.CustomerID); err != nil {
		return nil, err
	}
	if complaint.AttachmentKey == nil {
		return nil, errNoAttachment
	}

	url, expires, err := s.storage.PresignGet(ctx, *complaint.AttachmentKey)
	if err != nil {
		return nil, storageError(err)
	}
	return &AttachmentURLResult{URL: url, ExpiresAt: expires}, nil
}

func (s *ComplaintService) checkAttachment(input AttachmentInput) (string, error) {
	if input.Size <= 0 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Attachment is empty")
	}
	if input.Size > s.maxUpload {
		return "", shared.NewDomainError(errAttachmentTooLarge.Code,
			fmt.Sprintf("Attachment exceeds the %d byte limit", s.maxUpload))
	}
	mediaType, _, err := mime.ParseMediaType(input.ContentType)
	if err != nil {
		return "", errAttachmentType
	}
	if !strings.HasPrefix(mediaType, "image/") && mediaType != "application/pdf" {
		return "", errAttachmentType
	}
	return mediaType, nil
}

// attachmentKey builds complaints/<id>/<uuid><ext>. The extension comes
// from the filename, or from the content type when the name has none.
func attachmentKey(complaintID uuid.UUID, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("complaints/%s/%s%s", complaintID, uuid.New(), ext)
}

func storageError(err error) error {
	if errors.Is(err, storage.ErrStorageDisabled) {
		return errStorageDisabled
	}
	return err
}
