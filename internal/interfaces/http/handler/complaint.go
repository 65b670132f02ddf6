package handler

import (
	"errors"
	"net/http"

	"github.com/aquaportal/backend/internal/application/support"
	supportdomain "github.com/aquaportal/backend/internal/domain/support"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// attachmentField is the multipart form field holding the upload
const attachmentField = "file"

// ComplaintHandler handles complaint requests
type ComplaintHandler struct {
	BaseHandler
	complaintService *support.ComplaintService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaintService *support.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// FileComplaintRequest is the body of a new complaint. Priority defaults to
// medium and is checked by the domain.
type FileComplaintRequest struct {
	Subject     string `json:"subject" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Priority    string `json:"priority"`
}

// RespondRequest is an admin's reply to a complaint
type RespondRequest struct {
	Status   string `json:"status" binding:"required"`
	Response string `json:"admin_response" binding:"omitempty,max=5000"`
}

// ListComplaintsRequest holds complaint listing filters
type ListComplaintsRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,complaint_status"`
}

// FileComplaint godoc
// @Summary      File a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body FileComplaintRequest true "Complaint"
// @Success      201 {object} dto.Response{data=support.ComplaintResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/complaints [post]
func (h *ComplaintHandler) FileComplaint(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req FileComplaintRequest
	if !h.bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.FileComplaint(c.Request.Context(), principal, support.FileComplaintInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    supportdomain.ComplaintPriority(req.Priority),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, complaint)
}

// ListComplaints godoc
// @Summary      List complaints
// @Description  Customers see their own complaints; admins see all
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "open, in_progress, resolved or closed"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]support.ComplaintResponse}
// @Router       /api/v1/complaints [get]
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req ListComplaintsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	filter := support.ListComplaintsFilter{ListOptions: req.ListOptions()}
	if req.Status != "" {
		status := supportdomain.ComplaintStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.complaintService.ListComplaints(c.Request.Context(), principal, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, *result)
}

// RespondToComplaint godoc
// @Summary      Respond to a complaint
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Complaint ID"
// @Param        request body RespondRequest true "Status and response"
// @Success      200 {object} dto.Response{data=support.ComplaintResponse}
// @Router       /api/v1/admin/complaints/{id} [put]
func (h *ComplaintHandler) RespondToComplaint(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if !h.bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.RespondToComplaint(c.Request.Context(), principal, id, support.RespondInput{
		Status:   supportdomain.ComplaintStatus(req.Status),
		Response: req.Response,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, complaint)
}

// CountPending godoc
// @Summary      Count open complaints
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=support.PendingCountResult}
// @Router       /api/v1/admin/complaints/pending-count [get]
func (h *ComplaintHandler) CountPending(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	result, err := h.complaintService.CountPendingComplaints(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AttachFile godoc
// @Summary      Attach a file to a complaint
// @Description  Accepts one image or PDF in the "file" form field
// @Tags         complaints
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Complaint ID"
// @Param        file formData file   true "Image or PDF"
// @Success      200 {object} dto.Response{data=support.ComplaintResponse}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/complaints/{id}/attachment [post]
func (h *ComplaintHandler) AttachFile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(attachmentField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Attachment exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Missing \""+attachmentField+"\" upload")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	complaint, err := h.complaintService.AttachFile(c.Request.Context(), principal, id, support.AttachmentInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, complaint)
}

// AttachmentURL godoc
// @Summary      Get a download link for a complaint's attachment
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Complaint ID"
// @Success      200 {object} dto.Response{data=support.AttachmentURLResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/complaints/{id}/attachment [get]
func (h *ComplaintHandler) AttachmentURL(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.complaintService.AttachmentURL(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
