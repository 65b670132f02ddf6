package handler

import (
	"github.com/aquaportal/backend/internal/application/identity"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's profile and the admin customer directory
type ProfileHandler struct {
	BaseHandler
	profileService *identity.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *identity.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateMyProfileRequest holds the contact fields a customer may change
type UpdateMyProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
}

// AdminUpdateProfileRequest holds every field an admin may change.
// An empty meter_number clears the meter.
type AdminUpdateProfileRequest struct {
	FullName    *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	MeterNumber *string `json:"meter_number" binding:"omitempty,max=50"`
	IsAdmin     *bool   `json:"is_admin"`
}

// GetMyProfile godoc
// @Summary      Get the caller's profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Router       /api/v1/profile [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetMyProfile(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateMyProfile godoc
// @Summary      Update the caller's contact details
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateMyProfileRequest true "Contact fields"
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Router       /api/v1/profile [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req UpdateMyProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateMyProfile(c.Request.Context(), principal, identity.UpdateMyProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ListCustomers godoc
// @Summary      List customer profiles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]identity.ProfileResponse}
// @Router       /api/v1/admin/customers [get]
func (h *ProfileHandler) ListCustomers(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.profileService.ListCustomers(c.Request.Context(), principal, req.ListOptions())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, *result)
}

// AdminUpdateProfile godoc
// @Summary      Update a customer's profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                    true "Profile ID"
// @Param        request body AdminUpdateProfileRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/admin/customers/{id} [put]
func (h *ProfileHandler) AdminUpdateProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req AdminUpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.AdminUpdateProfile(c.Request.Context(), principal, id, identity.AdminUpdateProfileInput{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Address:     req.Address,
		MeterNumber: req.MeterNumber,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
