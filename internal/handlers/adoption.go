// internal/handlers/adoption.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/i18n"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/services"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

type AdoptionHandler struct {
	adoptionService    *services.AdoptionService
	eligibilityService *services.EligibilityService
}

func NewAdoptionHandler(adoptionService *services.AdoptionService, eligibilityService *services.EligibilityService) *AdoptionHandler {
	return &AdoptionHandler{
		adoptionService:    adoptionService,
		eligibilityService: eligibilityService,
	}
}

// POST /adoptions
func (h *AdoptionHandler) CreateRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req services.CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	request, err := h.adoptionService.Create(userID, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdoptionRequested),
		"request": request,
	})
}

// GET /adoptions/verify/:dogId
func (h *AdoptionHandler) VerifyEligibility(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	dogID, err := uuid.Parse(c.Param("dogId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	decision, err := h.eligibilityService.CanRequest(userID, dogID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"eligible": decision.Eligible,
		"reason":   decision.Reason,
	})
}

// GET /adoptions
func (h *AdoptionHandler) GetMyRequests(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	requests, total, err := h.adoptionService.ListMine(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /adoptions/:id
func (h *AdoptionHandler) GetRequest(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid adoption request ID", nil)
		return
	}

	request, err := h.adoptionService.Get(id, userID, h.isAdmin(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, "")
			return
		}
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"request": request,
	})
}

// GET /admin/adoptions
func (h *AdoptionHandler) SearchRequests(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.AdoptionSearchParams{
		PaginationParams: params,
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			searchParams.UserID = &userID
		}
	}

	if dogIDStr := c.Query("dog_id"); dogIDStr != "" {
		if dogID, err := uuid.Parse(dogIDStr); err == nil {
			searchParams.DogID = &dogID
		}
	}

	if status := c.Query("status"); status != "" {
		requestStatus := models.RequestStatus(status)
		searchParams.Status = &requestStatus
	}

	requests, total, err := h.adoptionService.Search(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// PATCH /admin/adoptions/:id
func (h *AdoptionHandler) UpdateRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid adoption request ID", nil)
		return
	}

	var req services.UpdateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.adoptionService.Update(id, adminID, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdoptionUpdated),
		"request": request,
	})
}

// PUT /admin/adoptions/:id/approve
func (h *AdoptionHandler) ApproveRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid adoption request ID", nil)
		return
	}

	var req services.ApproveAdoptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	request, err := h.adoptionService.Approve(id, adminID, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdoptionApproved),
		"request": request,
	})
}

// PUT /admin/adoptions/:id/reject
func (h *AdoptionHandler) RejectRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid adoption request ID", nil)
		return
	}

	var req services.RejectAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.adoptionService.Reject(id, adminID, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdoptionRejected),
		"request": request,
	})
}

// DELETE /adoptions/:id
func (h *AdoptionHandler) CancelRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid adoption request ID", nil)
		return
	}

	if err := h.adoptionService.Cancel(id, userID, h.isAdmin(c)); err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, "")
			return
		}
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdoptionCancelled),
	})
}

func (h *AdoptionHandler) callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *AdoptionHandler) isAdmin(c *gin.Context) bool {
	userType, exists := utils.GetUserTypeFromContext(c)
	return exists && models.UserType(userType).IsAdmin()
}
