// internal/handlers/payment.go
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

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/charges
func (h *PaymentHandler) CreateCharge(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req struct {
		RequestID uuid.UUID `json:"request_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	charge, err := h.paymentService.CreateCharge(userID, req.RequestID)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, "")
			return
		}
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPaymentCreated),
		"charge":  charge,
	})
}

// GET /payments/charges/:id
func (h *PaymentHandler) GetCharge(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid charge ID", nil)
		return
	}

	charge, err := h.paymentService.GetCharge(id, userID, h.isAdmin(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, "")
			return
		}
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"charge": charge,
	})
}

// GET /payments/charges
func (h *PaymentHandler) GetMyCharges(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	charges, total, err := h.paymentService.ListMine(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(charges, total, params)
	utils.PaginatedResponse(c, result)
}

func (h *PaymentHandler) callerID(c *gin.Context) (uuid.UUID, bool) {
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

func (h *PaymentHandler) isAdmin(c *gin.Context) bool {
	userType, exists := utils.GetUserTypeFromContext(c)
	return exists && models.UserType(userType).IsAdmin()
}
