// internal/handlers/address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adotepet/adotepet-backend/internal/services"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

// GET /address/cep/:cep
func (h *AddressHandler) LookupCEP(c *gin.Context) {
	address, err := h.addressService.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address": address,
	})
}
