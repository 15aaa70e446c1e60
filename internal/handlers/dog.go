// internal/handlers/dog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/i18n"
	"github.com/adotepet/adotepet-backend/internal/services"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

type DogHandler struct {
	dogService     *services.DogService
	storageService *services.StorageService
}

func NewDogHandler(dogService *services.DogService, storageService *services.StorageService) *DogHandler {
	return &DogHandler{
		dogService:     dogService,
		storageService: storageService,
	}
}

// GET /dogs
func (h *DogHandler) SearchDogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.DogSearchParams{
		PaginationParams: params,
	}

	if breedIDStr := c.Query("breed_id"); breedIDStr != "" {
		if breedID, err := uuid.Parse(breedIDStr); err == nil {
			searchParams.BreedID = &breedID
		}
	}

	if size := c.Query("size"); size != "" {
		searchParams.Size = &size
	}

	if c.Query("include_adopted") == "true" {
		searchParams.IncludeAdopted = true
	}

	dogs, total, err := h.dogService.Search(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(dogs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /dogs/:id
func (h *DogHandler) GetDog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	dog, err := h.dogService.Get(id)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dog": dog,
	})
}

// GET /dogs/breeds
func (h *DogHandler) ListBreeds(c *gin.Context) {
	breeds, err := h.dogService.ListBreeds()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"breeds": breeds,
	})
}

// POST /admin/dogs
func (h *DogHandler) CreateDog(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dog, err := h.dogService.Create(&req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDogCreated),
		"dog":     dog,
	})
}

// PATCH /admin/dogs/:id
func (h *DogHandler) UpdateDog(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	var req services.UpdateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dog, err := h.dogService.Update(id, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDogUpdated),
		"dog":     dog,
	})
}

// DELETE /admin/dogs/:id
func (h *DogHandler) DeleteDog(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	if err := h.dogService.Delete(id); err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDogDeleted),
	})
}

// POST /admin/dogs/:id/photo
func (h *DogHandler) UploadPhoto(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		utils.BadRequestResponse(c, "Photo file is required", err.Error())
		return
	}
	defer file.Close()

	upload, err := h.storageService.UploadFile(file, header, services.PhotoUploadOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	dog, err := h.dogService.Update(id, &services.UpdateDogRequest{PhotoURL: &upload.URL})
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDogUpdated),
		"dog":     dog,
		"upload":  upload,
	})
}

// POST /admin/dogs/:id/vaccinations
func (h *DogHandler) AddVaccination(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	var req services.AddVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	vaccination, err := h.dogService.AddVaccination(id, &req)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"vaccination": vaccination,
	})
}

// GET /dogs/:id/vaccinations
func (h *DogHandler) ListVaccinations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dog ID", nil)
		return
	}

	vaccinations, err := h.dogService.ListVaccinations(id)
	if err != nil {
		utils.BusinessErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"vaccinations": vaccinations,
	})
}
