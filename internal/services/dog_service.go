// internal/services/dog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

type DogService struct {
	db *gorm.DB
}

type CreateDogRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=80"`
	BreedID     *uuid.UUID `json:"breed_id,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Size        string     `json:"size,omitempty" validate:"omitempty,oneof=small medium large"`
	Gender      string     `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Description string     `json:"description,omitempty" validate:"max=5000"`
}

type UpdateDogRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	BreedID     *uuid.UUID `json:"breed_id,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Size        *string    `json:"size,omitempty" validate:"omitempty,oneof=small medium large"`
	Gender      *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	PhotoURL    *string    `json:"photo_url,omitempty"`
}

type DogSearchParams struct {
	utils.PaginationParams
	BreedID        *uuid.UUID `json:"breed_id,omitempty"`
	Size           *string    `json:"size,omitempty"`
	IncludeAdopted bool       `json:"include_adopted,omitempty"`
}

type AddVaccinationRequest struct {
	Vaccine   string     `json:"vaccine" validate:"required,max=120"`
	AppliedAt time.Time  `json:"applied_at" validate:"required"`
	NextDueAt *time.Time `json:"next_due_at,omitempty"`
	Notes     string     `json:"notes,omitempty" validate:"max=2000"`
}

func NewDogService(db *gorm.DB) *DogService {
	return &DogService{db: db}
}

func (s *DogService) Create(req *CreateDogRequest) (*models.Dog, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	dog := &models.Dog{
		Name:        strings.TrimSpace(req.Name),
		BreedID:     req.BreedID,
		BirthDate:   req.BirthDate,
		Description: req.Description,
		Active:      true,
	}
	if req.Size != "" {
		dog.Size = models.DogSize(req.Size)
	}
	if req.Gender != "" {
		dog.Gender = models.DogGender(req.Gender)
	}

	if err := s.db.Create(dog).Error; err != nil {
		return nil, fmt.Errorf("failed to create dog: %w", err)
	}

	return dog, nil
}

func (s *DogService) Get(id uuid.UUID) (*models.Dog, error) {
	var dog models.Dog
	if err := s.db.Preload("Breed").Preload("Vaccinations").
		First(&dog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "dog not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &dog, nil
}

func (s *DogService) Search(params DogSearchParams) ([]models.Dog, int64, error) {
	query := s.db.Model(&models.Dog{}).Where("active = ?", true).Preload("Breed")

	if !params.IncludeAdopted {
		query = query.Where("adopted = ?", false)
	}

	if params.BreedID != nil {
		query = query.Where("breed_id = ?", *params.BreedID)
	}

	if params.Size != nil {
		query = query.Where("size = ?", *params.Size)
	}

	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(description) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count dogs: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "birth_date"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var dogs []models.Dog
	if err := query.Find(&dogs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch dogs: %w", err)
	}

	return dogs, total, nil
}

func (s *DogService) Update(id uuid.UUID, req *UpdateDogRequest) (*models.Dog, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var dog models.Dog
	if err := s.db.First(&dog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "dog not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.BreedID != nil {
		updates["breed_id"] = *req.BreedID
	}
	if req.BirthDate != nil {
		updates["birth_date"] = *req.BirthDate
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}

	if len(updates) == 0 {
		return nil, apperrors.New(apperrors.CodeNoValidFields, "no valid fields to update")
	}

	if err := s.db.Model(&dog).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update dog: %w", err)
	}

	return &dog, nil
}

// Delete soft-deactivates a dog. An adopted dog keeps its record; it just
// stops showing up in listings.
func (s *DogService) Delete(id uuid.UUID) error {
	res := s.db.Model(&models.Dog{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate dog: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "dog not found")
	}
	return nil
}

func (s *DogService) AddVaccination(dogID uuid.UUID, req *AddVaccinationRequest) (*models.Vaccination, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var dog models.Dog
	if err := s.db.First(&dog, "id = ?", dogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "dog not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	vaccination := &models.Vaccination{
		DogID:     dogID,
		Vaccine:   strings.TrimSpace(req.Vaccine),
		AppliedAt: req.AppliedAt,
		NextDueAt: req.NextDueAt,
		Notes:     req.Notes,
	}

	if err := s.db.Create(vaccination).Error; err != nil {
		return nil, fmt.Errorf("failed to record vaccination: %w", err)
	}

	return vaccination, nil
}

func (s *DogService) ListVaccinations(dogID uuid.UUID) ([]models.Vaccination, error) {
	var vaccinations []models.Vaccination
	if err := s.db.Where("dog_id = ?", dogID).
		Order("applied_at desc").
		Find(&vaccinations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch vaccinations: %w", err)
	}
	return vaccinations, nil
}

func (s *DogService) ListBreeds() ([]models.Breed, error) {
	var breeds []models.Breed
	if err := s.db.Order("name asc").Find(&breeds).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch breeds: %w", err)
	}
	return breeds, nil
}
