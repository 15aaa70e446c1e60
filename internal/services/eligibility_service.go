// internal/services/eligibility_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
	"github.com/adotepet/adotepet-backend/internal/models"
)

// Stable reason codes returned with every eligibility decision.
const (
	ReasonEligible         = "eligible"
	ReasonRoleNotAllowed   = "role_not_allowed"
	ReasonDogNotFound      = "dog_not_found"
	ReasonDogUnavailable   = "dog_unavailable"
	ReasonAlreadyAdopted   = "already_adopted"
	ReasonDuplicateRequest = "duplicate_request"
	ReasonLimitReached     = "request_limit_reached"
)

// EligibilityService answers whether a user may open a new adoption request
// for a dog. It is read-only and safe to call concurrently; it never reserves
// anything. The creation path re-runs Evaluate on its own transaction handle
// to close the gap between check and insert.
type EligibilityService struct {
	db         *gorm.DB
	maxPending int
}

type Decision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

func NewEligibilityService(db *gorm.DB, maxPending int) *EligibilityService {
	return &EligibilityService{
		db:         db,
		maxPending: maxPending,
	}
}

// CanRequest loads the user and evaluates the full eligibility gate against
// current state. No side effects.
func (s *EligibilityService) CanRequest(userID, dogID uuid.UUID) (*Decision, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.Evaluate(s.db, &user, dogID)
}

// Evaluate runs the eligibility checks on the given handle, which may be an
// open transaction. Checks run cheapest-first; the first failure wins.
func (s *EligibilityService) Evaluate(tx *gorm.DB, user *models.User, dogID uuid.UUID) (*Decision, error) {
	if !user.UserType.CanAdopt() || user.Status != models.UserStatusActive {
		return &Decision{Eligible: false, Reason: ReasonRoleNotAllowed}, nil
	}

	var dog models.Dog
	if err := tx.First(&dog, "id = ?", dogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Decision{Eligible: false, Reason: ReasonDogNotFound}, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !dog.Active {
		return &Decision{Eligible: false, Reason: ReasonDogUnavailable}, nil
	}

	if dog.Adopted {
		return &Decision{Eligible: false, Reason: ReasonAlreadyAdopted}, nil
	}

	// An active request by this user for this dog, whatever its status,
	// blocks a duplicate.
	var existing int64
	if err := tx.Model(&models.AdoptionRequest{}).
		Where("user_id = ? AND dog_id = ? AND active = ?", user.ID, dogID, true).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing requests: %w", err)
	}
	if existing > 0 {
		return &Decision{Eligible: false, Reason: ReasonDuplicateRequest}, nil
	}

	// Anti-hoarding cap on simultaneous pending requests.
	var pending int64
	if err := tx.Model(&models.AdoptionRequest{}).
		Where("user_id = ? AND status = ? AND active = ?", user.ID, models.RequestStatusPending, true).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	if pending >= int64(s.maxPending) {
		return &Decision{Eligible: false, Reason: ReasonLimitReached}, nil
	}

	return &Decision{Eligible: true, Reason: ReasonEligible}, nil
}
