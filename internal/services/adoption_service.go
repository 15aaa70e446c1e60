// internal/services/adoption_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
	"github.com/adotepet/adotepet-backend/internal/middleware"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

// SystemRejectionReason is stamped on every pending request that loses the
// dog to another applicant during an approval cascade.
const SystemRejectionReason = "dog adopted by another applicant"

// ErrUnauthorized marks ownership failures; handlers turn it into a 403.
var ErrUnauthorized = errors.New("unauthorized")

// AdoptionService owns the adoption request records and every status
// transition. All dog-level checks and writes run inside one transaction per
// operation; there is no application-level locking, so the service stays
// correct across multiple stateless instances.
type AdoptionService struct {
	db                  *gorm.DB
	eligibility         *EligibilityService
	notificationService *NotificationService
}

type CreateAdoptionRequest struct {
	DogID uuid.UUID `json:"dog_id" validate:"required"`
	Note  string    `json:"note,omitempty" validate:"max=2000"`
}

type UpdateAdoptionRequest struct {
	Status          *models.RequestStatus `json:"status,omitempty"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
	Note            *string               `json:"note,omitempty"`
}

type ApproveAdoptionRequest struct {
	Note string `json:"note,omitempty" validate:"max=2000"`
}

type RejectAdoptionRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type AdoptionSearchParams struct {
	utils.PaginationParams
	UserID *uuid.UUID            `json:"user_id,omitempty"`
	DogID  *uuid.UUID            `json:"dog_id,omitempty"`
	Status *models.RequestStatus `json:"status,omitempty"`
}

func NewAdoptionService(db *gorm.DB, eligibility *EligibilityService, notificationService *NotificationService) *AdoptionService {
	return &AdoptionService{
		db:                  db,
		eligibility:         eligibility,
		notificationService: notificationService,
	}
}

// Create opens a new pending request. The eligibility checks run again inside
// the insert transaction, so two concurrent creates for the same user and dog
// cannot both pass; the partial unique index on (user_id, dog_id) WHERE
// active backs this up at the storage level.
func (s *AdoptionService) Create(userID uuid.UUID, req *CreateAdoptionRequest) (*models.AdoptionRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	request := &models.AdoptionRequest{
		UserID:      userID,
		DogID:       req.DogID,
		Status:      models.RequestStatusPending,
		Note:        strings.TrimSpace(req.Note),
		RequestedAt: time.Now(),
		Active:      true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		decision, err := s.eligibility.Evaluate(tx, &user, req.DogID)
		if err != nil {
			return err
		}
		if !decision.Eligible {
			return decisionError(decision.Reason)
		}

		if err := tx.Create(request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.New(apperrors.CodeDuplicateRequest,
					"you already have an active request for this dog")
			}
			return fmt.Errorf("failed to create adoption request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Dog").Preload("Dog.Breed").First(request, "id = ?", request.ID)

	return request, nil
}

// decisionError maps an eligibility reason to the business error surfaced by
// the create endpoint.
func decisionError(reason string) error {
	switch reason {
	case ReasonDuplicateRequest:
		return apperrors.New(apperrors.CodeDuplicateRequest,
			"you already have an active request for this dog")
	case ReasonAlreadyAdopted:
		return apperrors.New(apperrors.CodeAlreadyAdopted,
			"this dog has already been adopted")
	case ReasonDogNotFound:
		return apperrors.New(apperrors.CodeNotFound, "dog not found")
	default:
		return apperrors.New(apperrors.CodeNotEligible,
			"not eligible to request this adoption: "+reason)
	}
}

// Get returns one request. Non-admin callers may only see their own.
func (s *AdoptionService) Get(id, callerID uuid.UUID, isAdmin bool) (*models.AdoptionRequest, error) {
	var request models.AdoptionRequest
	if err := s.db.Preload("Dog").Preload("Dog.Breed").Preload("User").Preload("Approver").
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && request.UserID != callerID {
		return nil, ErrUnauthorized
	}

	return &request, nil
}

// ListMine returns the caller's own requests, withdrawn ones included.
func (s *AdoptionService) ListMine(userID uuid.UUID, params utils.PaginationParams) ([]models.AdoptionRequest, int64, error) {
	query := s.db.Model(&models.AdoptionRequest{}).
		Where("user_id = ?", userID).
		Preload("Dog").Preload("Dog.Breed")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count adoption requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "requested_at", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var requests []models.AdoptionRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch adoption requests: %w", err)
	}

	return requests, total, nil
}

// Search is the admin listing across all users.
func (s *AdoptionService) Search(params AdoptionSearchParams) ([]models.AdoptionRequest, int64, error) {
	query := s.db.Model(&models.AdoptionRequest{}).
		Preload("Dog").Preload("Dog.Breed").Preload("User")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	if params.DogID != nil {
		query = query.Where("dog_id = ?", *params.DogID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"user_id IN (SELECT id FROM users WHERE lower(name) LIKE ? OR lower(email) LIKE ?) OR dog_id IN (SELECT id FROM dogs WHERE lower(name) LIKE ?)",
			term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count adoption requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "requested_at", "approved_at", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var requests []models.AdoptionRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch adoption requests: %w", err)
	}

	return requests, total, nil
}

// Update is the admin field update. Only status, rejection_reason and note
// are mutable; a status change follows the same rules as the dedicated
// approve/reject paths, including flipping the dog flag inside the same
// transaction when the new status is approved.
func (s *AdoptionService) Update(id uuid.UUID, adminID uuid.UUID, req *UpdateAdoptionRequest) (*models.AdoptionRequest, error) {
	if req.Status == nil && req.RejectionReason == nil && req.Note == nil {
		return nil, apperrors.New(apperrors.CodeNoValidFields, "no valid fields to update")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.AdoptionRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !request.Active {
			return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}

		updates := map[string]interface{}{}

		if req.Note != nil {
			updates["note"] = strings.TrimSpace(*req.Note)
		}

		if req.RejectionReason != nil && req.Status == nil {
			// A standalone reason only makes sense on an already rejected row.
			if request.Status != models.RequestStatusRejected {
				return apperrors.New(apperrors.CodeInvalidTransition,
					"rejection reason can only be set on a rejected request")
			}
			reason := strings.TrimSpace(*req.RejectionReason)
			if reason == "" {
				return apperrors.New(apperrors.CodeReasonRequired, "rejection reason is required")
			}
			updates["rejection_reason"] = reason
		}

		if req.Status != nil {
			newStatus := *req.Status
			switch newStatus {
			case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
			default:
				return apperrors.New(apperrors.CodeInvalidTransition,
					fmt.Sprintf("unknown status %q", newStatus))
			}

			if newStatus != request.Status {
				if request.Status != models.RequestStatusPending {
					if request.Status == models.RequestStatusApproved {
						return apperrors.New(apperrors.CodeAlreadyApproved,
							"adoption request is already approved")
					}
					return apperrors.New(apperrors.CodeInvalidTransition,
						fmt.Sprintf("cannot change status from %s", request.Status))
				}

				switch newStatus {
				case models.RequestStatusApproved:
					if err := s.markDogAdopted(tx, &request); err != nil {
						return err
					}
					now := time.Now()
					updates["status"] = newStatus
					updates["approved_at"] = &now
					updates["approved_by"] = adminID
					updates["rejection_reason"] = ""
				case models.RequestStatusRejected:
					reason := ""
					if req.RejectionReason != nil {
						reason = strings.TrimSpace(*req.RejectionReason)
					}
					if reason == "" {
						return apperrors.New(apperrors.CodeReasonRequired, "rejection reason is required")
					}
					updates["status"] = newStatus
					updates["rejection_reason"] = reason
				}
			}
		}

		if len(updates) == 0 {
			return apperrors.New(apperrors.CodeNoValidFields, "no valid fields to update")
		}

		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update adoption request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var updated models.AdoptionRequest
	if err := s.db.Preload("Dog").Preload("User").First(&updated, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload adoption request: %w", err)
	}
	return &updated, nil
}

// Approve marks the request approved, flips the dog's adopted flag, and
// rejects every other pending request for the same dog, all in one
// transaction. Either all rows change together or none do; readers never see
// an adopted dog with a competing request still pending.
func (s *AdoptionService) Approve(id uuid.UUID, adminID uuid.UUID, req *ApproveAdoptionRequest) (*models.AdoptionRequest, error) {
	if req != nil {
		if err := utils.ValidateStruct(req); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.AdoptionRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !request.Active {
			return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}

		// Idempotency guard against double submission.
		if request.Status == models.RequestStatusApproved {
			return apperrors.New(apperrors.CodeAlreadyApproved,
				"adoption request is already approved")
		}
		if request.Status != models.RequestStatusPending {
			return apperrors.New(apperrors.CodeInvalidTransition,
				fmt.Sprintf("cannot approve a %s request", request.Status))
		}

		if err := s.markDogAdopted(tx, &request); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":           models.RequestStatusApproved,
			"approved_at":      &now,
			"approved_by":      adminID,
			"rejection_reason": "",
		}
		if req != nil && strings.TrimSpace(req.Note) != "" {
			updates["note"] = strings.TrimSpace(req.Note)
		}

		res := tx.Model(&models.AdoptionRequest{}).
			Where("id = ? AND status = ? AND active = ?", request.ID, models.RequestStatusPending, true).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to approve adoption request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent decision got there first.
			return apperrors.New(apperrors.CodeAlreadyApproved,
				"adoption request is already approved")
		}

		// Cascade: every other pending request for this dog loses.
		if err := tx.Model(&models.AdoptionRequest{}).
			Where("dog_id = ? AND id <> ? AND status = ? AND active = ?",
				request.DogID, request.ID, models.RequestStatusPending, true).
			Updates(map[string]interface{}{
				"status":           models.RequestStatusRejected,
				"rejection_reason": SystemRejectionReason,
			}).Error; err != nil {
			return fmt.Errorf("failed to cascade rejections: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.RecordAdoptionDecision("approved")

	var approved models.AdoptionRequest
	if err := s.db.Preload("Dog").Preload("Dog.Breed").Preload("User").Preload("Approver").
		First(&approved, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload adoption request: %w", err)
	}

	// Best effort; a notification failure never undoes the approval.
	go s.sendApprovalNotification(&approved)

	return &approved, nil
}

// markDogAdopted compare-and-sets the dog row from available to adopted. The
// guarded UPDATE is the serialization point: when two approvals race on the
// same dog, the loser's update matches zero rows after the winner commits.
func (s *AdoptionService) markDogAdopted(tx *gorm.DB, request *models.AdoptionRequest) error {
	// Friendly pre-check so the common sequential case reports the right
	// code without relying on the CAS fallout.
	var approvedCount int64
	if err := tx.Model(&models.AdoptionRequest{}).
		Where("dog_id = ? AND id <> ? AND status = ? AND active = ?",
			request.DogID, request.ID, models.RequestStatusApproved, true).
		Count(&approvedCount).Error; err != nil {
		return fmt.Errorf("failed to check approved requests: %w", err)
	}
	if approvedCount > 0 {
		return apperrors.New(apperrors.CodeAlreadyAdopted,
			"this dog has already been adopted by another applicant")
	}

	res := tx.Model(&models.Dog{}).
		Where("id = ? AND adopted = ? AND active = ?", request.DogID, false, true).
		Update("adopted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark dog adopted: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var dog models.Dog
		if err := tx.First(&dog, "id = ?", request.DogID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "dog not found")
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !dog.Active {
			return apperrors.New(apperrors.CodeNotFound, "dog not found")
		}
		return apperrors.New(apperrors.CodeAlreadyAdopted,
			"this dog has already been adopted by another applicant")
	}
	return nil
}

// Reject turns a pending request down with a mandatory reason.
func (s *AdoptionService) Reject(id uuid.UUID, adminID uuid.UUID, req *RejectAdoptionRequest) (*models.AdoptionRequest, error) {
	reason := ""
	if req != nil {
		reason = strings.TrimSpace(req.Reason)
	}
	if reason == "" {
		return nil, apperrors.New(apperrors.CodeReasonRequired, "rejection reason is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.AdoptionRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !request.Active {
			return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}
		if request.Status == models.RequestStatusApproved {
			return apperrors.New(apperrors.CodeAlreadyApproved,
				"an approved request cannot be rejected")
		}
		if request.Status != models.RequestStatusPending {
			return apperrors.New(apperrors.CodeInvalidTransition,
				fmt.Sprintf("cannot reject a %s request", request.Status))
		}

		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"rejection_reason": reason,
		}).Error; err != nil {
			return fmt.Errorf("failed to reject adoption request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.RecordAdoptionDecision("rejected")

	var rejected models.AdoptionRequest
	if err := s.db.Preload("Dog").Preload("User").First(&rejected, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload adoption request: %w", err)
	}

	go s.sendRejectionNotification(&rejected)

	return &rejected, nil
}

// Cancel soft-deletes a request. The row stays for audit with Active = false
// and is excluded from all matching from then on. Approved adoptions are
// terminal and cannot be withdrawn here.
func (s *AdoptionService) Cancel(id, actorID uuid.UUID, isAdmin bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.AdoptionRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !request.Active {
			return apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}

		if !isAdmin && request.UserID != actorID {
			return ErrUnauthorized
		}

		if request.Status == models.RequestStatusApproved {
			return apperrors.New(apperrors.CodeCannotCancelApproved,
				"an approved adoption cannot be cancelled")
		}

		if err := tx.Model(&request).Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to cancel adoption request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	middleware.RecordAdoptionDecision("cancelled")
	return nil
}

// Notification methods

func (s *AdoptionService) sendApprovalNotification(request *models.AdoptionRequest) {
	if s.notificationService == nil {
		return
	}
	if err := s.notificationService.SendAdoptionApprovedNotification(request); err != nil {
		logrus.WithError(err).WithField("request_id", request.ID).
			Warn("Failed to send approval notification")
	}
}

func (s *AdoptionService) sendRejectionNotification(request *models.AdoptionRequest) {
	if s.notificationService == nil {
		return
	}
	if err := s.notificationService.SendAdoptionRejectedNotification(request); err != nil {
		logrus.WithError(err).WithField("request_id", request.ID).
			Warn("Failed to send rejection notification")
	}
}
