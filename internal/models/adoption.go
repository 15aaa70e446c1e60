// internal/models/adoption.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AdoptionRequest is the canonical record of one user asking to adopt one
// dog. UserID and DogID are immutable after creation; status only ever moves
// out of pending, and an approved request is terminal. Withdrawn requests are
// kept for audit with Active = false instead of being deleted.
type AdoptionRequest struct {
	BaseModel
	UserID uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	DogID  uuid.UUID     `json:"dog_id" gorm:"type:uuid;not null;index"`
	Status RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	// RejectionReason is non-empty exactly when Status is rejected.
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	Note            string     `json:"note,omitempty" gorm:"type:text"`
	RequestedAt     time.Time  `json:"requested_at" gorm:"not null"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uuid.UUID `json:"approved_by" gorm:"type:uuid"`
	Active          bool       `json:"active" gorm:"default:true;index"`

	// Relationships
	User     User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Dog      Dog   `json:"dog,omitempty" gorm:"foreignKey:DogID"`
	Approver *User `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

// StatusText is the human-readable status shown in listings; cancelled
// requests read as withdrawn regardless of the status they carried.
func (r *AdoptionRequest) StatusText() string {
	if !r.Active {
		return "withdrawn"
	}
	switch r.Status {
	case RequestStatusPending:
		return "awaiting review"
	case RequestStatusApproved:
		return "approved"
	case RequestStatusRejected:
		return "rejected"
	}
	return string(r.Status)
}
