// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PixCharge is a mock PIX charge for the adoption fee. No PSP is involved:
// the txid and copy-paste code are generated locally and a scheduled job
// confirms pending charges after a configured delay.
type PixCharge struct {
	BaseModel
	UserID    uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	RequestID uuid.UUID    `json:"request_id" gorm:"type:uuid;not null;uniqueIndex"`
	Amount    float64      `json:"amount" gorm:"type:decimal(10,2);not null"`
	TxID      string       `json:"txid" gorm:"size:35;uniqueIndex;not null"`
	Code      string       `json:"code" gorm:"type:text;not null"`
	Status    ChargeStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt    *time.Time   `json:"paid_at"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"not null"`

	// Relationships
	User    User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Request AdoptionRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
}
