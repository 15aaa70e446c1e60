// internal/services/payment_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

// PaymentService implements the mock PIX adoption-fee flow. There is no PSP:
// charges carry a locally generated txid and copy-paste code, and
// AutoConfirmPending stands in for the provider callback.
type PaymentService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	notificationService *NotificationService
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *PaymentService {
	return &PaymentService{
		db:                  db,
		cfg:                 cfg,
		notificationService: notificationService,
	}
}

// CreateCharge opens a mock PIX charge for an approved adoption request
// owned by the caller. One charge per request.
func (s *PaymentService) CreateCharge(userID, requestID uuid.UUID) (*models.PixCharge, error) {
	var request models.AdoptionRequest
	if err := s.db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "adoption request not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.UserID != userID {
		return nil, ErrUnauthorized
	}

	if request.Status != models.RequestStatusApproved || !request.Active {
		return nil, apperrors.New(apperrors.CodeInvalidTransition,
			"adoption fee can only be paid for an approved request")
	}

	txid, err := generateTxID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate txid: %w", err)
	}

	charge := &models.PixCharge{
		UserID:    userID,
		RequestID: requestID,
		Amount:    s.cfg.Payment.AdoptionFee,
		TxID:      txid,
		Code:      buildPixCode(s.cfg.Payment.PixKey, txid, s.cfg.Payment.AdoptionFee),
		Status:    models.ChargeStatusPending,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Payment.ChargeTTLMinutes) * time.Minute),
	}

	if err := s.db.Create(charge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.CodeDuplicateRequest,
				"a charge already exists for this adoption request")
		}
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	return charge, nil
}

func (s *PaymentService) GetCharge(id, userID uuid.UUID, isAdmin bool) (*models.PixCharge, error) {
	var charge models.PixCharge
	if err := s.db.Preload("Request").First(&charge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "charge not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && charge.UserID != userID {
		return nil, ErrUnauthorized
	}

	return &charge, nil
}

func (s *PaymentService) ListMine(userID uuid.UUID, params utils.PaginationParams) ([]models.PixCharge, int64, error) {
	query := s.db.Model(&models.PixCharge{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count charges: %w", err)
	}

	allowedSortFields := []string{"created_at", "paid_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var charges []models.PixCharge
	if err := query.Find(&charges).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch charges: %w", err)
	}

	return charges, total, nil
}

// AutoConfirmPending simulates the PSP: pending charges older than the
// configured delay are marked paid, expired ones are closed. Called from the
// scheduler.
func (s *PaymentService) AutoConfirmPending() error {
	cutoff := time.Now().Add(-time.Duration(s.cfg.Payment.AutoConfirmMinutes) * time.Minute)
	now := time.Now()

	var due []models.PixCharge
	if err := s.db.Preload("User").
		Where("status = ? AND created_at <= ? AND expires_at > ?",
			models.ChargeStatusPending, cutoff, now).
		Find(&due).Error; err != nil {
		return fmt.Errorf("failed to fetch due charges: %w", err)
	}

	for i := range due {
		charge := &due[i]
		res := s.db.Model(&models.PixCharge{}).
			Where("id = ? AND status = ?", charge.ID, models.ChargeStatusPending).
			Updates(map[string]interface{}{
				"status":  models.ChargeStatusPaid,
				"paid_at": &now,
			})
		if res.Error != nil {
			logrus.WithError(res.Error).WithField("charge_id", charge.ID).
				Error("Failed to confirm charge")
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"charge_id": charge.ID,
			"txid":      charge.TxID,
		}).Info("Mock PIX charge confirmed")

		if s.notificationService != nil {
			if err := s.notificationService.SendPaymentConfirmedNotification(charge); err != nil {
				logrus.WithError(err).WithField("charge_id", charge.ID).
					Warn("Failed to send payment confirmation")
			}
		}
	}

	// Close out anything past its expiry.
	if err := s.db.Model(&models.PixCharge{}).
		Where("status = ? AND expires_at <= ?", models.ChargeStatusPending, now).
		Update("status", models.ChargeStatusExpired).Error; err != nil {
		return fmt.Errorf("failed to expire charges: %w", err)
	}

	return nil
}

func generateTxID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// buildPixCode fakes a BR Code payload; enough structure for the client to
// render something copy-pasteable, no EMV compliance intended.
func buildPixCode(pixKey, txid string, amount float64) string {
	return fmt.Sprintf("00020126BR.GOV.BCB.PIX|%s|%.2f|%s", pixKey, amount, txid)
}
