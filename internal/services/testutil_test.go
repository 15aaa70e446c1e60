// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

// newTestDB opens a fresh in-memory database per test. The shared cache keeps
// the schema visible across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Breed{},
		&models.Dog{},
		&models.Vaccination{},
		&models.AdoptionRequest{},
		&models.PixCharge{},
		&models.AuditLog{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Adoption: config.AdoptionConfig{
			MaxPendingRequests: 3,
		},
		Payment: config.PaymentConfig{
			AdoptionFee:        50.0,
			PixKey:             "adoptions@adotepet.com.br",
			ChargeTTLMinutes:   60,
			AutoConfirmMinutes: 2,
		},
	}
}

func defaultPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20}
}

func createUser(t *testing.T, db *gorm.DB, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		UserType: userType,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createDog(t *testing.T, db *gorm.DB) *models.Dog {
	t.Helper()

	dog := &models.Dog{
		Name:   gofakeit.PetName(),
		Size:   models.DogSizeMedium,
		Gender: models.DogGenderFemale,
		Active: true,
	}
	require.NoError(t, db.Create(dog).Error)
	return dog
}

func createRequest(t *testing.T, db *gorm.DB, user *models.User, dog *models.Dog, status models.RequestStatus) *models.AdoptionRequest {
	t.Helper()

	request := &models.AdoptionRequest{
		UserID:      user.ID,
		DogID:       dog.ID,
		Status:      status,
		RequestedAt: time.Now(),
		Active:      true,
	}
	require.NoError(t, db.Create(request).Error)
	return request
}
