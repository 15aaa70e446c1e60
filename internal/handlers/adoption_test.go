// internal/handlers/adoption_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adotepet/adotepet-backend/internal/middleware"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/services"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

type AdoptionHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	admin  *models.User
}

func (suite *AdoptionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Breed{},
		&models.Dog{},
		&models.AdoptionRequest{},
	))
	suite.db = db

	eligibilityService := services.NewEligibilityService(db, 3)
	adoptionService := services.NewAdoptionService(db, eligibilityService, nil)
	adoptionHandler := NewAdoptionHandler(adoptionService, eligibilityService)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")

	adoptions := v1.Group("/adoptions")
	adoptions.Use(middleware.AuthRequired())
	{
		adoptions.POST("", adoptionHandler.CreateRequest)
		adoptions.GET("", adoptionHandler.GetMyRequests)
		adoptions.GET("/verify/:dogId", adoptionHandler.VerifyEligibility)
		adoptions.GET("/:id", adoptionHandler.GetRequest)
		adoptions.DELETE("/:id", adoptionHandler.CancelRequest)
	}

	admin := v1.Group("/admin/adoptions")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("", adoptionHandler.SearchRequests)
		admin.PUT("/:id/approve", adoptionHandler.ApproveRequest)
		admin.PUT("/:id/reject", adoptionHandler.RejectRequest)
	}

	suite.admin = suite.createUser(models.UserTypeAdmin)
}

func (suite *AdoptionHandlerTestSuite) createUser(userType models.UserType) *models.User {
	user := &models.User{
		Name:         gofakeit.Name(),
		Email:        gofakeit.Email(),
		PasswordHash: "x",
		UserType:     userType,
		Status:       models.UserStatusActive,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *AdoptionHandlerTestSuite) createDog() *models.Dog {
	dog := &models.Dog{Name: gofakeit.PetName(), Active: true}
	suite.Require().NoError(suite.db.Create(dog).Error)
	return dog
}

func (suite *AdoptionHandlerTestSuite) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := utils.GenerateJWT(user.ID, user.Name, string(user.UserType), 1)
		suite.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AdoptionHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *AdoptionHandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	response := suite.decode(w)
	errObj, ok := response["error"].(map[string]interface{})
	suite.Require().True(ok, "expected error envelope, got %s", w.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func (suite *AdoptionHandlerTestSuite) TestCreateRequest() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Equal(http.StatusCreated, w.Code)

	response := suite.decode(w)
	suite.True(response["success"].(bool))
}

func (suite *AdoptionHandlerTestSuite) TestCreateRequestUnauthenticated() {
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", nil, gin.H{"dog_id": dog.ID})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AdoptionHandlerTestSuite) TestCreateDuplicateRequest() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("DUPLICATE_REQUEST", suite.errorCode(w))
}

func (suite *AdoptionHandlerTestSuite) TestVerifyEligibility() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("GET", "/v1/adoptions/verify/"+dog.ID.String(), user, nil)
	suite.Equal(http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	suite.True(data["eligible"].(bool))
	suite.Equal("eligible", data["reason"])
}

func (suite *AdoptionHandlerTestSuite) TestApproveFlow() {
	user := suite.createUser(models.UserTypeAdopter)
	rival := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	requestID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("POST", "/v1/adoptions", rival, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	rivalID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("PUT", "/v1/admin/adoptions/"+requestID+"/approve", suite.admin, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	// The rival's request lost the dog.
	var rejected models.AdoptionRequest
	suite.Require().NoError(suite.db.First(&rejected, "id = ?", rivalID).Error)
	suite.Equal(models.RequestStatusRejected, rejected.Status)
	suite.Equal(services.SystemRejectionReason, rejected.RejectionReason)

	// A second approval reports the conflict.
	w = suite.do("PUT", "/v1/admin/adoptions/"+requestID+"/approve", suite.admin, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("ALREADY_APPROVED", suite.errorCode(w))
}

func (suite *AdoptionHandlerTestSuite) TestApproveRequiresAdmin() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	requestID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("PUT", "/v1/admin/adoptions/"+requestID+"/approve", user, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AdoptionHandlerTestSuite) TestRejectWithoutReason() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	requestID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("PUT", "/v1/admin/adoptions/"+requestID+"/reject", suite.admin, gin.H{"reason": ""})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AdoptionHandlerTestSuite) TestGetSomeoneElsesRequest() {
	user := suite.createUser(models.UserTypeAdopter)
	stranger := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	requestID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("GET", "/v1/adoptions/"+requestID, stranger, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do("GET", "/v1/adoptions/"+requestID, user, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AdoptionHandlerTestSuite) TestCancelRequest() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)
	requestID := suite.decode(w)["data"].(map[string]interface{})["request"].(map[string]interface{})["id"].(string)

	w = suite.do("DELETE", "/v1/adoptions/"+requestID, user, nil)
	suite.Equal(http.StatusOK, w.Code)

	// Withdrawn requests are gone from the workflow's point of view.
	w = suite.do("DELETE", "/v1/adoptions/"+requestID, user, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AdoptionHandlerTestSuite) TestSearchRequests() {
	user := suite.createUser(models.UserTypeAdopter)
	dog := suite.createDog()

	w := suite.do("POST", "/v1/adoptions", user, gin.H{"dog_id": dog.ID})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do("GET", "/v1/admin/adoptions?status=pending", suite.admin, nil)
	suite.Equal(http.StatusOK, w.Code)

	response := suite.decode(w)
	pagination := response["meta"].(map[string]interface{})["pagination"].(map[string]interface{})
	suite.Equal(float64(1), pagination["total"])
}

func TestAdoptionHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdoptionHandlerTestSuite))
}
