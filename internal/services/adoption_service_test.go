// internal/services/adoption_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
	"github.com/adotepet/adotepet-backend/internal/models"
)

type AdoptionServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	svc   *AdoptionService
	admin *models.User
}

func (s *AdoptionServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	eligibility := NewEligibilityService(s.db, 3)
	s.svc = NewAdoptionService(s.db, eligibility, nil)
	s.admin = createUser(s.T(), s.db, models.UserTypeAdmin)
}

func (s *AdoptionServiceTestSuite) reload(id uuid.UUID) *models.AdoptionRequest {
	var request models.AdoptionRequest
	s.Require().NoError(s.db.First(&request, "id = ?", id).Error)
	return &request
}

func (s *AdoptionServiceTestSuite) reloadDog(id uuid.UUID) *models.Dog {
	var dog models.Dog
	s.Require().NoError(s.db.First(&dog, "id = ?", id).Error)
	return &dog
}

// Create

func (s *AdoptionServiceTestSuite) TestCreateRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)

	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID, Note: "  we have a yard  "})
	s.Require().NoError(err)

	s.Equal(models.RequestStatusPending, request.Status)
	s.True(request.Active)
	s.Equal("we have a yard", request.Note)
	s.False(request.RequestedAt.IsZero())
	s.Nil(request.ApprovedAt)
}

func (s *AdoptionServiceTestSuite) TestCreateDuplicate() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)

	_, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.True(apperrors.Is(err, apperrors.CodeDuplicateRequest))
}

func (s *AdoptionServiceTestSuite) TestCreateForAdoptedDog() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	s.Require().NoError(s.db.Model(dog).Update("adopted", true).Error)

	_, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.True(apperrors.Is(err, apperrors.CodeAlreadyAdopted))
}

func (s *AdoptionServiceTestSuite) TestCreateDogNotFound() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)

	_, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: uuid.New()})
	s.True(apperrors.Is(err, apperrors.CodeNotFound))
}

func (s *AdoptionServiceTestSuite) TestCreateAsAdmin() {
	dog := createDog(s.T(), s.db)

	_, err := s.svc.Create(s.admin.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.True(apperrors.Is(err, apperrors.CodeNotEligible))
}

func (s *AdoptionServiceTestSuite) TestCreateOverPendingCap() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	var requests []*models.AdoptionRequest
	for i := 0; i < 3; i++ {
		request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: createDog(s.T(), s.db).ID})
		s.Require().NoError(err)
		requests = append(requests, request)
	}

	dog := createDog(s.T(), s.db)
	_, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.True(apperrors.Is(err, apperrors.CodeNotEligible))

	// Withdrawing one request frees a slot.
	s.Require().NoError(s.svc.Cancel(requests[0].ID, user.ID, false))
	_, err = s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.NoError(err)
}

// Approve

func (s *AdoptionServiceTestSuite) TestApproveCascade() {
	dog := createDog(s.T(), s.db)
	otherDog := createDog(s.T(), s.db)

	winner := createUser(s.T(), s.db, models.UserTypeAdopter)
	loser1 := createUser(s.T(), s.db, models.UserTypeAdopter)
	loser2 := createUser(s.T(), s.db, models.UserTypeAdopter)

	winning, err := s.svc.Create(winner.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)
	losing1, err := s.svc.Create(loser1.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)
	losing2, err := s.svc.Create(loser2.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	// A pending request for a different dog must not be touched.
	unrelated, err := s.svc.Create(winner.ID, &CreateAdoptionRequest{DogID: otherDog.ID})
	s.Require().NoError(err)

	approved, err := s.svc.Approve(winning.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	s.Equal(models.RequestStatusApproved, approved.Status)
	s.NotNil(approved.ApprovedAt)
	s.Require().NotNil(approved.ApprovedBy)
	s.Equal(s.admin.ID, *approved.ApprovedBy)
	s.True(s.reloadDog(dog.ID).Adopted)

	for _, id := range []uuid.UUID{losing1.ID, losing2.ID} {
		rejected := s.reload(id)
		s.Equal(models.RequestStatusRejected, rejected.Status)
		s.Equal(SystemRejectionReason, rejected.RejectionReason)
		s.True(rejected.Active)
	}

	s.Equal(models.RequestStatusPending, s.reload(unrelated.ID).Status)
	s.False(s.reloadDog(otherDog.ID).Adopted)
}

func (s *AdoptionServiceTestSuite) TestApproveIsIdempotent() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.True(apperrors.Is(err, apperrors.CodeAlreadyApproved))

	// The dog is still adopted exactly once.
	s.True(s.reloadDog(dog.ID).Adopted)
}

func (s *AdoptionServiceTestSuite) TestApproveRejectedRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request := createRequest(s.T(), s.db, user, dog, models.RequestStatusRejected)

	_, err := s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.True(apperrors.Is(err, apperrors.CodeInvalidTransition))
}

func (s *AdoptionServiceTestSuite) TestApproveWhenDogGoneMidFlight() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	// The dog was adopted out of band after the request was opened.
	s.Require().NoError(s.db.Model(dog).Update("adopted", true).Error)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.True(apperrors.Is(err, apperrors.CodeAlreadyAdopted))
	s.Equal(models.RequestStatusPending, s.reload(request.ID).Status)
}

func (s *AdoptionServiceTestSuite) TestApproveMissingRequest() {
	_, err := s.svc.Approve(uuid.New(), s.admin.ID, &ApproveAdoptionRequest{})
	s.True(apperrors.Is(err, apperrors.CodeNotFound))
}

// At most one request per dog ever ends up approved, whatever the approval
// order.
func (s *AdoptionServiceTestSuite) TestSingleApprovalPerDog() {
	dog := createDog(s.T(), s.db)
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		user := createUser(s.T(), s.db, models.UserTypeAdopter)
		request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
		s.Require().NoError(err)
		ids = append(ids, request.ID)
	}

	approvals := 0
	for _, id := range ids {
		if _, err := s.svc.Approve(id, s.admin.ID, &ApproveAdoptionRequest{}); err == nil {
			approvals++
		}
	}
	s.Equal(1, approvals)

	var count int64
	s.Require().NoError(s.db.Model(&models.AdoptionRequest{}).
		Where("dog_id = ? AND status = ? AND active = ?", dog.ID, models.RequestStatusApproved, true).
		Count(&count).Error)
	s.Equal(int64(1), count)
}

// Reject

func (s *AdoptionServiceTestSuite) TestReject() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	rejected, err := s.svc.Reject(request.ID, s.admin.ID, &RejectAdoptionRequest{Reason: "home visit failed"})
	s.Require().NoError(err)

	s.Equal(models.RequestStatusRejected, rejected.Status)
	s.Equal("home visit failed", rejected.RejectionReason)
	s.False(s.reloadDog(dog.ID).Adopted)
}

func (s *AdoptionServiceTestSuite) TestRejectWithoutReason() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Reject(request.ID, s.admin.ID, &RejectAdoptionRequest{Reason: "   "})
	s.True(apperrors.Is(err, apperrors.CodeReasonRequired))
	s.Equal(models.RequestStatusPending, s.reload(request.ID).Status)
}

func (s *AdoptionServiceTestSuite) TestRejectApprovedRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	_, err = s.svc.Reject(request.ID, s.admin.ID, &RejectAdoptionRequest{Reason: "changed my mind"})
	s.True(apperrors.Is(err, apperrors.CodeAlreadyApproved))
}

// Cancel

func (s *AdoptionServiceTestSuite) TestCancel() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Cancel(request.ID, user.ID, false))

	withdrawn := s.reload(request.ID)
	s.False(withdrawn.Active)
	s.Equal("withdrawn", withdrawn.StatusText())

	// A second cancel sees nothing to act on.
	err = s.svc.Cancel(request.ID, user.ID, false)
	s.True(apperrors.Is(err, apperrors.CodeNotFound))
}

func (s *AdoptionServiceTestSuite) TestCancelApprovedRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	err = s.svc.Cancel(request.ID, user.ID, false)
	s.True(apperrors.Is(err, apperrors.CodeCannotCancelApproved))
	s.True(s.reload(request.ID).Active)
}

func (s *AdoptionServiceTestSuite) TestCancelSomeoneElsesRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	stranger := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	err = s.svc.Cancel(request.ID, stranger.ID, false)
	s.ErrorIs(err, ErrUnauthorized)

	// Admins may cancel on the user's behalf.
	s.NoError(s.svc.Cancel(request.ID, s.admin.ID, true))
}

// Update

func (s *AdoptionServiceTestSuite) TestUpdateWithoutFields() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{})
	s.True(apperrors.Is(err, apperrors.CodeNoValidFields))
}

func (s *AdoptionServiceTestSuite) TestUpdateNote() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	note := "references checked"
	updated, err := s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{Note: &note})
	s.Require().NoError(err)
	s.Equal(note, updated.Note)
	s.Equal(models.RequestStatusPending, updated.Status)
}

func (s *AdoptionServiceTestSuite) TestUpdateReasonOnPendingRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	reason := "too far away"
	_, err = s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{RejectionReason: &reason})
	s.True(apperrors.Is(err, apperrors.CodeInvalidTransition))
}

func (s *AdoptionServiceTestSuite) TestUpdateReasonOnRejectedRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Reject(request.ID, s.admin.ID, &RejectAdoptionRequest{Reason: "initial"})
	s.Require().NoError(err)

	reason := "corrected wording"
	updated, err := s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{RejectionReason: &reason})
	s.Require().NoError(err)
	s.Equal(reason, updated.RejectionReason)
}

// A status change through the generic update marks the dog adopted but does
// not cascade onto competing requests.
func (s *AdoptionServiceTestSuite) TestUpdateStatusToApproved() {
	dog := createDog(s.T(), s.db)
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	rival := createUser(s.T(), s.db, models.UserTypeAdopter)

	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)
	competing, err := s.svc.Create(rival.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	status := models.RequestStatusApproved
	updated, err := s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{Status: &status})
	s.Require().NoError(err)

	s.Equal(models.RequestStatusApproved, updated.Status)
	s.NotNil(updated.ApprovedAt)
	s.True(s.reloadDog(dog.ID).Adopted)
	s.Equal(models.RequestStatusPending, s.reload(competing.ID).Status)
}

func (s *AdoptionServiceTestSuite) TestUpdateStatusToRejectedNeedsReason() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	status := models.RequestStatusRejected
	_, err = s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{Status: &status})
	s.True(apperrors.Is(err, apperrors.CodeReasonRequired))

	reason := "lives in a no-pets building"
	updated, err := s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{Status: &status, RejectionReason: &reason})
	s.Require().NoError(err)
	s.Equal(models.RequestStatusRejected, updated.Status)
	s.Equal(reason, updated.RejectionReason)
}

func (s *AdoptionServiceTestSuite) TestUpdateStatusOfApprovedRequest() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Approve(request.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	status := models.RequestStatusRejected
	_, err = s.svc.Update(request.ID, s.admin.ID, &UpdateAdoptionRequest{Status: &status})
	s.True(apperrors.Is(err, apperrors.CodeAlreadyApproved))
}

// Get / listings

func (s *AdoptionServiceTestSuite) TestGetOwnership() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	stranger := createUser(s.T(), s.db, models.UserTypeAdopter)
	dog := createDog(s.T(), s.db)
	request, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Get(request.ID, user.ID, false)
	s.NoError(err)

	_, err = s.svc.Get(request.ID, stranger.ID, false)
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.svc.Get(request.ID, s.admin.ID, true)
	s.NoError(err)
}

func (s *AdoptionServiceTestSuite) TestListMineIncludesWithdrawn() {
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	first, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: createDog(s.T(), s.db).ID})
	s.Require().NoError(err)
	_, err = s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: createDog(s.T(), s.db).ID})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Cancel(first.ID, user.ID, false))

	requests, total, err := s.svc.ListMine(user.ID, defaultPagination())
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(requests, 2)
}

func (s *AdoptionServiceTestSuite) TestSearchByStatus() {
	dog := createDog(s.T(), s.db)
	user := createUser(s.T(), s.db, models.UserTypeAdopter)
	rival := createUser(s.T(), s.db, models.UserTypeAdopter)

	winning, err := s.svc.Create(user.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)
	_, err = s.svc.Create(rival.ID, &CreateAdoptionRequest{DogID: dog.ID})
	s.Require().NoError(err)

	_, err = s.svc.Approve(winning.ID, s.admin.ID, &ApproveAdoptionRequest{})
	s.Require().NoError(err)

	status := models.RequestStatusRejected
	requests, total, err := s.svc.Search(AdoptionSearchParams{
		PaginationParams: defaultPagination(),
		Status:           &status,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(requests, 1)
	s.Equal(SystemRejectionReason, requests[0].RejectionReason)
}

func TestAdoptionServiceSuite(t *testing.T) {
	suite.Run(t, new(AdoptionServiceTestSuite))
}
