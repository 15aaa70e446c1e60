// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"

	// Dogs
	KeyDogCreated  = "dog.created"
	KeyDogUpdated  = "dog.updated"
	KeyDogDeleted  = "dog.deleted"
	KeyDogNotFound = "dog.not_found"

	// Adoption requests
	KeyAdoptionRequested = "adoption.requested"
	KeyAdoptionApproved  = "adoption.approved"
	KeyAdoptionRejected  = "adoption.rejected"
	KeyAdoptionCancelled = "adoption.cancelled"
	KeyAdoptionUpdated   = "adoption.updated"
	KeyAdoptionNotFound  = "adoption.not_found"

	// Payments
	KeyPaymentCreated  = "payment.created"
	KeyPaymentNotFound = "payment.not_found"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
