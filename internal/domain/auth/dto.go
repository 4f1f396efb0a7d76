// internal/domain/auth/dto.go
package auth

// SignupEmailRequest finishes an email signup started with a verification
// code request.
type SignupEmailRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignupPhoneRequest finishes a phone signup.
type SignupPhoneRequest struct {
	Username    string `json:"username" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// LoginEmailRequest for email + password login.
type LoginEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginPhoneRequest for phone + password login.
type LoginPhoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// CheckEmailRequest asks whether an email is already registered.
type CheckEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CheckPhoneRequest asks whether a phone number is already registered.
type CheckPhoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// TfaCodeRequest carries a one-time TOTP code.
type TfaCodeRequest struct {
	Code string `json:"token" binding:"required"`
}

// CompleteRequest finishes account setup by choosing a username.
type CompleteRequest struct {
	Username string `json:"username" binding:"required"`
}

// UpdatePasswordRequest rotates a password for a logged-in user.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TfaSecretResponse is returned from 2FA registration so the client can
// render the enrollment QR code.
type TfaSecretResponse struct {
	Base32     string `json:"base32"`
	OtpauthURL string `json:"otpauth_url"`
}
