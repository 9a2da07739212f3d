package dto

type RegisterRequest struct {
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type VerifyTwoFactorRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         UserResponse `json:"user,omitempty"`

	// Set when the account has 2FA enabled: the client must call the verify
	// endpoint with PendingToken and a code before tokens are issued.
	TwoFactorRequired bool   `json:"two_factor_required,omitempty"`
	PendingToken      string `json:"pending_token,omitempty"`
}

type UserResponse struct {
	Phone      string `json:"phone"`
	InviteCode string `json:"invite_code"`
	Email      string `json:"email,omitempty"`
}

type TwoFactorSecretResponse struct {
	Secret string `json:"secret"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
