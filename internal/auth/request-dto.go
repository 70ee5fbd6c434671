package auth

// registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,ukphone"`
	Subject  string `json:"subject,omitempty" validate:"omitempty,max=255"` // generated when empty
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=USER ORGANIZER user organizer"`
}

// login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
