package domain

import (
	"context"
	"time"
)

// Admin is a dashboard operator.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	OTP      string `json:"otp" validate:"omitempty,len=6,numeric"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *Admin    `json:"admin"`
}

type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, admin *Admin) error
}

// AdminTokenIssuer signs dashboard session tokens.
type AdminTokenIssuer interface {
	IssueAdminToken(adminID, email string) (string, time.Time, error)
}

type AuthUsecase interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	GetCurrentAdmin(ctx context.Context, id string) (*Admin, error)
	CreateAdmin(ctx context.Context, email, password string, withTOTP bool) (*Admin, string, error)
}
