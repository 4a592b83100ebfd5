package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const totpIssuer = "IISA Dashboard"

// dummyHash keeps the cost of an unknown-email login close to a real one.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("iisa-placeholder-password"), bcrypt.DefaultCost)

type authUsecase struct {
	adminRepo domain.AdminRepository
	tokens    domain.AdminTokenIssuer
	validate  *validator.Validate
}

func NewAuthUsecase(adminRepo domain.AdminRepository, tokens domain.AdminTokenIssuer, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{adminRepo: adminRepo, tokens: tokens, validate: validate}
}

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Invalid email or password format")
	}

	admin, err := u.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(fmt.Errorf("failed to load admin: %w", err))
	}
	if admin == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		logger.Log.Warn("Failed login", "email", req.Email, "reason", "unknown_email")
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		logger.Log.Warn("Failed login", "email", req.Email, "reason", "bad_password")
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if admin.TOTPEnabled {
		if req.OTP == "" {
			return nil, apperror.Unauthorized("One-time code required").WithDetails(map[string]any{"otpRequired": true})
		}
		if !totp.Validate(req.OTP, admin.TOTPSecret) {
			logger.Log.Warn("Failed login", "email", req.Email, "reason", "invalid_totp")
			return nil, apperror.Unauthorized("Invalid one-time code")
		}
	}

	token, expiresAt, err := u.tokens.IssueAdminToken(admin.ID, admin.Email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to issue token: %w", err))
	}

	logger.Log.Info("Admin logged in", "admin_id", admin.ID)
	return &domain.LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

func (u *authUsecase) GetCurrentAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := u.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Admin not found")
		}
		return nil, apperror.Internal(err)
	}
	return admin, nil
}

// CreateAdmin stores a new operator. With withTOTP the provisioning URI is returned.
func (u *authUsecase) CreateAdmin(ctx context.Context, email, password string, withTOTP bool) (*domain.Admin, string, error) {
	req := domain.LoginRequest{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := u.validate.Struct(req); err != nil {
		return nil, "", apperror.BadRequest("A valid email and a password of at least 8 characters are required")
	}

	existing, err := u.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", apperror.Internal(err)
	}
	if existing != nil {
		return nil, "", apperror.New(http.StatusConflict, "An admin with this email already exists", nil)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	var otpURI string
	if withTOTP {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      totpIssuer,
			AccountName: admin.Email,
		})
		if err != nil {
			return nil, "", apperror.Internal(fmt.Errorf("failed to generate TOTP key: %w", err))
		}
		admin.TOTPSecret = key.Secret()
		admin.TOTPEnabled = true
		otpURI = key.URL()
	}

	if err := u.adminRepo.Create(ctx, admin); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to create admin: %w", err))
	}
	return admin, otpURI, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}
