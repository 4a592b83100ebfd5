package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAdmin = "admin"
	PurposeEdit  = "edit"

	issuer = "iisa-recruitment"
)

var ErrWrongPurpose = errors.New("token not valid for this use")

// Claims is shared by dashboard tokens and applicant edit tickets; Purpose
// keeps one from being replayed as the other.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 tokens and verifies HS256 or, when a JWKS
// provider is configured, RS256 tokens from an external identity provider.
type TokenService struct {
	secret   []byte
	adminTTL time.Duration
	jwks     *Provider
	now      func() time.Time
}

func NewTokenService(secret string, adminTTL time.Duration, jwks *Provider) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		adminTTL: adminTTL,
		jwks:     jwks,
		now:      time.Now,
	}
}

// WithClock replaces the time source used to sign and verify tokens.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) IssueAdminToken(adminID, email string) (string, time.Time, error) {
	expiresAt := s.now().Add(s.adminTTL)
	token, err := s.sign(Claims{
		Email:   email,
		Purpose: PurposeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token, expiresAt, err
}

// EditTicketGrace keeps a ticket valid past its edit window, so a late
// applicant reaches the window check and is shown the deadline.
const EditTicketGrace = 7 * 24 * time.Hour

// EditTicketExpiry is the exp of a ticket whose edit window ends at deadline:
// the deadline rounded up to a whole second, plus EditTicketGrace.
func EditTicketExpiry(deadline time.Time) time.Time {
	exp := deadline.Truncate(time.Second)
	if exp.Before(deadline) {
		exp = exp.Add(time.Second)
	}
	return exp.Add(EditTicketGrace)
}

// IssueEditTicket lets the holder re-open candidateID. The ticket only
// identifies the record; whether it is still editable is decided by the edit
// window on every request.
func (s *TokenService) IssueEditTicket(candidateID string, deadline time.Time) (string, error) {
	return s.sign(Claims{
		Purpose: PurposeEdit,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   candidateID,
			ExpiresAt: jwt.NewNumericDate(EditTicketExpiry(deadline)),
		},
	})
}

func (s *TokenService) ParseAdminToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString, true)
	if err != nil {
		return nil, err
	}
	// RS256 tokens from the identity provider carry no purpose claim.
	if claims.Purpose != PurposeAdmin && claims.Purpose != "" {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (s *TokenService) ParseEditTicket(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString, false)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeEdit {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (s *TokenService) sign(claims Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("auth: JWT secret not configured")
	}
	now := s.now()
	claims.Issuer = issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string, allowRSA bool) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if len(s.secret) == 0 {
				return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
			}
			return s.secret, nil
		}

		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok && allowRSA && s.jwks.Enabled() {
			return s.jwks.KeyFunc(token)
		}

		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
