package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *TokenService {
	s := NewTokenService("test-secret-with-enough-entropy", 12*time.Hour, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestAdminToken(t *testing.T) {
	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(now)

	t.Run("Should round-trip subject and email", func(t *testing.T) {
		token, expiresAt, err := s.IssueAdminToken("admin-1", "ops@iisa.org.il")
		require.NoError(t, err)
		assert.Equal(t, now.Add(12*time.Hour), expiresAt)

		claims, err := s.ParseAdminToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.Subject)
		assert.Equal(t, "ops@iisa.org.il", claims.Email)
		assert.Equal(t, PurposeAdmin, claims.Purpose)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		token, _, err := s.IssueAdminToken("admin-1", "ops@iisa.org.il")
		require.NoError(t, err)

		later := newTestService(now.Add(13 * time.Hour))
		_, err = later.ParseAdminToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		other := NewTokenService("another-secret", time.Hour, nil)
		other.now = s.now
		token, _, err := other.IssueAdminToken("admin-1", "x@y.z")
		require.NoError(t, err)

		_, err = s.ParseAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("Should refuse to sign without a secret", func(t *testing.T) {
		_, _, err := NewTokenService("", time.Hour, nil).IssueAdminToken("a", "b")
		assert.Error(t, err)
	})
}

func TestEditTicket(t *testing.T) {
	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(now)
	deadline := now.AddDate(0, 0, 3)

	t.Run("Should carry the candidate id past the deadline", func(t *testing.T) {
		ticket, err := s.IssueEditTicket("cand-7", deadline)
		require.NoError(t, err)

		claims, err := s.ParseEditTicket(ticket)
		require.NoError(t, err)
		assert.Equal(t, "cand-7", claims.Subject)
		assert.Equal(t, deadline.Add(EditTicketGrace).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("Should not be usable as an admin token and vice versa", func(t *testing.T) {
		ticket, err := s.IssueEditTicket("cand-7", deadline)
		require.NoError(t, err)
		_, err = s.ParseAdminToken(ticket)
		assert.ErrorIs(t, err, ErrWrongPurpose)

		admin, _, err := s.IssueAdminToken("admin-1", "ops@iisa.org.il")
		require.NoError(t, err)
		_, err = s.ParseEditTicket(admin)
		assert.ErrorIs(t, err, ErrWrongPurpose)
	})

	t.Run("Should stay valid through a sub-second deadline", func(t *testing.T) {
		reg := time.Date(2025, 8, 1, 12, 0, 0, 500_000_000, time.UTC)
		subSecond := reg.AddDate(0, 0, 3)
		ticket, err := newTestService(reg).IssueEditTicket("cand-7", subSecond)
		require.NoError(t, err)

		for _, at := range []time.Time{subSecond.Add(-time.Millisecond), subSecond, subSecond.Add(time.Millisecond)} {
			_, err = newTestService(at).ParseEditTicket(ticket)
			assert.NoError(t, err, "parsed at %s", at)
		}
	})

	t.Run("Should expire once the grace period is over", func(t *testing.T) {
		ticket, err := s.IssueEditTicket("cand-7", deadline)
		require.NoError(t, err)

		_, err = newTestService(deadline.Add(time.Hour)).ParseEditTicket(ticket)
		assert.NoError(t, err)
		_, err = newTestService(EditTicketExpiry(deadline)).ParseEditTicket(ticket)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})
}

func TestEditTicketExpiry(t *testing.T) {
	whole := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)
	assert.True(t, whole.Add(EditTicketGrace).Equal(EditTicketExpiry(whole)))
	assert.True(t, whole.Add(time.Second+EditTicketGrace).Equal(EditTicketExpiry(whole.Add(500*time.Millisecond))))
}

func TestJWKSVerification(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(JWKS{Keys: []JSONWebKey{{
			Kid: "k1",
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	now := time.Now()
	s := NewTokenService("secret", time.Hour, NewProvider(srv.URL))

	signed := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub":   "idp-user",
			"email": "sso@iisa.org.il",
			"exp":   now.Add(time.Hour).Unix(),
		})
		tok.Header["kid"] = kid
		out, err := tok.SignedString(key)
		require.NoError(t, err)
		return out
	}

	t.Run("Should accept RS256 admin tokens from the key set", func(t *testing.T) {
		claims, err := s.ParseAdminToken(signed("k1"))
		require.NoError(t, err)
		assert.Equal(t, "idp-user", claims.Subject)
		assert.Equal(t, "sso@iisa.org.il", claims.Email)
	})

	t.Run("Should reject an unknown key id", func(t *testing.T) {
		_, err := s.ParseAdminToken(signed("k2"))
		assert.Error(t, err)
	})

	t.Run("Should never accept RS256 edit tickets", func(t *testing.T) {
		_, err := s.ParseEditTicket(signed("k1"))
		assert.Error(t, err)
	})
}
