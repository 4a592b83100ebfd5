package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"iisa-recruitment-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName is the name of the header that must contain the CSRF token
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	CSRFTokenExpiry = 24 * time.Hour
)

// generateCSRFToken creates a cryptographically secure random token
func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for routes that
// accept a session cookie.
//
//  1. If no csrf_token cookie exists, one is generated and set (readable by JS).
//  2. A mutating request authenticated by one of sessionCookies must echo the
//     cookie value in X-CSRF-Token.
//
// Requests carrying a credential header (Authorization or X-Edit-Token) are
// not checked: a cross-site form cannot set headers.
func CSRFMiddleware(secure bool, sessionCookies ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				response.Abort(c, http.StatusInternalServerError, "Failed to generate security token")
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFTokenCookieName, newToken, int(CSRFTokenExpiry.Seconds()), "/", "", secure, false)
			csrfCookie = ""
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "" || c.GetHeader(EditTokenHeader) != "" || !hasCookie(c, sessionCookies) {
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" {
			response.Abort(c, http.StatusForbidden, "Missing CSRF token")
			return
		}
		// A freshly issued cookie cannot have been echoed yet.
		if csrfCookie == "" || subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			response.Abort(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}

		c.Next()
	}
}

func hasCookie(c *gin.Context, names []string) bool {
	for _, name := range names {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return true
		}
	}
	return false
}
