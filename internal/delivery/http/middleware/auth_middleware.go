package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/reedit"
	"iisa-recruitment-backend/pkg/auth"
	"iisa-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AuthCookie      = "auth_token"
	EditTokenHeader = "X-Edit-Token"
)

// TokenParser verifies dashboard tokens and applicant edit tickets.
type TokenParser interface {
	ParseAdminToken(token string) (*auth.Claims, error)
	ParseEditTicket(token string) (*auth.Claims, error)
}

// AdminFinder confirms the token subject is still an admin.
type AdminFinder interface {
	GetCurrentAdmin(ctx context.Context, id string) (*domain.Admin, error)
}

func AuthMiddleware(tokens TokenParser, admins AdminFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(AuthCookie); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required")
			return
		}

		claims, err := tokens.ParseAdminToken(tokenString)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err)
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		// Deleted admins lose access even with an unexpired token
		admin, err := admins.GetCurrentAdmin(c.Request.Context(), claims.Subject)
		if err != nil || admin == nil {
			response.Abort(c, http.StatusUnauthorized, "Admin not found")
			return
		}

		c.Set(string(domain.KeyAdminID), admin.ID)
		c.Set(string(domain.KeyAdminEmail), admin.Email)
		c.Next()
	}
}

// EditTicketMiddleware admits an applicant to their own record. The ticket
// comes from the X-Edit-Token header or the re-edit cookie and its subject
// must equal the :id path parameter.
func EditTicketMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticket := c.GetHeader(EditTokenHeader)
		if ticket == "" {
			ticket, _ = c.Cookie(reedit.KeyEditToken)
		}
		if ticket == "" {
			response.Abort(c, http.StatusUnauthorized, "Edit token required")
			return
		}

		// Tickets outlive the edit window; the window itself is checked by
		// the candidate usecase, which reports the deadline.
		claims, err := tokens.ParseEditTicket(ticket)
		if errors.Is(err, jwt.ErrTokenExpired) {
			response.Abort(c, http.StatusForbidden, "The edit window for this registration has closed")
			return
		}
		if err != nil {
			response.Abort(c, http.StatusForbidden, "The edit link is no longer valid")
			return
		}
		if claims.Subject != c.Param("id") {
			response.Abort(c, http.StatusForbidden, "You can only edit your own registration")
			return
		}

		c.Set(string(domain.KeyEditTicket), claims.Subject)
		c.Next()
	}
}
