package storefrontserver

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "token"
	// AdminKeyHeader authenticates administrative routes.
	AdminKeyHeader = "X-API-KEY"

	sessionContextKey = "storefront.session"
)

// Guard authenticates requests before they reach protected handlers.
type Guard struct {
	users     userports.Service
	adminKey  string
	responder *apierrors.ChainedResponder
}

func NewGuard(users userports.Service, adminKey string, responder *apierrors.ChainedResponder) Guard {
	return Guard{users: users, adminKey: adminKey, responder: responder}
}

// RequireUser accepts the session cookie or an Authorization bearer token.
func (g Guard) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			g.responder.Unauthorized(c, "authentication required")
			return
		}
		session, err := g.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			if statusIsAuth(err) {
				g.responder.Unauthorized(c, "session is invalid or expired")
				return
			}
			g.responder.RespondError(c, err)
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequireAdmin compares X-API-KEY in constant time. An unset key locks the routes.
func (g Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(AdminKeyHeader)
		if g.adminKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(g.adminKey)) != 1 {
			g.responder.Unauthorized(c, "invalid API key")
			return
		}
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func statusIsAuth(err error) bool {
	return errors.Is(err, userapp.ErrAuthentication)
}

// currentSession returns the session stored by RequireUser.
func currentSession(c *gin.Context) *userdomain.Session {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := value.(*userdomain.Session)
	return session
}

func currentUserID(c *gin.Context) string {
	if session := currentSession(c); session != nil {
		return session.UserID
	}
	return ""
}
