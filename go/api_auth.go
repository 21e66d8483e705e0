package storefrontserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/storefront-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	// Secure marks the cookie HTTPS-only; enabled in production.
	Secure bool
	Domain string
}

// AuthAPI implements registration, login and session endpoints.
type AuthAPI struct {
	service   userports.Service
	cookie    CookieOptions
	responder *apierrors.ChainedResponder
}

// NewAuthAPI wires dependencies.
func NewAuthAPI(service userports.Service, cookie CookieOptions, responder *apierrors.ChainedResponder) AuthAPI {
	return AuthAPI{service: service, cookie: cookie, responder: responder}
}

// Post /auth/register
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.Register
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	result, err := api.service.Register(c.Request.Context(), payload.ToInput())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.setSessionCookie(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusCreated, userhttpmapper.AuthResponse{User: userhttpmapper.FromDomainUser(result.User)})
}

// Post /auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.setSessionCookie(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, userhttpmapper.AuthResponse{User: userhttpmapper.FromDomainUser(result.User)})
}

// Post /auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if session := currentSession(c); session != nil {
		if err := api.service.Logout(c.Request.Context(), session.TokenID); err != nil {
			api.responder.RespondError(c, err)
			return
		}
	}
	api.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get /auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, err := api.service.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.AuthResponse{User: userhttpmapper.FromDomainUser(user)})
}

func (api *AuthAPI) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", api.cookie.Domain, api.cookie.Secure, true)
}

func (api *AuthAPI) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", api.cookie.Domain, api.cookie.Secure, true)
}
