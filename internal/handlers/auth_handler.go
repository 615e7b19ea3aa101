package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todo-api/internal/apperrors"
	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// LoginResponse represents the login response
type LoginResponse struct {
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

type AuthHandler struct {
	auth   *services.AuthService
	cookie CookieConfig
	log    *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, cookie CookieConfig, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, log: log}
}

func bindJSON(c *gin.Context, dst any) error {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		return apperrors.Validation("email and password are required", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.Validation("invalid request structure", nil)
	}
	return nil
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	const op = "handlers.Register"

	var req services.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, op, err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

// Login handles POST /auth/login. The token is set as an HttpOnly cookie and
// also returned for clients that send it as a bearer header.
func (h *AuthHandler) Login(c *gin.Context) {
	const op = "handlers.Login"

	var req services.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, op, err)
		return
	}
	token, session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}

	h.setCookie(c, token, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, LoginResponse{User: session.Identity, Token: token})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(middleware.SessionID(c))
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, h.log, "handlers.Me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
