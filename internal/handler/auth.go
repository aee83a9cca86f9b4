package handler

import (
	"errors"
	"fmt"
	"net/http"

	"authservice/internal/middleware"
	"authservice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Dashboard(c *gin.Context)
}

type authHandler struct {
	authService   service.AuthService
	secureCookies bool
	cookieMaxAge  int
	log           *logrus.Logger
}

// NewAuthHandler builds the HTTP handlers. cookieMaxAge is in seconds and
// should match the token TTL.
func NewAuthHandler(authService service.AuthService, secureCookies bool, cookieMaxAge int, log *logrus.Logger) AuthHandler {
	return &authHandler{
		authService:   authService,
		secureCookies: secureCookies,
		cookieMaxAge:  cookieMaxAge,
		log:           log,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the sanitized user shape returned on login.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for registration: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	user, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		case errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already in use"})
		default:
			h.log.Errorf("Failed to register user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"id":      user.ID,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	tokenString, user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		h.log.Errorf("Failed to login user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// The token travels both ways on purpose: the cookie feeds the
	// middleware on same-origin requests, the body serves clients that
	// store the token themselves.
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, tokenString, h.cookieMaxAge, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tokenString,
		"user":    UserResponse{ID: user.ID, Username: user.Username},
	})
}

// Logout clears the session cookie. It is stateless and idempotent, so it
// never fails.
func (h *authHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *authHandler) Dashboard(c *gin.Context) {
	username := c.MustGet("username").(string)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Welcome, %s!", username)})
}
