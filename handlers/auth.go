package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/models"
	"github.com/factdeck/factdeck/internal/oidc"
	"github.com/factdeck/factdeck/internal/sessions"
	"github.com/factdeck/factdeck/internal/tokens"
	"github.com/factdeck/factdeck/internal/users"
	"github.com/factdeck/factdeck/pkg/logger"
	"github.com/factdeck/factdeck/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name        string              `json:"name" binding:"required"`
	Email       string              `json:"email" binding:"required,email"`
	Password    string              `json:"password" binding:"required,min=8"`
	Preferences *models.Preferences `json:"preferences"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest is the body of POST /api/auth/google.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// IdentityVerifier checks third-party ID tokens.
type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (*oidc.Identity, error)
}

// SaveFactRequest is the body of POST /api/facts/save.
type SaveFactRequest struct {
	Fact     string `json:"fact" binding:"required"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	blacklist *sessions.Blacklist
	google    IdentityVerifier
}

func NewAuthHandler(cfg *config.Config, u *users.Service, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, blacklist: bl}
}

// WithGoogle enables POST /auth/google using v to check Google ID tokens.
func (h *AuthHandler) WithGoogle(v IdentityVerifier) *AuthHandler {
	h.google = v
	return h
}

// Register mounts account routes under rg (normally /api). protect guards
// the routes that need a signed-in user.
func (h *AuthHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/google", h.GoogleLogin)

	pa := a.Group("", protect)
	pa.POST("/logout", h.Logout)
	pa.PATCH("/preferences", h.UpdatePreferences)
	pa.GET("/me", h.Me)
	pa.GET("/users", h.ListUsers)
	pa.GET("/users/:id", h.GetUser)

	f := rg.Group("/facts", protect)
	f.POST("/save", h.SaveFact)
	f.GET("/saved", h.ListSaved)
	f.DELETE("/saved/:id", h.DeleteSaved)
}

func (h *AuthHandler) sendToken(c *gin.Context, status int, u *models.User) {
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTTL)
	if err != nil {
		logger.Errorf("auth: sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(status, gin.H{
		"status":    "success",
		"token":     access,
		"expiresIn": int(h.cfg.JWT.AccessTTL.Seconds()),
		"data":      gin.H{"user": u},
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.usersSvc.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.Preferences)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Errorf("auth: signup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}
	logger.Infof("auth: new account %s", u.ID)
	h.sendToken(c, http.StatusCreated, u)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide email and password"})
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}
	if err != nil {
		logger.Errorf("auth: login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// GoogleLogin signs in with a Google ID token, creating or linking the
// account, and issues the same access token as Login.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a Google ID token"})
		return
	}
	id, err := h.google.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		logger.Debugf("auth: google token rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Google ID token"})
		return
	}
	u, err := h.usersSvc.SignInWithGoogle(c.Request.Context(), id.Subject, id.Email, id.Name, id.EmailVerified)
	switch {
	case errors.Is(err, users.ErrEmailTaken), errors.Is(err, users.ErrGoogleLinked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Errorf("auth: google sign-in: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// Logout blacklists the current access token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	var ttl time.Duration
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			if exp, ok := cm["exp"].(float64); ok {
				ttl = time.Until(time.Unix(int64(exp), 0))
			}
		}
	}
	if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
		logger.Errorf("auth: blacklist token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "logged out"})
}

func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	var req struct {
		Preferences models.Preferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.usersSvc.UpdatePreferences(c.Request.Context(), middleware.Subject(c), req.Preferences)
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": u}})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.usersSvc.Get(c.Request.Context(), middleware.Subject(c))
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": u}})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	list, err := h.usersSvc.List(c.Request.Context())
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"users": list}})
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	u, err := h.usersSvc.Get(c.Request.Context(), c.Param("id"))
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": u}})
}

func (h *AuthHandler) SaveFact(c *gin.Context) {
	var req SaveFactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.usersSvc.SaveFact(c.Request.Context(), middleware.Subject(c), req.Fact, req.Category, req.Notes)
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Fact saved successfully", "fact": saved})
}

func (h *AuthHandler) ListSaved(c *gin.Context) {
	list, err := h.usersSvc.ListSaved(c.Request.Context(), middleware.Subject(c))
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "facts": list})
}

func (h *AuthHandler) DeleteSaved(c *gin.Context) {
	err := h.usersSvc.DeleteSaved(c.Request.Context(), middleware.Subject(c), c.Param("id"))
	if h.userError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Fact deleted successfully"})
}

// userError writes the response for a users service error and reports
// whether one was written.
func (h *AuthHandler) userError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, users.ErrSavedFactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("auth: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	return true
}
