// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"aayur-gram-api-server/internal/api/middleware"
	"aayur-gram-api-server/internal/auth"
	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TokenIssuer signs session tokens for stored users.
type TokenIssuer interface {
	IssueFor(u *models.User) (string, error)
}

type AuthHandler struct {
	Users       UserStore
	Tokens      TokenIssuer
	AdminSecret string
	LabSecret   string
	BcryptCost  int
	Log         *zap.Logger
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role"`
	AdminSecret string `json:"adminSecret"`
	LabSecret   string `json:"labSecret"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of a user; the password hash never leaves the server.
type UserResponse struct {
	ObjectID  primitive.ObjectID `json:"_id"`
	ID        string             `json:"id"`
	Email     string             `json:"email"`
	Name      string             `json:"name"`
	Role      models.Role        `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ObjectID:  u.ID,
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register creates an account. Admin and lab roles need the matching signup secret.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, password, and name are required")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		badRequest(c, "email, password, and name are required")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		badRequest(c, "Invalid role. Expecting one of collector, admin, user, lab.")
		return
	}

	switch role {
	case models.RoleAdmin:
		if !auth.SecretMatches(h.AdminSecret, req.AdminSecret) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: invalid admin signup credentials"})
			return
		}
	case models.RoleLab:
		if !auth.SecretMatches(h.LabSecret, req.LabSecret) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: invalid lab signup credentials"})
			return
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		respondError(c, h.Log, "register", err)
		return
	}

	user := &models.User{
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Name:           req.Name,
		Role:           role,
	}
	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"message": "User with this email already exists"})
			return
		}
		respondError(c, h.Log, "register", err)
		return
	}

	token, err := h.Tokens.IssueFor(user)
	if err != nil {
		respondError(c, h.Log, "register", err)
		return
	}

	h.Log.Info("user registered", zap.String("id", user.ID.Hex()), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, gin.H{"user": NewUserResponse(user), "token": token})
}

// Login answers the same 401 for an unknown email and a wrong password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondError(c, h.Log, "login", err)
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.HashedPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.IssueFor(user)
	if err != nil {
		respondError(c, h.Log, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewUserResponse(user), "token": token})
}

// Me returns the stored account of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	id, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": NewUserResponse(user)})
}
