package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/utils"
)

// UserLookup resolves credentials to stored users. *users.Repository
// satisfies it.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users  UserLookup
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(users UserLookup, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: users, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "login failed")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.OrganizationID)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
