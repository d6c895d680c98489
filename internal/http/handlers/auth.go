package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspecthub/internal/auth"
	"github.com/roadcheck/inspecthub/internal/config"
	"github.com/roadcheck/inspecthub/internal/domain/user"
	"github.com/roadcheck/inspecthub/internal/http/middlewares"
	"github.com/roadcheck/inspecthub/internal/security"
)

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, username, passwordHash string) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
	}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is deliberately looser than signup: it must accept any
// credentials that could have been registered under an earlier policy.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Username, hash)

	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondError(ctx, http.StatusBadRequest, "username_taken", "Username already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not register user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    u.Public(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// identical body to a wrong password: never reveal which
			// half of the credentials failed
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": accessToken,
		"user":         foundUser.Public(),
	})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not retrieve profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"user":    u.Public(),
	})
}
