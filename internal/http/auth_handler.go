package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/middleware"
	"github.com/baryc/quote-service/internal/service"
)

// AuthHandler provides HTTP handlers for authentication routes.
type AuthHandler struct {
	authService    service.AuthService
	loggingService service.LoggingService
}

// NewAuthHandler creates a new authentication handler. loggingService may
// be nil.
func NewAuthHandler(authService service.AuthService, loggingService service.LoggingService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		loggingService: loggingService,
	}
}

// Login handles POST /api/auth/login requests.
//
// @Summary      Admin login
// @Description  Authenticates the administrator and returns a JWT access token for the /api/admin routes
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Login credentials"
// @Success      200 {object} dto.SuccessResponse{data=dto.LoginResponse} "Successful login"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - invalid credentials"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, ok := bindRequest[dto.LoginRequest](c)
	if !ok {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fields := map[string]interface{}{"username": req.Username}
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.AuditLogError(h.loggingService, c, model.ActionLogin, "Failed login attempt", err, fields)
			builder.Error(http.StatusUnauthorized, i18n.ErrKeyInvalidCredentials, err)
			return
		}
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}

	c.Set(middleware.ActorKey, req.Username)
	middleware.AuditLog(h.loggingService, c, model.ActionLogin, "Admin logged in", 0, nil)
	builder.SuccessOK(resp)
}
