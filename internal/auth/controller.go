package auth

import (
	"errors"
	"net/http"
	"regexp"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/shared/middleware"
	"festivaltickets/internal/shared/utils/response"
	"festivaltickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var ukrPhone = regexp.MustCompile(`^\+380\d{9}$`)

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	v := validator.New()
	_ = v.RegisterValidation("ukphone", func(fl validator.FieldLevel) bool {
		return ukrPhone.MatchString(fl.Field().String())
	})

	return &Controller{
		service:   service,
		validator: v,
		log:       log.WithComponent("auth"),
	}
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return false
	}
	return true
}

// Register godoc
// @Summary      Register a client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  RegisterRequest  true  "Client data"
// @Success      201  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse  "Email, phone or subject already taken"
// @Router       /auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, "Failed to register client", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Client registered successfully", resp, nil)
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      401  {object}  response.StandardApiResponse
// @Router       /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid email or password", nil, nil)
			return
		}
		response.RespondError(ctx, "Failed to login", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Login successful", resp, nil)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if !c.bind(ctx, &req) {
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid refresh token", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid or expired refresh token", nil, nil)
			return
		}
		response.RespondError(ctx, "Failed to refresh token", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Token refreshed successfully", tokenPair, nil)
}

// Logout is stateless; the client drops its tokens
func (c *Controller) Logout(ctx *gin.Context) {
	var req LogoutRequest
	_ = ctx.ShouldBindJSON(&req) // Optional body

	response.RespondJSON(ctx, "success", http.StatusOK, "Logged out successfully", nil, nil)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	clientID, ok := middleware.ClientID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Client not authenticated", nil, nil)
		return
	}

	var req ChangePasswordRequest
	if !c.bind(ctx, &req) {
		return
	}

	if err := c.service.ChangePassword(ctx.Request.Context(), clientID, &req); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Current password is incorrect", nil, nil)
			return
		}
		response.RespondError(ctx, "Failed to change password", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Password changed successfully", nil, nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	clientID, ok := middleware.ClientID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Client not authenticated", nil, nil)
		return
	}

	profile, err := c.service.Me(ctx.Request.Context(), clientID)
	if err != nil {
		response.RespondError(ctx, "Failed to get client profile", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Client data retrieved successfully", profile, nil)
}
