package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type authService interface {
	StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.LoginResponse, error)
	ChangePIN(ctx context.Context, req models.ChangePINRequest) (*models.LoginResponse, error)
	TeacherLogin(ctx context.Context, req models.TeacherLoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes the PIN and passcode login endpoints.
type AuthHandler struct {
	service authService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// StudentLogin godoc
// @Summary Student login with a 4-digit PIN
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.StudentLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/student/login [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req models.StudentLoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	resp, err := h.service.StudentLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, resp)
}

// ChangePIN godoc
// @Summary Replace the initial PIN and complete login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.ChangePINRequest true "PIN change"
// @Success 200 {object} response.Envelope
// @Router /auth/student/pin [post]
func (h *AuthHandler) ChangePIN(c *gin.Context) {
	var req models.ChangePINRequest
	if !bindJSON(c, &req, "invalid pin change payload") {
		return
	}
	resp, err := h.service.ChangePIN(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, resp)
}

// TeacherLogin godoc
// @Summary Teacher login with the classroom passcode
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.TeacherLoginRequest true "Passcode"
// @Success 200 {object} response.Envelope
// @Router /auth/teacher/login [post]
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req models.TeacherLoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	resp, err := h.service.TeacherLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, resp)
}
