package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/views"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := views.Validate(req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if status, message, ok := serviceErrorStatus(err); ok {
			respondWithError(c, status, message)
			return
		}
		_ = c.Error(err)
		respondWithError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		_ = c.Error(err)
		respondWithError(c, http.StatusInternalServerError, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Logged out"})
}

// GetMe - пользователь сохранённой сессии без токена.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			respondWithError(c, http.StatusUnauthorized, "Not logged in")
			return
		}
		_ = c.Error(err)
		respondWithError(c, http.StatusInternalServerError, "Failed to read session")
		return
	}

	me := *user
	me.Token = ""
	c.JSON(http.StatusOK, me)
}
