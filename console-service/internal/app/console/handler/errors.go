package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/entity"
	apihttp "stockdesk/console-service/internal/app/console/infrastructure/http"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/console-service/internal/app/console/views"
)

func errorBody(status int, message string) entity.ErrorResponse {
	return entity.ErrorResponse{Error: http.StatusText(status), Message: message}
}

func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, errorBody(status, message))
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody(status, message))
}

// respondStoreError переводит ошибку операции хранилища в HTTP-ответ.
// Текст берётся из ошибки: сообщение сервера или fallback хранилища.
func respondStoreError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *views.ValidationError
	if errors.As(err, &verr) {
		respondWithError(c, http.StatusBadRequest, verr.Error())
		return
	}

	message := err.Error()
	var opErr *store.OpError
	if errors.As(err, &opErr) {
		message = opErr.Message
	}

	var apiErr *apihttp.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(c, http.StatusGatewayTimeout, message)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		respondWithError(c, http.StatusUnauthorized, message)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
		respondWithError(c, http.StatusForbidden, message)
	case opErr != nil:
		respondWithError(c, http.StatusBadGateway, message)
	default:
		respondWithError(c, http.StatusInternalServerError, message)
	}
}

// serviceErrorStatus - коды для доменных ошибок сервисов.
func serviceErrorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrCompanyExists):
		return http.StatusConflict, "Company with this email already exists", true
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, "Product not found", true
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", true
	case errors.Is(err, service.ErrCompanyInactive):
		return http.StatusForbidden, "Company account is inactive", true
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Not logged in", true
	}
	return 0, "", false
}
