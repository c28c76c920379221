package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var badRequestErrors = []error{
	domain.ErrGoalTitleEmpty,
	domain.ErrGoalTitleTooLong,
	domain.ErrGoalDescTooLong,
	domain.ErrGoalInvalidUserID,
	domain.ErrInvalidFrequency,
	domain.ErrInvalidAnchor,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrNameTooLong,
}

// respondError maps domain errors to status codes. Anything unknown is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGoalNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "goal not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, domain.ErrGoalConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Error:   "version conflict",
			Message: "Data has been modified elsewhere. Please sync.",
		})
	case errors.Is(err, domain.ErrFrequencyImmutable), errors.Is(err, domain.ErrGoalDeleted):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, errorResponse{Error: "email already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
	case isBadRequest(err):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
