package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps domain errors onto HTTP statuses and stable codes.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, models.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, models.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrSupplyExhausted):
		status, code = http.StatusConflict, "SUPPLY_EXHAUSTED"
	case errors.Is(err, models.ErrStateConflict):
		status, code = http.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, models.ErrKYCNotApproved):
		status, code = http.StatusForbidden, "KYC_NOT_APPROVED"
	case errors.Is(err, models.ErrNoChallenge):
		status, code = http.StatusUnauthorized, "NO_CHALLENGE"
	case errors.Is(err, models.ErrChallengeExpired):
		status, code = http.StatusUnauthorized, "CHALLENGE_EXPIRED"
	case errors.Is(err, models.ErrSignatureMismatch):
		status, code = http.StatusUnauthorized, "SIGNATURE_MISMATCH"
	case errors.Is(err, models.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, models.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, models.ErrSettlement):
		status, code = http.StatusBadGateway, "SETTLEMENT"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debug("Request rejected", "path", c.FullPath(), "code", code, "error", err)
	}
	c.JSON(status, errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}

func (s *HTTPServer) abortError(c *gin.Context, err error) {
	s.respondError(c, err)
	c.Abort()
}
