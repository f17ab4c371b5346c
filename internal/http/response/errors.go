package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/platform/apierr"
)

const internalErrorMessage = "Something went wrong."

// StatusForCode maps an aggregate error code to its HTTP status.
func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeNotAvailable,
		domainagg.CodeAlreadyListed,
		domainagg.CodeInsufficientFunds,
		domainagg.CodeSelfPurchase,
		domainagg.CodePriceMismatch,
		domainagg.CodePlayerNotOwned,
		domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeInfrastructureFailure, domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError turns a service error into the API error rendered to clients.
// Unknown errors keep their cause but never leak its text.
func FromError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var api *apierr.Error
	if errors.As(err, &api) {
		return api
	}
	var agg *domainagg.Error
	if errors.As(err, &agg) {
		status := StatusForCode(agg.Code)
		msg := agg.Message
		if status == http.StatusInternalServerError || msg == "" {
			msg = internalErrorMessage
		}
		return apierr.WithMessage(status, string(agg.Code), msg, err)
	}
	return apierr.WithMessage(http.StatusInternalServerError, "internal", internalErrorMessage, err)
}

// RespondServiceError renders err through FromError.
func RespondServiceError(c *gin.Context, err error) {
	api := FromError(err)
	if api == nil {
		api = apierr.WithMessage(http.StatusInternalServerError, "internal", internalErrorMessage, nil)
	}
	_ = c.Error(err)
	c.JSON(api.Status, Envelope{Success: false, Message: api.Error(), Code: api.Code})
}
