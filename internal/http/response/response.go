package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// AbortWithError writes the envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, code string, err error) {
	RespondError(c, status, code, err)
	c.Abort()
}

// RespondErr translates a service error into the error envelope.
func RespondErr(c *gin.Context, err error) {
	api := FromError(err)
	if api.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, api.Status, api.Code, api.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domainagg.CodeUnauthorized:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeAlreadyExists, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError resolves err to an API error. Uncoded and internal errors are
// reported without their cause.
func FromError(err error) *apierr.Error {
	if err == nil {
		return apierr.New(http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
	}
	var api *apierr.Error
	if errors.As(err, &api) {
		return api
	}
	code := domainagg.CodeOf(err)
	switch code {
	case "", domainagg.CodeInternal:
		return apierr.New(http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
	case domainagg.CodeRetryable:
		return apierr.New(http.StatusServiceUnavailable, string(code), errors.New("temporarily unavailable, please retry"))
	}
	return apierr.New(StatusFor(code), string(code), errors.New(domainagg.Message(err)))
}
